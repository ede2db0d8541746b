//go:build !debug
// +build !debug

package tag

// Debug is true in builds with the "debug" tag. Debug builds run expensive
// invariant checks after every master mutation.
const Debug = false
