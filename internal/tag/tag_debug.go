//go:build debug
// +build debug

package tag

const Debug = true
