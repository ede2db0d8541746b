//go:build debug
// +build debug

// Gomega should not be dependency in non-debug build.

package dualcache

import (
	"errors"
	"log"

	"github.com/facebookgo/stackerr"
	. "github.com/onsi/gomega"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(GomegaFailHandler)
	return
}()

func GomegaFailHandler(message string, callerSkip ...int) {
	skip := callerSkip[0] + 1
	log.Fatal("FATAL: invariants are broken:", stackerr.WrapSkip(errors.New(message), skip))
}

// checkInvariants requires the master mutex be acquired.
func (m *master[K, V]) checkInvariants() {
	a := m.arena
	Expect(len(a.entries)).To(BeNumerically("<=", m.membrane.capacity), "arena over capacity")
	var sum uint64
	seen := make(map[K]struct{}, len(a.entries))
	for i := range a.entries {
		e := &a.entries[i]
		sum += e.Counter
		_, dup := seen[e.Key]
		Expect(dup).To(BeFalse(), "duplicate key in arena")
		seen[e.Key] = struct{}{}
		p, ok := a.index[e.Key]
		Expect(ok).To(BeTrue(), "no index ref to entry")
		Expect(p).To(Equal(i), "index refs another position")
	}
	Expect(sum).To(Equal(a.counterSum), "counter sum drift")
	if len(a.entries) == 0 {
		Expect(m.membrane.evictPoint).To(Equal(m.membrane.capacity), "membrane not at rest on empty arena")
		return
	}
	Expect(m.membrane.evictPoint).To(BeNumerically(">=", 0), "negative evict point")
	Expect(m.membrane.evictPoint).To(BeNumerically("<=", len(a.entries)), "evict point out of arena")
}
