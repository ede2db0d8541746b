package dualcache

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Membrane", func() {
	BeforeEach(resetKeys)

	newMasterWith := func(capacity, watermark, step int) *master[string, int] {
		conf := testConfig(capacity)
		conf.MembraneWatermark = watermark
		conf.MembraneStep = step
		return newTestMaster(conf)
	}

	fill := func(m *master[string, int], n int) {
		for i := 0; i < n; i++ {
			m.Insert(testKey(), i, uint64(i))
		}
	}

	It("rests below the whole arena when not under pressure", func() {
		m := newMasterWith(8, 4, 1)
		fill(m, 3)
		Expect(m.membrane.evictPoint).To(Equal(3))
	})

	It("rests at capacity on an empty arena", func() {
		m := newMasterWith(8, 4, 1)
		Expect(m.membrane.evictPoint).To(Equal(8))
		fill(m, 1)
		Expect(m.Delete(arenaKeys(m)[0])).To(BeTrue())
		Expect(m.membrane.evictPoint).To(Equal(8))
	})

	// heatHead raises the average above the cold boundary without going
	// through Promote, which would adjust the membrane on its own.
	heatHead := func(m *master[string, int], by uint64) {
		m.arena.bump(0, by)
	}

	It("advances by step past a weak boundary", func() {
		m := newMasterWith(10, 2, 1)
		fill(m, 6)
		Expect(m.membrane.evictPoint).To(Equal(2))
		heatHead(m, 60) // avg 10, boundary counter 0

		m.AdjustMembrane()
		Expect(m.membrane.evictPoint).To(Equal(3))
		m.AdjustMembrane()
		Expect(m.membrane.evictPoint).To(Equal(4))
	})

	It("clamps the advance to the arena length", func() {
		m := newMasterWith(10, 2, 100)
		fill(m, 6)
		heatHead(m, 60)
		m.AdjustMembrane()
		Expect(m.membrane.evictPoint).To(Equal(m.arena.len()))
	})

	Context("grandfather clause", func() {
		var m *master[string, int]
		BeforeEach(func() {
			m = newMasterWith(8, 2, 1)
			fill(m, 6)
			// A historically hot key gone quiet sits right at the membrane;
			// the newcomers around it trickle small counters.
			m.membrane.evictPoint = 3
			m.arena.entries[3].Counter = 1000
			for _, p := range []int{0, 1, 2, 4, 5} {
				m.arena.entries[p].Counter = uint64(1 + p)
			}
			var sum uint64
			for i := range m.arena.entries {
				sum += m.arena.entries[i].Counter
			}
			m.arena.counterSum = sum
		})

		It("holds the membrane for a strong boundary entry", func() {
			m.AdjustMembrane()
			Expect(m.membrane.evictPoint).To(Equal(3))
		})

		It("trades the strong boundary entry into the protected prefix", func() {
			grandfather := m.arena.entries[3].Key
			m.AdjustMembrane()
			Expect(positionOf(m, grandfather)).To(BeNumerically("<", m.membrane.evictPoint))
		})

		It("lets the grandfather survive the next truncation", func() {
			grandfather := m.arena.entries[3].Key
			m.AdjustMembrane()
			fill(m, 8-m.arena.len()) // Up to capacity, then one over the cliff.
			m.Insert("overflow", 0, 0)
			_, ok := m.arena.lookup(grandfather)
			Expect(ok).To(BeTrue())
		})
	})
})
