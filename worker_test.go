package dualcache

import (
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Maintenance worker", func() {
	var (
		c         *Cache[string, int]
		mockClock *clock.Mock
	)
	BeforeEach(func() {
		resetKeys()
		mockClock = clock.NewMock()
	})
	AfterEach(func() {
		if c != nil {
			c.Close()
			c = nil
		}
	})

	newCache := func(conf Config[string, int]) {
		conf.Clock = mockClock
		var err error
		c, err = New(conf)
		Expect(err).NotTo(HaveOccurred())
	}

	mirrorCounter := func(key string) func() uint64 {
		return func() uint64 {
			snap := c.mirror.load()
			p, ok := snap.index[key]
			if !ok || p >= snap.len() || snap.entries[p].Key != key {
				return 0
			}
			return snap.entries[p].Counter
		}
	}

	It("applies signalled promotions and republishes on the promotion criterion", func() {
		conf := testConfig(8)
		conf.PublishEveryNPromotions = 3
		newCache(conf)
		c.Insert("A", 1, 0)
		c.Insert("B", 2, 0)
		c.SyncMirror()

		for i := 0; i < 3; i++ {
			_, ok := c.Get("A")
			Expect(ok).To(BeTrue())
		}

		Eventually(mirrorCounter("A"), "3s", "10ms").Should(Equal(uint64(3)))
	})

	It("republishes on the elapsed-time criterion", func() {
		conf := testConfig(8)
		conf.PublishEveryNPromotions = 1 << 20
		conf.PublishEvery = time.Minute
		newCache(conf)
		c.Insert("A", 1, 0)
		c.SyncMirror()

		_, ok := c.Get("A")
		Expect(ok).To(BeTrue())

		// The promotion lands on the master without reaching the mirror:
		// the promotion threshold is far away and no time passed.
		Eventually(func() uint64 { return c.Stats().CounterSum }, "3s", "10ms").
			Should(Equal(uint64(1)))
		Expect(mirrorCounter("A")()).To(BeZero())

		Eventually(func() uint64 {
			mockClock.Add(time.Minute)
			return mirrorCounter("A")()
		}, "3s", "10ms").Should(Equal(uint64(1)))
	})

	It("coalesces a burst into one counter increase per signal", func() {
		conf := testConfig(8)
		conf.PublishEveryNPromotions = 5
		newCache(conf)
		c.Insert("A", 1, 0)
		c.SyncMirror()

		for i := 0; i < 5; i++ {
			c.Get("A")
		}
		Eventually(mirrorCounter("A"), "3s", "10ms").Should(Equal(uint64(5)))
		Expect(c.Stats().SignalsDropped).To(BeZero())
	})

	It("drains buffered signals and publishes a final snapshot on Close", func() {
		conf := testConfig(8)
		conf.PublishEveryNPromotions = 1 << 20
		newCache(conf)
		c.Insert("A", 1, 0)
		c.SyncMirror()

		for i := 0; i < 5; i++ {
			_, ok := c.Get("A")
			Expect(ok).To(BeTrue())
		}
		c.Close()

		Expect(mirrorCounter("A")()).To(Equal(uint64(5)))
	})

	Context("after Close", func() {
		BeforeEach(func() {
			newCache(testConfig(8))
			c.Insert("A", 1, 0)
			c.SyncMirror()
			c.Close()
		})

		It("is idempotent", func() {
			c.Close()
		})

		It("keeps serving reads from the last mirror", func() {
			v, ok := c.Get("A")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
		})

		It("drops signals silently once the buffer fills", func() {
			conf := testConfig(8)
			conf.SignalChannelCapacity = 2
			mockClock = clock.NewMock()
			conf.Clock = mockClock
			var err error
			c, err = New(conf)
			Expect(err).NotTo(HaveOccurred())
			c.Insert("B", 2, 0)
			c.SyncMirror()
			c.Close()

			for i := 0; i < 10; i++ {
				_, ok := c.Get("B")
				Expect(ok).To(BeTrue(), "reads must not degrade after worker exit")
			}
			Expect(c.Stats().SignalsDropped).To(Equal(int64(8)))
		})

		It("still accepts direct master writes", func() {
			c.Insert("B", 2, 0)
			c.SyncMirror()
			v, ok := c.Get("B")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(2))
		})
	})
})
