package dualcache

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skipor/dualcache/log"
)

var _ = Describe("LogView", func() {
	var (
		c   *Cache[string, int]
		buf *bytes.Buffer
		v   *LogView[string, int]
	)
	BeforeEach(func() {
		resetKeys()
		var err error
		c, err = New(testConfig(8))
		Expect(err).NotTo(HaveOccurred())
		buf = &bytes.Buffer{}
		v = NewLogView[string, int](c, log.NewLogger(log.DebugLevel, buf))
	})
	AfterEach(func() {
		c.Close()
	})

	It("passes operations through unchanged", func() {
		v.Insert("A", 1, 7)
		c.SyncMirror()
		value, ok := v.Get("A")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal(1))
		Expect(v.Update("A", 2)).To(BeTrue())
		Expect(v.Delete("A")).To(BeTrue())
		Expect(v.Delete("A")).To(BeFalse())
	})

	It("logs every operation", func() {
		v.Insert("A", 1, 0)
		v.Get("A")
		v.Update("A", 2)
		v.Delete("A")
		out := buf.String()
		Expect(out).To(ContainSubstring("insert A"))
		Expect(out).To(ContainSubstring("get A"))
		Expect(out).To(ContainSubstring("update A"))
		Expect(out).To(ContainSubstring("delete A"))
	})
})
