package analysis_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/analysis"
	"github.com/sarchlab/r2sim/timing/latency"
	"github.com/sarchlab/r2sim/trace"
)

var _ = Describe("CacheProfile", func() {
	It("should replay both fetch ports every cycle", func() {
		entries := []trace.Entry{
			{Cycle: 0, PC: 0},
			{Cycle: 1, PC: 8},
		}

		p := analysis.ProfileCaches(entries, nil)
		Expect(p.ICache.Accesses()).To(Equal(uint64(4)))
		Expect(p.ICache.Misses).To(Equal(uint64(1)))
		Expect(p.ICache.Hits).To(Equal(uint64(3)))

		// One cold miss at the default 20-cycle penalty, three hits.
		Expect(p.ICacheCycles).To(Equal(uint64(23)))
	})

	It("should replay granted memory accesses", func() {
		entries := []trace.Entry{{
			Mem0Read:  true,
			MemAddr0:  0x100,
			Mem1Write: true,
			MemAddr1:  0x104,
		}}

		p := analysis.ProfileCaches(entries, nil)
		Expect(p.DCache.Reads).To(Equal(uint64(1)))
		Expect(p.DCache.Writes).To(Equal(uint64(1)))
		Expect(p.DCache.Misses).To(Equal(uint64(1)))
		Expect(p.DCache.Hits).To(Equal(uint64(1)))
		Expect(p.DCacheCycles).To(Equal(uint64(21)))
	})

	It("should honor a custom geometry", func() {
		config := latency.DefaultSimConfig()
		config.ICacheSize = 1024
		config.ICacheHitLatency = 2
		config.ICacheMissLatency = 7

		entries := []trace.Entry{{PC: 0}}

		p := analysis.ProfileCaches(entries, config)
		Expect(p.ICache.Misses).To(Equal(uint64(1)))
		Expect(p.ICache.Hits).To(Equal(uint64(1)))
		Expect(p.ICacheCycles).To(Equal(uint64(9)))
	})

	It("should profile a live run", func() {
		entries := runTrace(exitProgram)

		p := analysis.ProfileCaches(entries, nil)
		Expect(p.ICache.Accesses()).To(Equal(uint64(2 * len(entries))))
		Expect(p.DCache.Accesses()).To(Equal(uint64(0)))
	})

	It("should render the profile", func() {
		var buf bytes.Buffer
		p := analysis.ProfileCaches(runTrace(exitProgram), nil)
		p.WriteReport(&buf)

		out := buf.String()
		Expect(out).To(ContainSubstring("Cache Profile"))
		Expect(out).To(ContainSubstring("Hit rate"))
		Expect(out).To(ContainSubstring("Modeled cycles"))
	})
})
