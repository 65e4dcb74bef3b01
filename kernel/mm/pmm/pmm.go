// Package pmm provides the physical frame allocator used while the kernel
// boots.
package pmm

import (
	"vegaos/kernel"
	"vegaos/kernel/hal/limine"
	"vegaos/kernel/mm"
)

var (
	// bootMemAllocator is the page allocator used when the kernel boots.
	bootMemAllocator BootMemAllocator

	// visitMemRegionsFn is used by tests to supply a synthetic memory map.
	visitMemRegionsFn = limine.VisitMemRegions

	errNoUsableMemory = &kernel.Error{Module: "pmm", Message: "boot loader did not report any usable memory"}
)

// Init sets up the kernel physical memory allocation sub-system and registers
// it as the active frame allocator. Allocated frames are zeroed through dm.
func Init(dm mm.DirectMap) *kernel.Error {
	bootMemAllocator.init(dm)
	if bootMemAllocator.printMemoryMap() == 0 {
		return errNoUsableMemory
	}

	mm.SetFrameAllocator(earlyAllocFrame)
	return nil
}

func earlyAllocFrame() (mm.Frame, *kernel.Error) {
	return bootMemAllocator.AllocFrame()
}
