package pmm

import (
	"vegaos/kernel"
	"vegaos/kernel/hal/limine"
	"vegaos/kernel/kfmt"
	"vegaos/kernel/mm"
)

var errBootAllocOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of memory"}

// BootMemAllocator implements a rudimentary physical memory allocator which is
// used to bootstrap the kernel.
//
// The allocator walks the usable memory regions reported by the boot loader
// (which are sorted by address and never overlap the kernel image) and hands
// out the frame following the last allocated one. Allocated frames cannot be
// freed.
type BootMemAllocator struct {
	// allocCount tracks the total number of allocated frames.
	allocCount uint64

	// nextFrame is the lowest frame that may be returned by the next
	// allocation.
	nextFrame mm.Frame

	dm mm.DirectMap
}

func (alloc *BootMemAllocator) init(dm mm.DirectMap) {
	alloc.dm = dm
	alloc.allocCount = 0

	// Frame 0 is never handed out: a zero physical address marks an
	// absent table in the translation tables.
	alloc.nextFrame = 1
}

// AllocFrame reserves the next available free frame and fills it with zeroes.
// AllocFrame returns an error if no more memory can be allocated.
func (alloc *BootMemAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	var frame = mm.InvalidFrame

	visitMemRegionsFn(func(region *limine.MemoryMapEntry) bool {
		if region.Type != limine.MemUsable || region.Length < uint64(mm.PageSize) {
			return true
		}

		// Reported addresses may not be page-aligned; round up to get
		// the start frame and round down to get the (exclusive) end frame
		pageSizeMinus1 := uint64(mm.PageSize - 1)
		regionStartFrame := mm.Frame(((region.PhysAddress + pageSizeMinus1) & ^pageSizeMinus1) >> mm.PageShift)
		regionEndFrame := mm.Frame(((region.PhysAddress + region.Length) & ^pageSizeMinus1) >> mm.PageShift)

		candidate := alloc.nextFrame
		if candidate < regionStartFrame {
			candidate = regionStartFrame
		}

		// Region exhausted or entirely below the last allocation
		if candidate >= regionEndFrame {
			return true
		}

		frame = candidate
		return false
	})

	if !frame.Valid() {
		return mm.InvalidFrame, errBootAllocOutOfMemory
	}

	alloc.nextFrame = frame + 1
	alloc.allocCount++
	kernel.Memset(uintptr(alloc.dm.ToVirt(frame.Address())), 0, mm.PageSize)

	return frame, nil
}

// printMemoryMap prints out the system's memory map as reported by the boot
// loader and returns the amount of usable memory.
func (alloc *BootMemAllocator) printMemoryMap() mm.Size {
	w := kfmt.ModuleWriter("pmm")

	kfmt.Fprintf(w, "system memory map:\n")
	var totalFree mm.Size
	visitMemRegionsFn(func(region *limine.MemoryMapEntry) bool {
		kfmt.Fprintf(w, "\t[0x%16x - 0x%16x], size: %10d, type: %s\n", region.PhysAddress, region.PhysAddress+region.Length, region.Length, region.Type.String())

		if region.Type == limine.MemUsable {
			totalFree += mm.Size(region.Length)
		}
		return true
	})
	kfmt.Fprintf(w, "available memory: %dKb\n", uint64(totalFree/mm.Kb))

	return totalFree
}
