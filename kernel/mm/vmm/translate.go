package vmm

import "vegaos/kernel/mm"

// Translate walks the tables of pm and returns the page-aligned physical
// address that virtAddr maps to, or 0 if any descriptor along the walk is
// invalid. Callers add PageOffset(virtAddr) to get a byte address.
//
// Translate performs no allocations and never modifies the tables.
func Translate(dm mm.DirectMap, pm Pagemap, virtAddr uintptr) mm.PhysAddr {
	table := pm.Root(virtAddr)
	for level := 0; level < pageLevels && table != 0; level++ {
		// The index is always in range so no error can be returned
		table, _ = NextLevel(dm, table, tableIndex(virtAddr, level), false)
	}

	return table
}

// PageOffset returns the offset within the page specified by a virtual
// address.
func PageOffset(virtAddr uintptr) uintptr {
	return virtAddr & (mm.PageSize - 1)
}
