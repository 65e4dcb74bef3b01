// Package vmm implements the aarch64 stage 1 translation table walker used by
// the kernel. Tables are never accessed through a recursive mapping; every
// table is reached through the higher half direct map.
package vmm

import (
	"vegaos/kernel"
	"vegaos/kernel/mm"
)

var errInvalidIndex = &kernel.Error{Module: "vmm", Message: "translation table index out of range"}

// entryAt returns a pointer to the index-th descriptor of the table located
// at physical address table.
func entryAt(dm mm.DirectMap, table mm.PhysAddr, index uint) *pageTableEntry {
	return (*pageTableEntry)(dm.ToVirt(table).Add(uintptr(index) << mm.PointerShift).Pointer())
}

// tableIndex extracts the table index for the given level from virtAddr.
func tableIndex(virtAddr uintptr, level int) uint {
	return uint((virtAddr >> pageLevelShifts[level]) & (entriesPerTable - 1))
}

// NextLevel returns the physical address stored in the index-th descriptor of
// the table at physical address table.
//
// If the descriptor is not valid and alloc is false, NextLevel returns 0
// without touching the frame allocator. If alloc is true, a zeroed frame is
// obtained from mm.AllocFrame, installed as a table descriptor and its
// physical address is returned so callers can keep walking into the new
// table.
func NextLevel(dm mm.DirectMap, table mm.PhysAddr, index uint, alloc bool) (mm.PhysAddr, *kernel.Error) {
	if index >= entriesPerTable {
		return 0, errInvalidIndex
	}

	pte := entryAt(dm, table, index)
	if pte.HasFlags(descValid) {
		return pte.Address(), nil
	}

	if !alloc {
		return 0, nil
	}

	frame, err := mm.AllocFrame()
	if err != nil {
		return 0, err
	}

	*pte = 0
	pte.SetAddress(frame.Address())
	pte.SetFlags(descValid | descTable)

	return frame.Address(), nil
}

// entryFor walks the tables of root down to the level 3 table that covers
// virtAddr and returns a pointer to the descriptor for virtAddr. Missing
// intermediate tables are allocated if alloc is true; otherwise a nil pointer
// is returned when the walk crosses an invalid descriptor.
func entryFor(dm mm.DirectMap, root mm.PhysAddr, virtAddr uintptr, alloc bool) (*pageTableEntry, *kernel.Error) {
	var (
		table = root
		err   *kernel.Error
	)

	for level := 0; level < pageLevels-1; level++ {
		index := tableIndex(virtAddr, level)
		if pte := entryAt(dm, table, index); pte.HasFlags(descValid) && !pte.HasFlags(descTable) {
			return nil, errBlockMapping
		}

		if table, err = NextLevel(dm, table, index, alloc); err != nil || table == 0 {
			return nil, err
		}
	}

	return entryAt(dm, table, tableIndex(virtAddr, pageLevels-1)), nil
}
