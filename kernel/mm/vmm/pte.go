package vmm

import "vegaos/kernel/mm"

// descriptorFlag describes a bit (or bit-field) of a stage 1 translation
// table descriptor.
type descriptorFlag uint64

const (
	// descValid is set for any descriptor that the MMU may follow.
	descValid descriptorFlag = 1 << 0

	// descTable marks a table descriptor at levels 0-2 and a page
	// descriptor at level 3. When clear on a valid level 1 or 2 entry the
	// descriptor maps a block.
	descTable descriptorFlag = 1 << 1

	// descAttrIndexShift is the position of the 3-bit MAIR slot index.
	descAttrIndexShift = 2

	// descUser grants EL0 access (AP[1]).
	descUser descriptorFlag = 1 << 6

	// descReadOnly disables writes (AP[2]).
	descReadOnly descriptorFlag = 1 << 7

	// descInnerShareable sets SH[1:0] to inner shareable.
	descInnerShareable descriptorFlag = 3 << 8

	// descAccessed is the access flag; pages without it fault on first
	// access.
	descAccessed descriptorFlag = 1 << 10

	// descNotGlobal tags the TLB entry with the current ASID.
	descNotGlobal descriptorFlag = 1 << 11

	// descPXN and descUXN prevent instruction fetches at EL1 and EL0.
	descPXN descriptorFlag = 1 << 53
	descUXN descriptorFlag = 1 << 54

	// descAddrMask extracts the output address of a descriptor.
	descAddrMask = uint64(0x0000fffffffff000)
)

// pageTableEntry is a translation table descriptor.
type pageTableEntry uint64

// HasFlags returns true if this entry has all the input flags set.
func (pte pageTableEntry) HasFlags(flags descriptorFlag) bool {
	return (uint64(pte) & uint64(flags)) == uint64(flags)
}

// SetFlags sets the input list of flags to the page table entry.
func (pte *pageTableEntry) SetFlags(flags descriptorFlag) {
	*pte = (pageTableEntry)(uint64(*pte) | uint64(flags))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *pageTableEntry) ClearFlags(flags descriptorFlag) {
	*pte = (pageTableEntry)(uint64(*pte) &^ uint64(flags))
}

// Address returns the physical address encoded in this entry with all
// attribute bits stripped.
func (pte pageTableEntry) Address() mm.PhysAddr {
	return mm.PhysAddr(uint64(pte) & descAddrMask)
}

// SetAddress updates the output address of the entry leaving its attribute
// bits untouched.
func (pte *pageTableEntry) SetAddress(addr mm.PhysAddr) {
	*pte = (pageTableEntry)((uint64(*pte) &^ descAddrMask) | (uint64(addr) & descAddrMask))
}

// MapFlag describes an access attribute requested for a mapping.
type MapFlag uint8

const (
	// FlagRW allows writes to the page.
	FlagRW MapFlag = 1 << iota

	// FlagUser makes the page accessible from EL0.
	FlagUser

	// FlagExec allows instruction fetches from the page at the privilege
	// level that can access it.
	FlagExec

	// FlagGlobal keeps the TLB entry valid across ASID switches.
	FlagGlobal

	// FlagDevice maps the page with device memory attributes.
	FlagDevice
)

// leafDescriptor builds a level 3 page descriptor for pa.
func leafDescriptor(pa mm.PhysAddr, flags MapFlag) pageTableEntry {
	var pte pageTableEntry
	pte.SetAddress(pa)
	pte.SetFlags(descValid | descTable | descAccessed)

	if flags&FlagDevice != 0 {
		pte.SetFlags(descriptorFlag(attrIndexDevice << descAttrIndexShift))
	} else {
		pte.SetFlags(descriptorFlag(attrIndexNormal<<descAttrIndexShift) | descInnerShareable)
	}

	if flags&FlagRW == 0 {
		pte.SetFlags(descReadOnly)
	}

	if flags&FlagGlobal == 0 {
		pte.SetFlags(descNotGlobal)
	}

	if flags&FlagUser != 0 {
		pte.SetFlags(descUser)
	}

	// EL1 never executes pages that are accessible from EL0.
	switch {
	case flags&FlagExec == 0:
		pte.SetFlags(descPXN | descUXN)
	case flags&FlagUser != 0:
		pte.SetFlags(descPXN)
	default:
		pte.SetFlags(descUXN)
	}

	return pte
}
