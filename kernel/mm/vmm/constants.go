package vmm

const (
	// pageLevels is the number of translation levels used with the 4 KiB
	// granule and a 48-bit input address range.
	pageLevels = 4

	// pageLevelBits is the number of virtual address bits consumed by each
	// level; every table holds 1 << pageLevelBits entries.
	pageLevelBits = 9

	// entriesPerTable is the number of descriptors in a translation table.
	entriesPerTable = 1 << pageLevelBits

	// halfSelectShift is the virtual address bit that selects between the
	// TTBR0 (low) and TTBR1 (high) translation roots.
	halfSelectShift = 63
)

// pageLevelShifts defines the shift required to access each page table
// component of a virtual address.
var pageLevelShifts = [pageLevels]uint8{
	39,
	30,
	21,
	12,
}

// Memory attribute indices. Their order matches the MAIR_EL1 slots
// programmed by the mmu package.
const (
	attrIndexNormal uint64 = iota
	attrIndexFramebuffer
	attrIndexDevice
	attrIndexNormalNC
)
