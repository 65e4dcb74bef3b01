package mmu

import "vegaos/kernel/cpu"

// Translation granule encodings. TG0 and TG1 use different encodings for the
// same granule size.
const (
	TG0Granule4K = 0
	TG1Granule4K = 2
)

// Cacheability and shareability encodings for translation table walks.
const (
	CacheWBRWA      = 1
	ShareOuter      = 2
	ShareInner      = 3
	inputSize48Bits = 16
)

// TCR holds the TCR_EL1 fields programmed by the kernel. Fields hold raw
// field values; Encode places them at their bit positions.
type TCR struct {
	// T0SZ and T1SZ give the size offset of the TTBR0 and TTBR1 regions:
	// each covers 2^(64-TnSZ) bytes.
	T0SZ, T1SZ uint8

	// TG0 and TG1 select the translation granule for each region.
	TG0, TG1 uint8

	// Inner/outer cacheability and shareability for TTBR0 walks.
	IRGN0, ORGN0, SH0 uint8

	// Inner/outer cacheability and shareability for TTBR1 walks.
	IRGN1, ORGN1, SH1 uint8

	// IPS is the intermediate physical address size.
	IPS uint8

	// AS16 selects 16-bit ASIDs.
	AS16 bool
}

// Encode returns the TCR_EL1 value for t.
func (t TCR) Encode() uint64 {
	v := uint64(t.T0SZ&0x3f) |
		uint64(t.IRGN0&0x3)<<8 |
		uint64(t.ORGN0&0x3)<<10 |
		uint64(t.SH0&0x3)<<12 |
		uint64(t.TG0&0x3)<<14 |
		uint64(t.T1SZ&0x3f)<<16 |
		uint64(t.IRGN1&0x3)<<24 |
		uint64(t.ORGN1&0x3)<<26 |
		uint64(t.SH1&0x3)<<28 |
		uint64(t.TG1&0x3)<<30 |
		uint64(t.IPS&0x7)<<32

	if t.AS16 {
		v |= 1 << 36
	}

	return v
}

// kernelTCR returns the translation control value installed by Init: 48-bit
// regions for both halves, 4 KiB granules, write-back walks and the largest
// physical address size reported by the CPU.
func kernelTCR(mmfr0 uint64) TCR {
	return TCR{
		T0SZ:  inputSize48Bits,
		T1SZ:  inputSize48Bits,
		TG0:   TG0Granule4K,
		TG1:   TG1Granule4K,
		IRGN0: CacheWBRWA,
		ORGN0: CacheWBRWA,
		SH0:   ShareOuter,
		IRGN1: CacheWBRWA,
		ORGN1: CacheWBRWA,
		SH1:   ShareOuter,
		IPS:   cpu.PhysAddrRange(mmfr0),
		AS16:  true,
	}
}
