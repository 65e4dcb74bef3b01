package mmu

// Memory attribute encodings (MAIR_EL1 attr fields).
const (
	// AttrNormalWB is normal memory, write-back non-transient with read and
	// write allocation for both inner and outer caches.
	AttrNormalWB uint8 = 0xff

	// AttrDeviceNGnRnE is device memory with no gathering, no reordering
	// and no early write acknowledgement.
	AttrDeviceNGnRnE uint8 = 0x00

	// attrUncached fills the NormalNC slot with the Device-nGnRE encoding.
	attrUncached uint8 = 0x04

	// attrFramebufferOverride replaces an AttrNormalWB framebuffer slot.
	// Some hosts (QEMU) program the framebuffer slot as 0xff which makes
	// framebuffer writes cache-resident.
	attrFramebufferOverride uint8 = 0x0c
)

// MAIR describes the four memory attribute slots used by the kernel. The
// slot order matches the AttrIndx values emitted by the vmm package.
type MAIR struct {
	// Slot 0: normal cacheable memory.
	Normal uint8

	// Slot 1: framebuffer memory as set up by the boot loader.
	Framebuffer uint8

	// Slot 2: memory mapped device registers.
	Device uint8

	// Slot 3: normal non-cacheable memory.
	NormalNC uint8
}

// Encode returns the MAIR_EL1 value for m; slot i occupies bits [8i+7:8i].
func (m MAIR) Encode() uint64 {
	return uint64(m.Normal) |
		uint64(m.Framebuffer)<<8 |
		uint64(m.Device)<<16 |
		uint64(m.NormalNC)<<24
}

// FramebufferAttr extracts the framebuffer slot from the current MAIR_EL1
// value, replacing the 0xff sentinel with a non write-back encoding.
func FramebufferAttr(current uint64) uint8 {
	attr := uint8(current >> 8)
	if attr == AttrNormalWB {
		return attrFramebufferOverride
	}
	return attr
}

// kernelMAIR returns the attribute table installed by Init.
func kernelMAIR(current uint64) MAIR {
	return MAIR{
		Normal:      AttrNormalWB,
		Framebuffer: FramebufferAttr(current),
		Device:      AttrDeviceNGnRnE,
		NormalNC:    attrUncached,
	}
}
