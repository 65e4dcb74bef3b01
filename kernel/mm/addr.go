package mm

import "unsafe"

// PhysAddr is a physical memory address. Physical addresses found in page
// tables or firmware tables cannot be dereferenced directly; they must first
// be converted into a VirtAddr through a DirectMap.
type PhysAddr uintptr

// VirtAddr is an address that can be dereferenced by the kernel.
type VirtAddr uintptr

// PageAligned returns true if the address lies on a page boundary.
func (p PhysAddr) PageAligned() bool {
	return uintptr(p)&(PageSize-1) == 0
}

// Frame returns the physical frame that contains this address.
func (p PhysAddr) Frame() Frame {
	return FrameFromAddress(uintptr(p))
}

// Pointer returns an unsafe.Pointer for this address.
func (v VirtAddr) Pointer() unsafe.Pointer {
	return unsafe.Pointer(uintptr(v))
}

// Add returns the address located off bytes after v.
func (v VirtAddr) Add(off uintptr) VirtAddr {
	return v + VirtAddr(off)
}

// DirectMap describes the higher-half direct map set up by the boot loader:
// the whole of physical memory is accessible at a fixed offset in the kernel
// half of the address space.
type DirectMap struct {
	// Offset is added to a physical address to obtain its direct-mapped
	// virtual address.
	Offset uintptr
}

// ToVirt returns the direct-mapped virtual address for p.
func (dm DirectMap) ToVirt(p PhysAddr) VirtAddr {
	return VirtAddr(uintptr(p) + dm.Offset)
}

// ToPhys is the inverse of ToVirt. It is only meaningful for addresses inside
// the direct map.
func (dm DirectMap) ToPhys(v VirtAddr) PhysAddr {
	return PhysAddr(uintptr(v) - dm.Offset)
}

// Contains returns true if v falls inside the direct-mapped region.
func (dm DirectMap) Contains(v VirtAddr) bool {
	return uintptr(v) >= dm.Offset
}
