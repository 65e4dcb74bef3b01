// Package limine implements the kernel side of the Limine boot protocol. The
// kernel image carries a set of request structures tagged with well-known
// magic IDs; the boot loader locates them before jumping to the kernel and
// fills in their response pointers. Collect gathers the responses consumed
// by early boot into a BootInfo value.
package limine

import (
	"unsafe"

	"vegaos/kernel"
	"vegaos/kernel/mm"
)

// commonMagic prefixes the ID of every request.
var commonMagic = [2]uint64{0xc7b1dd30df4c8b88, 0x0a82e883a194f07b}

// request mirrors the fixed part of every Limine request. The response field
// holds the address of a boot loader-provided response (inside the higher
// half direct map) or 0 if the boot loader did not answer the request.
type request struct {
	id       [4]uint64
	revision uint64
	response uintptr
}

var (
	// The requests below are scanned for by the boot loader. They must
	// stay package-level variables so they end up in the kernel image.
	rsdpReq = request{id: [4]uint64{commonMagic[0], commonMagic[1], 0xc5e77b6b397e7b43, 0x27637845accdcf3c}}
	hhdmReq = request{id: [4]uint64{commonMagic[0], commonMagic[1], 0x48dcf1cb8ad2b852, 0x63984e959a98244b}}
	fbReq   = request{id: [4]uint64{commonMagic[0], commonMagic[1], 0x9d5827dcd881dd75, 0xa3148604f6fab11b}}
	mmapReq = request{id: [4]uint64{commonMagic[0], commonMagic[1], 0x67cf3d9d378a806f, 0xe304acdfc50c3c62}}

	errMissingHHDM = &kernel.Error{Module: "limine", Message: "boot loader did not provide the higher half direct map offset"}
)

type rsdpResponse struct {
	revision uint64
	address  uintptr
}

type hhdmResponse struct {
	revision uint64
	offset   uint64
}

type framebufferResponse struct {
	revision         uint64
	framebufferCount uint64
	framebuffers     uintptr
}

type framebuffer struct {
	address        uintptr
	width          uint64
	height         uint64
	pitch          uint64
	bpp            uint16
	memoryModel    uint8
	redMaskSize    uint8
	redMaskShift   uint8
	greenMaskSize  uint8
	greenMaskShift uint8
	blueMaskSize   uint8
	blueMaskShift  uint8
	unused         [7]uint8
	edidSize       uint64
	edid           uintptr
}

type memmapResponse struct {
	revision   uint64
	entryCount uint64
	entries    uintptr
}

// FramebufferInfo describes the linear framebuffer set up by the boot loader.
type FramebufferInfo struct {
	// The framebuffer physical address; 0 if no framebuffer is available.
	PhysAddr mm.PhysAddr

	// Width and height in pixels.
	Width, Height uint64

	// Row pitch in bytes.
	Pitch uint64

	// Bits per pixel.
	Bpp uint16
}

// BootInfo collects the boot loader responses needed by early boot.
type BootInfo struct {
	// RSDPAddr is the physical address of the ACPI root system description
	// pointer or 0 if the firmware does not provide one.
	RSDPAddr mm.PhysAddr

	// HHDMOffset is the offset of the higher half direct map.
	HHDMOffset uintptr

	// Framebuffer describes the first framebuffer reported by the boot
	// loader.
	Framebuffer FramebufferInfo
}

// DirectMap returns the higher half direct map described by this BootInfo.
func (bi *BootInfo) DirectMap() mm.DirectMap {
	return mm.DirectMap{Offset: bi.HHDMOffset}
}

// Collect reads the boot loader responses. A missing direct map offset is
// reported as an error as nothing can be dereferenced without it; a missing
// RSDP or framebuffer leaves the corresponding BootInfo field zeroed and it is
// up to the consumer to decide whether this is fatal.
func Collect() (BootInfo, *kernel.Error) {
	var info BootInfo

	if hhdmReq.response == 0 {
		return info, errMissingHHDM
	}

	info.HHDMOffset = uintptr((*hhdmResponse)(unsafe.Pointer(hhdmReq.response)).offset)
	dm := info.DirectMap()

	if rsdpReq.response != 0 {
		info.RSDPAddr = toPhys(dm, (*rsdpResponse)(unsafe.Pointer(rsdpReq.response)).address)
	}

	if fbReq.response != 0 {
		resp := (*framebufferResponse)(unsafe.Pointer(fbReq.response))
		if resp.framebufferCount != 0 {
			fb := *(**framebuffer)(unsafe.Pointer(resp.framebuffers))
			info.Framebuffer = FramebufferInfo{
				PhysAddr: toPhys(dm, fb.address),
				Width:    fb.width,
				Height:   fb.height,
				Pitch:    fb.pitch,
				Bpp:      fb.bpp,
			}
		}
	}

	return info, nil
}

// toPhys normalizes an address reported by the boot loader. Depending on the
// protocol revision, pointers may be handed over either as physical addresses
// or already offset into the direct map.
func toPhys(dm mm.DirectMap, addr uintptr) mm.PhysAddr {
	if dm.Offset != 0 && dm.Contains(mm.VirtAddr(addr)) {
		return dm.ToPhys(mm.VirtAddr(addr))
	}
	return mm.PhysAddr(addr)
}

// MemoryEntryType defines the type of a MemoryMapEntry.
type MemoryEntryType uint64

const (
	// MemUsable indicates that the memory region is available for use.
	MemUsable MemoryEntryType = iota

	// MemReserved indicates that the memory region is not available for use.
	MemReserved

	// MemACPIReclaimable holds ACPI tables that can be reused by the OS
	// once they have been parsed.
	MemACPIReclaimable

	// MemACPINVS indicates memory that must be preserved across sleep states.
	MemACPINVS

	// MemBad marks defective memory.
	MemBad

	// MemBootloaderReclaimable holds boot loader data structures
	// (including the responses read by Collect).
	MemBootloaderReclaimable

	// MemKernelAndModules holds the kernel image.
	MemKernelAndModules

	// MemFramebuffer backs the framebuffer.
	MemFramebuffer
)

// String implements fmt.Stringer for MemoryEntryType.
func (t MemoryEntryType) String() string {
	switch t {
	case MemUsable:
		return "usable"
	case MemReserved:
		return "reserved"
	case MemACPIReclaimable:
		return "ACPI (reclaimable)"
	case MemACPINVS:
		return "ACPI NVS"
	case MemBad:
		return "bad"
	case MemBootloaderReclaimable:
		return "bootloader (reclaimable)"
	case MemKernelAndModules:
		return "kernel"
	case MemFramebuffer:
		return "framebuffer"
	default:
		return "unknown"
	}
}

// MemoryMapEntry describes a physical memory region reported by the boot
// loader.
type MemoryMapEntry struct {
	// The physical address for this memory region.
	PhysAddress uint64

	// The length of the memory region.
	Length uint64

	// The type of this entry.
	Type MemoryEntryType
}

// MemRegionVisitor is invoked by VisitMemRegions for each memory region
// provided by the boot loader. The visitor must return true to continue or
// false to abort the scan.
type MemRegionVisitor func(*MemoryMapEntry) bool

// VisitMemRegions invokes visitor for each memory region reported by the boot
// loader, in the order in which they were reported.
func VisitMemRegions(visitor MemRegionVisitor) {
	if mmapReq.response == 0 {
		return
	}

	resp := (*memmapResponse)(unsafe.Pointer(mmapReq.response))
	for i := uint64(0); i < resp.entryCount; i++ {
		entryPtr := *(**MemoryMapEntry)(unsafe.Pointer(resp.entries + uintptr(i)<<mm.PointerShift))
		if !visitor(entryPtr) {
			return
		}
	}
}
