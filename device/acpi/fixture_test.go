package acpi

import (
	"unsafe"

	"vegaos/device/acpi/table"
	"vegaos/kernel/mm"
)

// fixture emulates a block of physical memory holding firmware tables. The
// direct map offset is set to the buffer address so that physical addresses
// are small offsets which fit in the 32-bit RSDT entries.
type fixture struct {
	buf  []byte
	dm   mm.DirectMap
	next uintptr
}

func newFixture() *fixture {
	buf := make([]byte, 16*1024)
	return &fixture{
		buf: buf,
		dm:  mm.DirectMap{Offset: uintptr(unsafe.Pointer(&buf[0]))},
		// keep physical address 0 unused
		next: 0x40,
	}
}

func (f *fixture) alloc(size uintptr) mm.PhysAddr {
	addr := (f.next + 15) & ^uintptr(15)
	if addr+size > uintptr(len(f.buf)) {
		panic("fixture exhausted")
	}
	f.next = addr + size
	return mm.PhysAddr(addr)
}

func (f *fixture) header(addr mm.PhysAddr) *table.SDTHeader {
	return (*table.SDTHeader)(f.dm.ToVirt(addr).Pointer())
}

// addTable emits a table with the given signature followed by payloadLen
// bytes of payload and a valid checksum.
func (f *fixture) addTable(signature string, payloadLen int) mm.PhysAddr {
	addr := f.alloc(sizeofSDTHeader + uintptr(payloadLen))
	header := f.header(addr)
	copy(header.Signature[:], signature)
	header.Length = uint32(sizeofSDTHeader) + uint32(payloadLen)
	header.Revision = 2
	copy(header.OEMID[:], "VEGAOS")
	copy(header.OEMTableID[:], "FIXTURE ")

	payload := f.buf[uintptr(addr)+sizeofSDTHeader : uintptr(addr)+uintptr(header.Length)]
	for i := range payload {
		payload[i] = byte(i*7 + 3)
	}

	updateChecksum(header)
	return addr
}

// addRoot emits a root table of the given kind pointing at entries.
func (f *fixture) addRoot(kind RootKind, entries ...mm.PhysAddr) mm.PhysAddr {
	addr := f.alloc(sizeofSDTHeader + uintptr(len(entries))*kind.EntryWidth())
	header := f.header(addr)
	copy(header.Signature[:], kind.String())
	header.Length = uint32(sizeofSDTHeader)

	for _, entry := range entries {
		entryPtr := unsafe.Pointer(uintptr(unsafe.Pointer(header)) + uintptr(header.Length))
		if kind == RootXSDT {
			*(*uint64)(entryPtr) = uint64(entry)
		} else {
			*(*uint32)(entryPtr) = uint32(entry)
		}
		header.Length += uint32(kind.EntryWidth())
	}

	updateChecksum(header)
	return addr
}

// addRSDP emits an RSDP with valid checksums.
func (f *fixture) addRSDP(revision uint8, rsdtAddr, xsdtAddr mm.PhysAddr) mm.PhysAddr {
	addr := f.alloc(unsafe.Sizeof(table.ExtRSDPDescriptor{}))
	rsdp := (*table.ExtRSDPDescriptor)(f.dm.ToVirt(addr).Pointer())
	rsdp.Signature = rsdpSignature
	copy(rsdp.OEMID[:], "VEGAOS")
	rsdp.Revision = revision
	rsdp.RSDTAddr = uint32(rsdtAddr)
	rsdp.Checksum = -calcChecksum(uintptr(unsafe.Pointer(rsdp)), unsafe.Sizeof(table.RSDPDescriptor{}))

	if revision >= acpiRev2Plus {
		rsdp.Length = extRSDPLength
		rsdp.XSDTAddr = uint64(xsdtAddr)
		rsdp.ExtendedChecksum = -calcChecksum(uintptr(unsafe.Pointer(rsdp)), extRSDPLength)
	}

	return addr
}

func updateChecksum(header *table.SDTHeader) {
	header.Checksum = 0
	header.Checksum = -calcChecksum(uintptr(unsafe.Pointer(header)), uintptr(header.Length))
}

func calcChecksum(tableAddr, length uintptr) uint8 {
	var checksum uint8
	for ptr := tableAddr; ptr < tableAddr+length; ptr++ {
		checksum += *(*uint8)(unsafe.Pointer(ptr))
	}

	return checksum
}
