package acpi

import (
	"unsafe"

	"vegaos/device/acpi/table"
	"vegaos/kernel"
	"vegaos/kernel/mm"
)

const (
	sizeofSDTHeader = unsafe.Sizeof(table.SDTHeader{})
	signatureLen    = 4
)

var (
	errTableNotFound         = &kernel.Error{Module: "acpi", Message: "ACPI table not found"}
	errTableChecksumMismatch = &kernel.Error{Module: "acpi", Message: "detected checksum mismatch while parsing ACPI table header"}
)

// RootKind identifies the flavor of the root system description table.
type RootKind uint8

const (
	// RootRSDT is the ACPI 1.0 root table holding 32-bit table pointers.
	RootRSDT RootKind = iota

	// RootXSDT is the ACPI 2.0+ root table holding 64-bit table pointers.
	RootXSDT
)

// EntryWidth returns the size in bytes of each table pointer stored in a root
// table of this kind.
func (k RootKind) EntryWidth() uintptr {
	if k == RootXSDT {
		return 8
	}
	return 4
}

// String implements fmt.Stringer for RootKind.
func (k RootKind) String() string {
	if k == RootXSDT {
		return "XSDT"
	}
	return "RSDT"
}

// RootTable is a validated RSDT or XSDT.
type RootTable struct {
	Header *table.SDTHeader
	Kind   RootKind
}

// EntryCount returns the number of table pointers that follow the root table
// header, derived from the declared table length.
func (rt RootTable) EntryCount() int {
	if rt.Header == nil || uintptr(rt.Header.Length) < sizeofSDTHeader {
		return 0
	}

	return int((uintptr(rt.Header.Length) - sizeofSDTHeader) / rt.Kind.EntryWidth())
}

// Entry returns the physical address stored in the index-th root table entry.
func (rt RootTable) Entry(index int) mm.PhysAddr {
	entryPtr := unsafe.Pointer(uintptr(unsafe.Pointer(rt.Header)) + sizeofSDTHeader + uintptr(index)*rt.Kind.EntryWidth())

	if rt.Kind == RootXSDT {
		return mm.PhysAddr(*(*uint64)(entryPtr))
	}
	return mm.PhysAddr(*(*uint32)(entryPtr))
}

// Find scans the entries of root in order for the first table whose 4-byte
// signature equals signature. If the matching table fails checksum
// validation, Find returns errTableChecksumMismatch without looking at the
// remaining entries. Signatures that are not exactly 4 bytes long never
// match.
func Find(dm mm.DirectMap, root RootTable, signature string) (*table.SDTHeader, *kernel.Error) {
	if len(signature) != signatureLen {
		return nil, errTableNotFound
	}

	for i, count := 0, root.EntryCount(); i < count; i++ {
		tableAddr := root.Entry(i)
		if tableAddr == 0 {
			continue
		}

		header := (*table.SDTHeader)(dm.ToVirt(tableAddr).Pointer())
		if string(header.Signature[:]) != signature {
			continue
		}

		if !Valid(header) {
			return nil, errTableChecksumMismatch
		}

		return header, nil
	}

	return nil, errTableNotFound
}
