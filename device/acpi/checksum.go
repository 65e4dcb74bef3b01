package acpi

import (
	"unsafe"

	"vegaos/device/acpi/table"
)

// Valid returns true if the unsigned sum of all bytes in the table that
// header belongs to, over the length declared by the header, is 0 modulo 256.
func Valid(header *table.SDTHeader) bool {
	return validTable(uintptr(unsafe.Pointer(header)), header.Length)
}

// validTable calculates the checksum for an ACPI table of length tableLength
// that starts at tablePtr and returns true if the table is valid.
func validTable(tablePtr uintptr, tableLength uint32) bool {
	var (
		i   uint32
		sum uint8
	)

	for i = 0; i < tableLength; i++ {
		sum += *(*uint8)(unsafe.Pointer(tablePtr + uintptr(i)))
	}

	return sum == 0
}
