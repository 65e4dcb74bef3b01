// Package acpi discovers and validates the ACPI tables handed over by the
// firmware.
package acpi

import (
	"io"
	"unsafe"

	"vegaos/device/acpi/table"
	"vegaos/kernel"
	"vegaos/kernel/hal"
	"vegaos/kernel/hal/limine"
	"vegaos/kernel/kfmt"
	"vegaos/kernel/mm"
)

const (
	acpiRev2Plus uint8 = 2

	// extRSDPLength is the size of the ACPI 2.0+ RSDP covered by the
	// extended checksum.
	extRSDPLength = 36
)

var (
	errMissingRSDP          = &kernel.Error{Module: "acpi", Message: "boot loader did not provide the ACPI RSDP"}
	errInvalidRSDPSignature = &kernel.Error{Module: "acpi", Message: "RSDP signature mismatch"}
	errRSDPChecksumMismatch = &kernel.Error{Module: "acpi", Message: "could not validate RSDP checksum"}
	errMissingRootTable     = &kernel.Error{Module: "acpi", Message: "RSDP does not point to a root system description table"}
	errRootChecksumMismatch = &kernel.Error{Module: "acpi", Message: "could not validate ACPI root table checksum"}
	errMissingMADT          = &kernel.Error{Module: "acpi", Message: "query for ACPI MADT failed"}
	errMADTChecksumMismatch = &kernel.Error{Module: "acpi", Message: "could not validate ACPI MADT checksum"}

	// initDriverFn is used by tests to bypass the driver bookkeeping.
	initDriverFn = hal.InitDriver

	rsdpSignature = [8]byte{'R', 'S', 'D', ' ', 'P', 'T', 'R', ' '}
	madtSignature = "APIC"
)

// Tables caches the result of ACPI discovery. It is built once by Init and
// never modified afterwards, so it can be shared without locking.
type Tables struct {
	dm         mm.DirectMap
	root       RootTable
	rootAddr   mm.PhysAddr
	entryCount int
	madt       *table.MADT
}

// Root returns the validated root table.
func (t *Tables) Root() RootTable { return t.root }

// RootAddr returns the physical address of the root table.
func (t *Tables) RootAddr() mm.PhysAddr { return t.rootAddr }

// EntryCount returns the number of entries in the root table.
func (t *Tables) EntryCount() int { return t.entryCount }

// MADT returns the validated multiple APIC description table.
func (t *Tables) MADT() *table.MADT { return t.madt }

// LookupTable implements table.Resolver.
func (t *Tables) LookupTable(signature string) *table.SDTHeader {
	header, err := Find(t.dm, t.root, signature)
	if err != nil {
		return nil
	}
	return header
}

// Init locates the root system description table through the RSDP reported
// by the boot loader, validates it and looks up the MADT. Any error returned
// by Init is fatal: the firmware tables do not change between attempts.
func Init(dm mm.DirectMap, info limine.BootInfo) (*Tables, *kernel.Error) {
	drv := &acpiDriver{dm: dm, rsdpAddr: info.RSDPAddr}
	if err := initDriverFn(drv); err != nil {
		return nil, err
	}

	return drv.tables, nil
}

type acpiDriver struct {
	dm       mm.DirectMap
	rsdpAddr mm.PhysAddr

	// tables is populated by a successful call to DriverInit.
	tables *Tables
}

// DriverInit initializes this driver.
func (drv *acpiDriver) DriverInit(w io.Writer) *kernel.Error {
	root, rootAddr, err := locateRootTable(drv.dm, drv.rsdpAddr)
	if err != nil {
		return err
	}

	tables := &Tables{
		dm:         drv.dm,
		root:       root,
		rootAddr:   rootAddr,
		entryCount: root.EntryCount(),
	}

	kfmt.Fprintf(w, "%s at 0x%16x with %d entries\n", root.Kind.String(), uintptr(rootAddr), tables.entryCount)
	drv.printTableInfo(w, tables)

	header, err := Find(drv.dm, root, madtSignature)
	switch err {
	case nil:
	case errTableChecksumMismatch:
		return errMADTChecksumMismatch
	default:
		return errMissingMADT
	}

	tables.madt = (*table.MADT)(unsafe.Pointer(header))
	drv.tables = tables
	return nil
}

// DriverName returns the name of this driver.
func (*acpiDriver) DriverName() string {
	return "ACPI"
}

// DriverVersion returns the version of this driver.
func (*acpiDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

func (drv *acpiDriver) printTableInfo(w io.Writer, tables *Tables) {
	for i := 0; i < tables.entryCount; i++ {
		tableAddr := tables.root.Entry(i)
		if tableAddr == 0 {
			continue
		}

		header := (*table.SDTHeader)(drv.dm.ToVirt(tableAddr).Pointer())
		kfmt.Fprintf(w, "%s at 0x%16x %6x (%6s %8s)",
			header.Signature,
			uintptr(tableAddr),
			header.Length,
			header.OEMID[:],
			header.OEMTableID[:],
		)

		if !Valid(header) {
			kfmt.Fprintf(w, " [checksum mismatch]")
		}
		kfmt.Fprintf(w, "\n")
	}
}

// locateRootTable validates the RSDP at rsdpAddr and the root table it points
// to. The RSDT is used whenever the RSDP provides one; the XSDT is only used
// by ACPI 2.0+ firmware that leaves the RSDT pointer empty.
func locateRootTable(dm mm.DirectMap, rsdpAddr mm.PhysAddr) (RootTable, mm.PhysAddr, *kernel.Error) {
	if rsdpAddr == 0 {
		return RootTable{}, 0, errMissingRSDP
	}

	rsdpPtr := uintptr(dm.ToVirt(rsdpAddr))
	rsdp := (*table.RSDPDescriptor)(unsafe.Pointer(rsdpPtr))
	if rsdp.Signature != rsdpSignature {
		return RootTable{}, 0, errInvalidRSDPSignature
	}

	if !validTable(rsdpPtr, uint32(unsafe.Sizeof(*rsdp))) {
		return RootTable{}, 0, errRSDPChecksumMismatch
	}

	var (
		rootAddr = mm.PhysAddr(rsdp.RSDTAddr)
		kind     = RootRSDT
	)

	if rsdp.Revision >= acpiRev2Plus {
		rsdp2 := (*table.ExtRSDPDescriptor)(unsafe.Pointer(rsdpPtr))
		if rsdp2.Length < extRSDPLength || !validTable(rsdpPtr, rsdp2.Length) {
			return RootTable{}, 0, errRSDPChecksumMismatch
		}

		if rootAddr == 0 {
			rootAddr, kind = mm.PhysAddr(rsdp2.XSDTAddr), RootXSDT
		}
	}

	if rootAddr == 0 {
		return RootTable{}, 0, errMissingRootTable
	}

	root := RootTable{
		Header: (*table.SDTHeader)(dm.ToVirt(rootAddr).Pointer()),
		Kind:   kind,
	}

	if !Valid(root.Header) {
		return RootTable{}, 0, errRootChecksumMismatch
	}

	return root, rootAddr, nil
}
