package table

import (
	"testing"
	"unsafe"
)

func TestWireSizes(t *testing.T) {
	specs := []struct {
		descr string
		got   uintptr
		exp   uintptr
	}{
		{"RSDPDescriptor", unsafe.Sizeof(RSDPDescriptor{}), 20},
		// XSDTAddr forces 8-byte alignment so the struct carries trailing padding
		{"ExtRSDPDescriptor", unsafe.Sizeof(ExtRSDPDescriptor{}), 40},
		{"SDTHeader", unsafe.Sizeof(SDTHeader{}), 36},
		{"MADT", unsafe.Sizeof(MADT{}), 44},
		{"MADTEntry", unsafe.Sizeof(MADTEntry{}), 2},
	}

	for _, spec := range specs {
		if spec.got != spec.exp {
			t.Errorf("expected sizeof(%s) to be %d; got %d", spec.descr, spec.exp, spec.got)
		}
	}
}

func TestWireOffsets(t *testing.T) {
	var (
		rsdp ExtRSDPDescriptor
		hdr  SDTHeader
	)

	specs := []struct {
		descr string
		got   uintptr
		exp   uintptr
	}{
		{"RSDPDescriptor.Revision", unsafe.Offsetof(rsdp.Revision), 15},
		{"RSDPDescriptor.RSDTAddr", unsafe.Offsetof(rsdp.RSDTAddr), 16},
		{"ExtRSDPDescriptor.Length", unsafe.Offsetof(rsdp.Length), 20},
		{"ExtRSDPDescriptor.XSDTAddr", unsafe.Offsetof(rsdp.XSDTAddr), 24},
		{"ExtRSDPDescriptor.ExtendedChecksum", unsafe.Offsetof(rsdp.ExtendedChecksum), 32},
		{"SDTHeader.Length", unsafe.Offsetof(hdr.Length), 4},
		{"SDTHeader.Checksum", unsafe.Offsetof(hdr.Checksum), 9},
		{"SDTHeader.OEMTableID", unsafe.Offsetof(hdr.OEMTableID), 16},
		{"SDTHeader.CreatorRevision", unsafe.Offsetof(hdr.CreatorRevision), 32},
	}

	for _, spec := range specs {
		if spec.got != spec.exp {
			t.Errorf("expected offset of %s to be %d; got %d", spec.descr, spec.exp, spec.got)
		}
	}
}
