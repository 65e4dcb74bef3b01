package acpi

import (
	"runtime"
	"testing"
	"unsafe"
)

func TestValid(t *testing.T) {
	fx := newFixture()
	defer runtime.KeepAlive(fx)

	header := fx.header(fx.addTable("FACP", 200))
	if !Valid(header) {
		t.Fatal("expected table with a zero byte-sum to be valid")
	}

	// Flipping any single byte breaks validation
	for _, offset := range []uintptr{0, 9, 35, 36, 235} {
		ptr := (*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(header)) + offset))
		orig := *ptr
		*ptr ^= 0x10

		if Valid(header) {
			t.Errorf("expected table to be invalid after flipping byte at offset %d", offset)
		}
		*ptr = orig
	}

	if !Valid(header) {
		t.Fatal("expected table to be valid after restoring its contents")
	}
}

func TestValidTable(t *testing.T) {
	specs := []struct {
		data []byte
		exp  bool
	}{
		{[]byte{0}, true},
		{[]byte{0x80, 0x80}, true},
		{[]byte{0xff, 0x01, 0x10, 0xf0}, true},
		{[]byte{0x01}, false},
		{[]byte{0xff, 0x02}, false},
	}

	for specIndex, spec := range specs {
		if got := validTable(uintptr(unsafe.Pointer(&spec.data[0])), uint32(len(spec.data))); got != spec.exp {
			t.Errorf("[spec %d] expected validTable to return %t; got %t", specIndex, spec.exp, got)
		}
	}
}
