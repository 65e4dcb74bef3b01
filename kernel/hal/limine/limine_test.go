package limine

import (
	"testing"
	"unsafe"

	"vegaos/kernel/mm"
)

var (
	testHHDM     = hhdmResponse{revision: 0, offset: 0xffff800000000000}
	testRSDP     = rsdpResponse{address: 0xffff8000000e0000}
	testPhysRSDP = rsdpResponse{address: 0xe0000}
	testFB       = framebuffer{
		address: 0xffff8000fd000000,
		width:   1024,
		height:  768,
		pitch:   4096,
		bpp:     32,
	}
	testFBPtrs      = [1]*framebuffer{&testFB}
	testFBResponse  = framebufferResponse{framebufferCount: 1, framebuffers: uintptr(unsafe.Pointer(&testFBPtrs[0]))}
	testMemEntries  = [3]MemoryMapEntry{{0, 0x9fc00, MemUsable}, {0x9fc00, 0x400, MemReserved}, {0x100000, 0x7ee0000, MemUsable}}
	testMemPtrs     = [3]*MemoryMapEntry{&testMemEntries[0], &testMemEntries[1], &testMemEntries[2]}
	testMemResponse = memmapResponse{entryCount: 3, entries: uintptr(unsafe.Pointer(&testMemPtrs[0]))}
)

func resetRequests() {
	rsdpReq.response = 0
	hhdmReq.response = 0
	fbReq.response = 0
	mmapReq.response = 0
}

func TestRequestIDs(t *testing.T) {
	for _, req := range []*request{&rsdpReq, &hhdmReq, &fbReq, &mmapReq} {
		if req.id[0] != commonMagic[0] || req.id[1] != commonMagic[1] {
			t.Fatalf("expected request ID to start with the common magic; got %x", req.id)
		}
	}

	// The boot loader expects id[4], revision and the response pointer
	// back to back.
	if exp := unsafe.Sizeof([4]uint64{}); unsafe.Offsetof(rsdpReq.revision) != exp {
		t.Fatalf("expected revision at offset %d; got %d", exp, unsafe.Offsetof(rsdpReq.revision))
	}

	if exp := unsafe.Sizeof([4]uint64{}) + unsafe.Sizeof(uint64(0)); unsafe.Offsetof(rsdpReq.response) != exp {
		t.Fatalf("expected response pointer at offset %d; got %d", exp, unsafe.Offsetof(rsdpReq.response))
	}
}

func TestCollect(t *testing.T) {
	defer resetRequests()

	t.Run("missing HHDM", func(t *testing.T) {
		resetRequests()
		if _, err := Collect(); err != errMissingHHDM {
			t.Fatalf("expected to get errMissingHHDM; got %v", err)
		}
	})

	t.Run("HHDM only", func(t *testing.T) {
		resetRequests()
		hhdmReq.response = uintptr(unsafe.Pointer(&testHHDM))

		info, err := Collect()
		if err != nil {
			t.Fatal(err)
		}

		if info.HHDMOffset != uintptr(testHHDM.offset) {
			t.Fatalf("expected HHDM offset to be 0x%x; got 0x%x", testHHDM.offset, info.HHDMOffset)
		}

		if info.RSDPAddr != 0 || info.Framebuffer.PhysAddr != 0 {
			t.Fatal("expected RSDP and framebuffer addresses to be 0")
		}

		if got := info.DirectMap(); got != (mm.DirectMap{Offset: uintptr(testHHDM.offset)}) {
			t.Fatalf("unexpected direct map %v", got)
		}
	})

	t.Run("all responses", func(t *testing.T) {
		resetRequests()
		hhdmReq.response = uintptr(unsafe.Pointer(&testHHDM))
		rsdpReq.response = uintptr(unsafe.Pointer(&testRSDP))
		fbReq.response = uintptr(unsafe.Pointer(&testFBResponse))

		info, err := Collect()
		if err != nil {
			t.Fatal(err)
		}

		if exp := mm.PhysAddr(0xe0000); info.RSDPAddr != exp {
			t.Fatalf("expected RSDP address to be normalized to 0x%x; got 0x%x", exp, info.RSDPAddr)
		}

		exp := FramebufferInfo{PhysAddr: 0xfd000000, Width: 1024, Height: 768, Pitch: 4096, Bpp: 32}
		if info.Framebuffer != exp {
			t.Fatalf("expected framebuffer info to be %+v; got %+v", exp, info.Framebuffer)
		}
	})

	t.Run("physical RSDP address", func(t *testing.T) {
		resetRequests()
		hhdmReq.response = uintptr(unsafe.Pointer(&testHHDM))
		rsdpReq.response = uintptr(unsafe.Pointer(&testPhysRSDP))

		info, err := Collect()
		if err != nil {
			t.Fatal(err)
		}

		if exp := mm.PhysAddr(0xe0000); info.RSDPAddr != exp {
			t.Fatalf("expected RSDP address to be 0x%x; got 0x%x", exp, info.RSDPAddr)
		}
	})
}

func TestVisitMemRegions(t *testing.T) {
	defer resetRequests()

	t.Run("no memory map", func(t *testing.T) {
		resetRequests()
		VisitMemRegions(func(_ *MemoryMapEntry) bool {
			t.Fatal("visitor should not be invoked")
			return true
		})
	})

	t.Run("visit all", func(t *testing.T) {
		resetRequests()
		mmapReq.response = uintptr(unsafe.Pointer(&testMemResponse))

		var visitCount int
		VisitMemRegions(func(entry *MemoryMapEntry) bool {
			if *entry != testMemEntries[visitCount] {
				t.Errorf("[entry %d] expected %+v; got %+v", visitCount, testMemEntries[visitCount], *entry)
			}
			visitCount++
			return true
		})

		if visitCount != len(testMemEntries) {
			t.Fatalf("expected visitor to be invoked %d times; got %d", len(testMemEntries), visitCount)
		}
	})

	t.Run("abort scan", func(t *testing.T) {
		resetRequests()
		mmapReq.response = uintptr(unsafe.Pointer(&testMemResponse))

		var visitCount int
		VisitMemRegions(func(_ *MemoryMapEntry) bool {
			visitCount++
			return false
		})

		if visitCount != 1 {
			t.Fatalf("expected visitor to be invoked once; got %d", visitCount)
		}
	})
}

func TestMemoryEntryTypeString(t *testing.T) {
	specs := []struct {
		input MemoryEntryType
		exp   string
	}{
		{MemUsable, "usable"},
		{MemReserved, "reserved"},
		{MemACPIReclaimable, "ACPI (reclaimable)"},
		{MemACPINVS, "ACPI NVS"},
		{MemBad, "bad"},
		{MemBootloaderReclaimable, "bootloader (reclaimable)"},
		{MemKernelAndModules, "kernel"},
		{MemFramebuffer, "framebuffer"},
		{MemoryEntryType(123), "unknown"},
	}

	for specIndex, spec := range specs {
		if got := spec.input.String(); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}
