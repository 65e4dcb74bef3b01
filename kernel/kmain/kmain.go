// Package kmain contains the kernel entrypoint which drives early boot.
package kmain

import (
	"vegaos/device/acpi"
	"vegaos/kernel"
	"vegaos/kernel/hal/limine"
	"vegaos/kernel/kfmt"
	"vegaos/kernel/mm/mmu"
	"vegaos/kernel/mm/pmm"
	"vegaos/kernel/mm/vmm"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// The following functions are used by tests to mock the boot stages.
	collectBootInfoFn = limine.Collect
	mmuInitFn         = mmu.Init
	pmmInitFn         = pmm.Init
	acpiInitFn        = acpi.Init
	panicFn           = kfmt.Panic
)

// Context holds the state established during early boot. It is created once
// by Kmain and handed to the subsystems that are brought up afterwards.
type Context struct {
	// BootInfo holds the responses provided by the boot loader.
	BootInfo limine.BootInfo

	// AddressSpace owns the kernel translation tables.
	AddressSpace *vmm.AddressSpace

	// ACPI holds the validated firmware tables.
	ACPI *acpi.Tables
}

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. It is invoked once the boot loader has handed control
// to the kernel with the MMU enabled and the higher half direct map in place.
//
// Kmain is not expected to return. Any boot error halts the CPU.
//
//go:noinline
func Kmain() {
	ctx, stage, err := bringUp()
	if err != nil {
		kfmt.Printf("[kmain] boot stage %s failed\n", stage)
		panicFn(err)
		return
	}

	pm := ctx.AddressSpace.Pagemap()
	kfmt.Printf("[kmain] TTBR0 table at 0x%16x, TTBR1 table at 0x%16x\n", uintptr(pm.Roots[vmm.LowHalf]), uintptr(pm.Roots[vmm.HighHalf]))
	kfmt.Printf("[kmain] early boot complete; %d ACPI tables available\n", ctx.ACPI.EntryCount())

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	panicFn(errKmainReturned)
}

// Boot stage names reported when bring-up fails.
const (
	stageBootInfo = "boot info"
	stagePMM      = "frame allocator"
	stageACPI     = "ACPI"
)

// bringUp runs the boot stages in order: boot loader hand-off, MMU
// configuration, frame allocator and ACPI discovery. On failure it returns
// the name of the stage that failed.
func bringUp() (*Context, string, *kernel.Error) {
	info, err := collectBootInfoFn()
	if err != nil {
		return nil, stageBootInfo, err
	}

	dm := info.DirectMap()
	pm := mmuInitFn()

	if err = pmmInitFn(dm); err != nil {
		return nil, stagePMM, err
	}

	tables, err := acpiInitFn(dm, info)
	if err != nil {
		return nil, stageACPI, err
	}

	return &Context{
		BootInfo:     info,
		AddressSpace: vmm.NewAddressSpace(dm, pm),
		ACPI:         tables,
	}, "", nil
}
