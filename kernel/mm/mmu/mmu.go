// Package mmu programs the EL1 memory attribute and translation control
// registers and captures the translation roots installed by the boot loader.
package mmu

import (
	"vegaos/kernel/cpu"
	"vegaos/kernel/kfmt"
	"vegaos/kernel/mm"
	"vegaos/kernel/mm/vmm"
)

// ttbrAddrMask extracts the table base address from a TTBRn_EL1 value,
// dropping the ASID and CnP bits.
const ttbrAddrMask = uint64(0x0000fffffffff000)

var (
	// The following functions are used by tests to mock the system
	// register accessors.
	readMAIRFn           = cpu.ReadMAIR
	writeMAIRFn          = cpu.WriteMAIR
	writeTCRFn           = cpu.WriteTCR
	readIDMMFR0Fn        = cpu.ReadIDMMFR0
	readTTBR0Fn          = cpu.ReadTTBR0
	readTTBR1Fn          = cpu.ReadTTBR1
	instructionBarrierFn = cpu.InstructionBarrier
)

// Init writes the kernel's MAIR_EL1 and TCR_EL1 values and returns the
// translation roots found in TTBR0_EL1 and TTBR1_EL1. It must run once on
// the boot CPU before any translation is attempted.
func Init() vmm.Pagemap {
	mair := kernelMAIR(readMAIRFn()).Encode()
	tcr := kernelTCR(readIDMMFR0Fn()).Encode()

	writeMAIRFn(mair)
	writeTCRFn(tcr)
	instructionBarrierFn()

	kfmt.Fprintf(kfmt.ModuleWriter("mmu"), "wrote MAIR (0x%16x) and TCR (0x%16x) for EL1\n", mair, tcr)

	return vmm.Pagemap{
		Roots: [2]mm.PhysAddr{
			mm.PhysAddr(readTTBR0Fn() & ttbrAddrMask),
			mm.PhysAddr(readTTBR1Fn() & ttbrAddrMask),
		},
	}
}
