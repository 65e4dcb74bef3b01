//go:build arm64
// +build arm64

package cpu

// Halt parks the CPU in a wait-for-interrupt loop. It never returns.
func Halt()

// InstructionBarrier issues an ISB so that preceding system register writes
// are visible to the instructions that follow.
func InstructionBarrier()

// ReadMAIR returns the value of MAIR_EL1.
func ReadMAIR() uint64

// WriteMAIR stores v into MAIR_EL1.
func WriteMAIR(v uint64)

// ReadTCR returns the value of TCR_EL1.
func ReadTCR() uint64

// WriteTCR stores v into TCR_EL1.
func WriteTCR(v uint64)

// ReadTTBR0 returns the value of TTBR0_EL1 (low half translation root).
func ReadTTBR0() uint64

// ReadTTBR1 returns the value of TTBR1_EL1 (high half translation root).
func ReadTTBR1() uint64

// ReadIDMMFR0 returns the value of ID_AA64MMFR0_EL1.
func ReadIDMMFR0() uint64

// FlushTLBEntry invalidates any TLB entry for the page containing virtAddr
// on all CPUs in the inner shareable domain.
func FlushTLBEntry(virtAddr uintptr)
