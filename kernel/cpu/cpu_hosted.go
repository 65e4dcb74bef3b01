//go:build !arm64
// +build !arm64

package cpu

const errNoSysRegs = "cpu: EL1 system registers are only accessible on arm64"

// Halt stops the caller. Hosted builds have no WFI so the goroutine parks
// forever instead.
func Halt() {
	select {}
}

// InstructionBarrier is a no-op outside arm64.
func InstructionBarrier() {}

// ReadMAIR panics outside arm64.
func ReadMAIR() uint64 { panic(errNoSysRegs) }

// WriteMAIR panics outside arm64.
func WriteMAIR(uint64) { panic(errNoSysRegs) }

// ReadTCR panics outside arm64.
func ReadTCR() uint64 { panic(errNoSysRegs) }

// WriteTCR panics outside arm64.
func WriteTCR(uint64) { panic(errNoSysRegs) }

// ReadTTBR0 panics outside arm64.
func ReadTTBR0() uint64 { panic(errNoSysRegs) }

// ReadTTBR1 panics outside arm64.
func ReadTTBR1() uint64 { panic(errNoSysRegs) }

// ReadIDMMFR0 panics outside arm64.
func ReadIDMMFR0() uint64 { panic(errNoSysRegs) }

// FlushTLBEntry panics outside arm64.
func FlushTLBEntry(uintptr) { panic(errNoSysRegs) }
