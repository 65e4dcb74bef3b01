// Package cpu exposes the aarch64 system register and barrier primitives used
// while bringing up the MMU. The accessors are implemented in assembly for
// arm64; builds for other architectures only exist so that the packages that
// depend on cpu can be unit-tested on a development host.
package cpu

const (
	// ID_AA64MMFR0_EL1.PARange occupies bits [3:0].
	parangeMask  = 0xf
	parangeShift = 0
)

// PhysAddrRange extracts the PARange field from an ID_AA64MMFR0_EL1 value.
// The returned encoding can be written verbatim into the IPS field of TCR_EL1.
func PhysAddrRange(mmfr0 uint64) uint8 {
	return uint8((mmfr0 >> parangeShift) & parangeMask)
}
