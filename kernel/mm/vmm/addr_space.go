package vmm

import (
	"vegaos/kernel"
	"vegaos/kernel/cpu"
	"vegaos/kernel/mm"
	"vegaos/kernel/sync"
)

var (
	// flushTLBEntryFn is used by tests to override calls to
	// cpu.FlushTLBEntry which faults outside EL1.
	flushTLBEntryFn = cpu.FlushTLBEntry

	// ErrInvalidMapping is returned when trying to unmap a virtual address
	// that is not mapped.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	errBlockMapping   = &kernel.Error{Module: "vmm", Message: "virtual address is covered by a block mapping"}
	errUnalignedAddr  = &kernel.Error{Module: "vmm", Message: "virtual and physical addresses must be page-aligned"}
	errNoRootForHalf  = &kernel.Error{Module: "vmm", Message: "no translation root installed for the address space half"}
	errInvalidRootPtr = &kernel.Error{Module: "vmm", Message: "translation root must be a non-zero page-aligned address"}
)

// Half selects one of the two translation roots.
type Half uint8

const (
	// LowHalf is translated through TTBR0_EL1.
	LowHalf Half = iota

	// HighHalf is translated through TTBR1_EL1.
	HighHalf
)

// HalfOf returns the half of the address space that virtAddr belongs to.
func HalfOf(virtAddr uintptr) Half {
	return Half(virtAddr >> halfSelectShift)
}

// Pagemap holds the physical addresses of the top-level translation tables
// for both halves of the virtual address space.
type Pagemap struct {
	Roots [2]mm.PhysAddr
}

// Root returns the top-level table used for translating virtAddr.
func (pm Pagemap) Root(virtAddr uintptr) mm.PhysAddr {
	return pm.Roots[HalfOf(virtAddr)]
}

// AddressSpace is the single owner of a Pagemap. Changes to the translation
// tables are serialized by a spinlock; Translate snapshots the roots under
// the lock and walks the tables without it.
type AddressSpace struct {
	lock sync.Spinlock
	dm   mm.DirectMap
	pm   Pagemap
}

// NewAddressSpace returns an AddressSpace for the tables in pm, reached
// through the direct map dm.
func NewAddressSpace(dm mm.DirectMap, pm Pagemap) *AddressSpace {
	return &AddressSpace{dm: dm, pm: pm}
}

// Pagemap returns a copy of the translation roots.
func (as *AddressSpace) Pagemap() Pagemap {
	as.lock.Acquire()
	pm := as.pm
	as.lock.Release()
	return pm
}

// Translate returns the page-aligned physical address that virtAddr maps to
// or 0 if virtAddr is not mapped. Only the roots are read under the lock; the
// walk itself is lock-free.
func (as *AddressSpace) Translate(virtAddr uintptr) mm.PhysAddr {
	return Translate(as.dm, as.Pagemap(), virtAddr)
}

// ReplaceRoot installs root as the top-level table for the given half. The
// caller is responsible for loading the matching TTBR register.
func (as *AddressSpace) ReplaceRoot(half Half, root mm.PhysAddr) *kernel.Error {
	if root == 0 || !root.PageAligned() {
		return errInvalidRootPtr
	}

	as.lock.Acquire()
	as.pm.Roots[half&1] = root
	as.lock.Release()
	return nil
}

// Map establishes a mapping between the page at virtAddr and the frame at
// physAddr. Intermediate tables are allocated through mm.AllocFrame as
// needed. An existing mapping for virtAddr is overwritten.
func (as *AddressSpace) Map(virtAddr uintptr, physAddr mm.PhysAddr, flags MapFlag) *kernel.Error {
	if virtAddr&(mm.PageSize-1) != 0 || !physAddr.PageAligned() {
		return errUnalignedAddr
	}

	as.lock.Acquire()
	defer as.lock.Release()

	root := as.pm.Root(virtAddr)
	if root == 0 {
		return errNoRootForHalf
	}

	pte, err := entryFor(as.dm, root, virtAddr, true)
	if err != nil {
		return err
	}

	*pte = leafDescriptor(physAddr, flags)
	flushTLBEntryFn(virtAddr)
	return nil
}

// Unmap removes a mapping previously installed via a call to Map. Tables
// emptied by Unmap are not reclaimed.
func (as *AddressSpace) Unmap(virtAddr uintptr) *kernel.Error {
	as.lock.Acquire()
	defer as.lock.Release()

	root := as.pm.Root(virtAddr)
	if root == 0 {
		return ErrInvalidMapping
	}

	pte, err := entryFor(as.dm, root, virtAddr, false)
	switch {
	case err != nil:
		return err
	case pte == nil || !pte.HasFlags(descValid):
		return ErrInvalidMapping
	}

	*pte = 0
	flushTLBEntryFn(virtAddr)
	return nil
}
