package abi

import (
	"github.com/pkg/errors"
)

// Descriptor declares the calling-convention contract for one architecture.
// Descriptors are immutable after registration; treat every field as
// read-only.
type Descriptor struct {
	Arch  Architecture `json:"arch"`
	Width int          `json:"width"` // native register width in bits (32 or 64)

	// Registers is the architecture's full general-purpose register file in
	// canonical order. Snapshots must cover exactly this set.
	Registers []string `json:"registers"`

	// Args is the ordered argument register sequence (first argument first).
	Args []string `json:"args"`
	// Returns holds the return value register(s).
	Returns []string `json:"returns"`
	// CalleeSaved registers must hold their caller-visible values when the
	// callee returns.
	CalleeSaved []string `json:"callee_saved"`
	// CallerSaved registers carry no preservation guarantee across a call.
	CallerSaved []string `json:"caller_saved"`

	SP string `json:"sp"`
	FP string `json:"fp"`
	LR string `json:"lr,omitempty"` // empty on architectures without a link register

	// StackAlignment is the required stack-pointer alignment in bytes at a
	// call boundary.
	StackAlignment uint64 `json:"stack_alignment"`
	// RedZone is the size in bytes of the guaranteed-untouched region below
	// the stack pointer, 0 if the ABI has none.
	RedZone uint64 `json:"red_zone,omitempty"`

	slots map[string]RegisterSlot
}

// Slot returns the RegisterSlot for name, or false if the architecture does
// not define it.
func (d *Descriptor) Slot(name string) (RegisterSlot, bool) {
	s, ok := d.slots[name]
	return s, ok
}

// Defines reports whether name is part of the architecture's register file.
func (d *Descriptor) Defines(name string) bool {
	_, ok := d.slots[name]
	return ok
}

// IsCalleeSaved reports whether name carries the callee-saved guarantee.
func (d *Descriptor) IsCalleeSaved(name string) bool {
	s, ok := d.slots[name]
	return ok && s.Roles.Has(CalleeSaved)
}

// Validate checks the descriptor's internal consistency:
//   - every register that is not the stack pointer belongs to exactly one of
//     the callee-saved and caller-saved sets
//   - the argument sequence contains no duplicates
//   - the required stack alignment is a power of two
//
// It returns ErrMalformedDescriptor (wrapped with detail) on the first
// violation found.
func (d *Descriptor) Validate() error {
	if d.StackAlignment == 0 || d.StackAlignment&(d.StackAlignment-1) != 0 {
		return errors.Wrapf(ErrMalformedDescriptor, "%s: stack alignment %d is not a power of two", d.Arch, d.StackAlignment)
	}
	if d.Width != 32 && d.Width != 64 {
		return errors.Wrapf(ErrMalformedDescriptor, "%s: register width %d is not 32 or 64", d.Arch, d.Width)
	}

	defined := make(map[string]bool, len(d.Registers))
	for _, reg := range d.Registers {
		if defined[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: register %s defined twice", d.Arch, reg)
		}
		defined[reg] = true
	}
	if !defined[d.SP] {
		return errors.Wrapf(ErrMalformedDescriptor, "%s: stack pointer %s is not in the register file", d.Arch, d.SP)
	}

	// Partition check: preserved and not-preserved must never overlap, and
	// together they must cover every register except the stack pointer.
	saved := make(map[string]bool, len(d.CalleeSaved))
	for _, reg := range d.CalleeSaved {
		if !defined[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: callee-saved %s is not in the register file", d.Arch, reg)
		}
		saved[reg] = true
	}
	clobbered := make(map[string]bool, len(d.CallerSaved))
	for _, reg := range d.CallerSaved {
		if !defined[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: caller-saved %s is not in the register file", d.Arch, reg)
		}
		if saved[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: register %s is both callee-saved and caller-saved", d.Arch, reg)
		}
		clobbered[reg] = true
	}
	for _, reg := range d.Registers {
		if reg == d.SP {
			continue
		}
		if !saved[reg] && !clobbered[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: register %s is neither callee-saved nor caller-saved", d.Arch, reg)
		}
	}

	seen := make(map[string]bool, len(d.Args))
	for _, reg := range d.Args {
		if !defined[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: argument register %s is not in the register file", d.Arch, reg)
		}
		if seen[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: duplicate argument register %s", d.Arch, reg)
		}
		seen[reg] = true
	}
	for _, reg := range d.Returns {
		if !defined[reg] {
			return errors.Wrapf(ErrMalformedDescriptor, "%s: return register %s is not in the register file", d.Arch, reg)
		}
	}

	return nil
}

// buildSlots derives the per-register role bitsets from the descriptor's
// membership lists. Called once at registration, after Validate.
func (d *Descriptor) buildSlots() {
	d.slots = make(map[string]RegisterSlot, len(d.Registers))
	role := func(reg string) Role {
		var r Role
		for _, a := range d.Args {
			if a == reg {
				r |= Argument
			}
		}
		for _, ret := range d.Returns {
			if ret == reg {
				r |= Return
			}
		}
		for _, s := range d.CalleeSaved {
			if s == reg {
				r |= CalleeSaved
			}
		}
		for _, c := range d.CallerSaved {
			if c == reg {
				r |= CallerSaved
			}
		}
		switch reg {
		case d.SP:
			r |= StackPointer
		case d.FP:
			r |= FramePointer
		}
		if reg == d.LR && d.LR != "" {
			r |= LinkRegister
		}
		if !r.Has(StackPointer) {
			r |= General
		}
		return r
	}
	for _, reg := range d.Registers {
		d.slots[reg] = RegisterSlot{Name: reg, Roles: role(reg)}
	}
}
