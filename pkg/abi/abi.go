// Package abi holds the static calling-convention contracts for each
// supported architecture: which registers a callee must preserve, how
// arguments and return values travel, and what the stack pointer must look
// like at a call boundary.
package abi

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownArchitecture is returned when an architecture has no
	// registered descriptor.
	ErrUnknownArchitecture = errors.New("unknown architecture")
	// ErrMalformedDescriptor is returned when a descriptor fails its
	// internal consistency checks.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
)

// Architecture identifies one ABI variant. The set is closed; descriptors
// are compiled in, not loaded from config.
type Architecture string

const (
	X8664SysV    Architecture = "x86-64-SysV"
	X8664MS64    Architecture = "x86-64-MS64"
	AArch64AAPCS Architecture = "AArch64-AAPCS64"
	RV64G        Architecture = "RV64G"
)

// Architectures returns every supported architecture in registration order.
func Architectures() []Architecture {
	return []Architecture{X8664SysV, X8664MS64, AArch64AAPCS, RV64G}
}

// ParseArchitecture maps a user supplied string onto an Architecture.
// Matching is case-insensitive.
func ParseArchitecture(s string) (Architecture, error) {
	for _, arch := range Architectures() {
		if strings.EqualFold(s, string(arch)) {
			return arch, nil
		}
	}
	return "", ErrUnknownArchitecture
}

// Role is a bitset of the calling-convention roles a register plays.
// Roles combine (x29 is both frame-pointer and callee-saved) but are fixed
// per architecture.
type Role uint16

const (
	Argument Role = 1 << iota
	Return
	CalleeSaved
	CallerSaved
	StackPointer
	FramePointer
	LinkRegister
	General
)

// Has reports whether r includes role.
func (r Role) Has(role Role) bool {
	return r&role != 0
}

func (r Role) String() string {
	var names []string
	for _, rn := range []struct {
		role Role
		name string
	}{
		{Argument, "argument"},
		{Return, "return"},
		{CalleeSaved, "callee-saved"},
		{CallerSaved, "caller-saved"},
		{StackPointer, "stack-pointer"},
		{FramePointer, "frame-pointer"},
		{LinkRegister, "link-register"},
		{General, "general"},
	} {
		if r.Has(rn.role) {
			names = append(names, rn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// RegisterSlot is one named register and the roles its architecture
// assigns to it.
type RegisterSlot struct {
	Name  string `json:"name"`
	Roles Role   `json:"-"`
}
