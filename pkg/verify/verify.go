// Package verify implements the compliance check itself: given register
// snapshots taken on either side of a call boundary and the architecture's
// ABI descriptor, it reports every way the boundary broke the contract.
package verify

import (
	"github.com/pkg/errors"

	"github.com/blacktop/regvet/pkg/abi"
	"github.com/blacktop/regvet/pkg/snapshot"
)

// ErrArchitectureMismatch is returned when the before/after snapshots and
// the descriptor do not all belong to the same architecture. The checker
// refuses to guess which one was intended.
var ErrArchitectureMismatch = errors.New("architecture mismatch")

// Kind classifies a single contract violation.
type Kind string

const (
	RegisterNotPreserved          Kind = "RegisterNotPreserved"
	StackMisaligned               Kind = "StackMisaligned"
	ArgumentRegisterUninitialized Kind = "ArgumentRegisterUninitialized"
	ReturnRegisterUnset           Kind = "ReturnRegisterUnset"
)

// Violation is one broken rule. For register kinds, Register names the
// offending slot; for StackMisaligned, Observed carries the remainder of
// the stack pointer modulo the required alignment.
type Violation struct {
	Kind     Kind   `json:"kind"`
	Register string `json:"register,omitempty"`
	Observed uint64 `json:"observed,omitempty"`
}

// Verdict is the outcome of one check. Violations are ordered (alignment
// first, then callee-saved slots in descriptor order) so identical inputs
// always yield identical verdicts.
type Verdict struct {
	Arch       abi.Architecture `json:"arch"`
	Pass       bool             `json:"pass"`
	Violations []Violation      `json:"violations"`
	// RedZone echoes the descriptor's red-zone size for reporting sinks;
	// no violation kind is defined for it.
	RedZone uint64 `json:"red_zone,omitempty"`
}

// Options selects the optional entry/exit phase checks. The zero value runs
// only the alignment and preservation checks.
type Options struct {
	// AtEntry enables the argument-register presence check against the
	// first ArgCount argument slots.
	AtEntry  bool
	ArgCount int
	// AtExit enables the return-register presence check.
	AtExit bool
}

// Check compares a before/after snapshot pair against d's contract.
//
// ABI violations are data, not errors: code under test breaking the
// contract is the expected, reportable outcome. Check returns an error only
// for malformed input — snapshots from different architectures, a
// descriptor that fails validation, or a nil input.
func Check(before, after *snapshot.Snapshot, d *abi.Descriptor, opts Options) (*Verdict, error) {
	if before == nil || after == nil || d == nil {
		return nil, errors.New("nil snapshot or descriptor")
	}
	if before.Arch != after.Arch || before.Arch != d.Arch {
		return nil, errors.Wrapf(ErrArchitectureMismatch, "before=%s after=%s descriptor=%s",
			before.Arch, after.Arch, d.Arch)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	v := &Verdict{
		Arch:       d.Arch,
		Violations: []Violation{},
		RedZone:    d.RedZone,
	}

	// Alignment is validated pre-call, against the after state.
	if rem := after.SP % d.StackAlignment; rem != 0 {
		v.Violations = append(v.Violations, Violation{
			Kind:     StackMisaligned,
			Observed: rem,
		})
	}

	for _, reg := range d.CalleeSaved {
		b, bok := before.Get(reg)
		a, aok := after.Get(reg)
		if !bok || !aok {
			// Capture guarantees coverage; a hole here means the snapshot
			// was fabricated without it.
			return nil, errors.Wrapf(snapshot.ErrIncompleteSnapshot, "callee-saved %s absent", reg)
		}
		if b != a {
			v.Violations = append(v.Violations, Violation{
				Kind:     RegisterNotPreserved,
				Register: reg,
				Observed: a,
			})
		}
	}

	if opts.AtEntry {
		n := opts.ArgCount
		if n > len(d.Args) {
			n = len(d.Args)
		}
		for _, reg := range d.Args[:n] {
			if _, ok := before.Get(reg); !ok {
				v.Violations = append(v.Violations, Violation{
					Kind:     ArgumentRegisterUninitialized,
					Register: reg,
				})
			}
		}
	}

	if opts.AtExit {
		for _, reg := range d.Returns {
			if _, ok := after.Get(reg); !ok {
				v.Violations = append(v.Violations, Violation{
					Kind:     ReturnRegisterUnset,
					Register: reg,
				})
			}
		}
	}

	v.Pass = len(v.Violations) == 0

	return v, nil
}
