// Package snapshot captures a register file at a call boundary. The package
// never reads hardware itself; a debugger, simulator, or test harness hands
// it raw name/value pairs and it enforces that they cover the architecture's
// register set exactly.
package snapshot

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/blacktop/regvet/pkg/abi"
)

var (
	// ErrIncompleteSnapshot is returned when the supplied register values
	// are missing one or more of the architecture's registers.
	ErrIncompleteSnapshot = errors.New("incomplete snapshot")
	// ErrUnexpectedRegister is returned when the supplied register values
	// contain a name the architecture does not define.
	ErrUnexpectedRegister = errors.New("unexpected register")
)

// Snapshot is one architecture's register file at a single point in time.
// It is owned by the caller that captured it and never mutated by this
// package or by the checker.
type Snapshot struct {
	Arch abi.Architecture  `json:"arch"`
	Regs map[string]uint64 `json:"regs"`
	// SP is the stack-pointer value, pulled out at capture time so the
	// checker does not have to know each architecture's SP name.
	SP uint64 `json:"sp"`
}

// Capture builds a Snapshot from raw register values keyed by the
// architecture's register names.
//
// It is deliberately strict: a missing register fails with
// ErrIncompleteSnapshot and an unknown name fails with
// ErrUnexpectedRegister. Values are never padded with defaults — a
// fabricated zero could mask a real preservation bug.
func Capture(arch abi.Architecture, raw map[string]uint64) (*Snapshot, error) {
	d, err := abi.Get(arch)
	if err != nil {
		return nil, err
	}

	var missing, extra []string
	for _, reg := range d.Registers {
		if _, ok := raw[reg]; !ok {
			missing = append(missing, reg)
		}
	}
	for name := range raw {
		if !d.Defines(name) {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrIncompleteSnapshot, "%s: missing %s", arch, strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, errors.Wrapf(ErrUnexpectedRegister, "%s: got %s", arch, strings.Join(extra, ", "))
	}

	regs := make(map[string]uint64, len(raw))
	for name, val := range raw {
		if d.Width == 32 {
			val &= 0xffffffff
		}
		regs[name] = val
	}

	return &Snapshot{
		Arch: arch,
		Regs: regs,
		SP:   regs[d.SP],
	}, nil
}

// Get returns the captured value for reg. The second return is false when
// the architecture does not define reg (impossible for a Snapshot built by
// Capture, but callers may receive snapshots over the wire).
func (s *Snapshot) Get(reg string) (uint64, bool) {
	v, ok := s.Regs[reg]
	return v, ok
}
