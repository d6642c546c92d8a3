package verify

import (
	"errors"
	"reflect"
	"testing"

	"github.com/blacktop/regvet/pkg/abi"
	"github.com/blacktop/regvet/pkg/snapshot"
)

func capture(t *testing.T, arch abi.Architecture, mutate func(map[string]uint64)) *snapshot.Snapshot {
	t.Helper()
	d, err := abi.Get(arch)
	if err != nil {
		t.Fatal(err)
	}
	regs := make(map[string]uint64, len(d.Registers))
	for i, reg := range d.Registers {
		regs[reg] = uint64(i + 1)
	}
	regs[d.SP] = 0x7ffee0
	if mutate != nil {
		mutate(regs)
	}
	snap, err := snapshot.Capture(arch, regs)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func descriptor(t *testing.T, arch abi.Architecture) *abi.Descriptor {
	t.Helper()
	d, err := abi.Get(arch)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCheckCleanBoundary(t *testing.T) {
	// identical snapshots with an aligned stack pass on every architecture
	for _, arch := range abi.Architectures() {
		t.Run(string(arch), func(t *testing.T) {
			before := capture(t, arch, nil)
			after := capture(t, arch, nil)
			got, err := Check(before, after, descriptor(t, arch), Options{})
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !got.Pass || len(got.Violations) != 0 {
				t.Errorf("Check() = %+v, want pass with no violations", got)
			}
		})
	}
}

// The worked x86-64 example: R12 corrupted across the call, stack still
// aligned, everything else preserved.
func TestCheckCorruptedCalleeSaved(t *testing.T) {
	before := capture(t, abi.X8664SysV, func(m map[string]uint64) {
		m["RBX"] = 0x10
		m["R12"] = 0x20
	})
	after := capture(t, abi.X8664SysV, func(m map[string]uint64) {
		m["RBX"] = 0x10
		m["R12"] = 0x99
	})

	got, err := Check(before, after, descriptor(t, abi.X8664SysV), Options{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got.Pass {
		t.Error("Check() passed, want fail")
	}
	want := []Violation{{Kind: RegisterNotPreserved, Register: "R12", Observed: 0x99}}
	if !reflect.DeepEqual(got.Violations, want) {
		t.Errorf("Check() violations = %+v, want %+v", got.Violations, want)
	}
}

func TestCheckCallerSavedMayChange(t *testing.T) {
	type args struct {
		arch abi.Architecture
		reg  string
	}
	tests := []struct {
		name string
		args args
	}{
		{name: "sysv scratch", args: args{arch: abi.X8664SysV, reg: "R11"}},
		{name: "sysv return", args: args{arch: abi.X8664SysV, reg: "RAX"}},
		{name: "aapcs64 temporary", args: args{arch: abi.AArch64AAPCS, reg: "X9"}},
		{name: "aapcs64 link register", args: args{arch: abi.AArch64AAPCS, reg: "X30"}},
		{name: "riscv temporary", args: args{arch: abi.RV64G, reg: "t3"}},
		{name: "ms64 scratch", args: args{arch: abi.X8664MS64, reg: "R10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := capture(t, tt.args.arch, nil)
			after := capture(t, tt.args.arch, func(m map[string]uint64) {
				m[tt.args.reg] = 0xdeadbeef
			})
			got, err := Check(before, after, descriptor(t, tt.args.arch), Options{})
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !got.Pass {
				t.Errorf("Check() violations = %+v, caller-saved %s must be free to change", got.Violations, tt.args.reg)
			}
		})
	}
}

func TestCheckStackAlignment(t *testing.T) {
	type args struct {
		sp uint64
	}
	tests := []struct {
		name          string
		args          args
		wantPass      bool
		wantRemainder uint64
	}{
		{
			name:     "aligned",
			args:     args{sp: 0x7ffee0},
			wantPass: true,
		},
		{
			name:          "off by eight",
			args:          args{sp: 0x7ffee8},
			wantPass:      false,
			wantRemainder: 8,
		},
		{
			name:          "off by one",
			args:          args{sp: 0x7ffee1},
			wantPass:      false,
			wantRemainder: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := capture(t, abi.X8664SysV, nil)
			after := capture(t, abi.X8664SysV, func(m map[string]uint64) {
				m["RSP"] = tt.args.sp
			})
			got, err := Check(before, after, descriptor(t, abi.X8664SysV), Options{})
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if got.Pass != tt.wantPass {
				t.Errorf("Check() pass = %v, want %v (violations %+v)", got.Pass, tt.wantPass, got.Violations)
			}
			if !tt.wantPass {
				want := []Violation{{Kind: StackMisaligned, Observed: tt.wantRemainder}}
				if !reflect.DeepEqual(got.Violations, want) {
					t.Errorf("Check() violations = %+v, want %+v", got.Violations, want)
				}
			}
		})
	}
}

func TestCheckViolationOrder(t *testing.T) {
	// misaligned stack and two corrupted callee-saved registers: alignment
	// first, then slots in descriptor order
	before := capture(t, abi.X8664SysV, nil)
	after := capture(t, abi.X8664SysV, func(m map[string]uint64) {
		m["RSP"] = 0x7ffee4
		m["R13"] = 0x1111
		m["RBX"] = 0x2222
	})
	got, err := Check(before, after, descriptor(t, abi.X8664SysV), Options{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	want := []Violation{
		{Kind: StackMisaligned, Observed: 4},
		{Kind: RegisterNotPreserved, Register: "RBX", Observed: 0x2222},
		{Kind: RegisterNotPreserved, Register: "R13", Observed: 0x1111},
	}
	if !reflect.DeepEqual(got.Violations, want) {
		t.Errorf("Check() violations = %+v, want %+v", got.Violations, want)
	}
}

func TestCheckIdempotent(t *testing.T) {
	before := capture(t, abi.AArch64AAPCS, nil)
	after := capture(t, abi.AArch64AAPCS, func(m map[string]uint64) {
		m["X19"] = 0xbad
	})
	d := descriptor(t, abi.AArch64AAPCS)

	first, err := Check(before, after, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Check(before, after, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Check() not idempotent: %+v vs %+v", first, second)
	}
}

func TestCheckArchitectureMismatch(t *testing.T) {
	x86 := capture(t, abi.X8664SysV, nil)
	arm := capture(t, abi.AArch64AAPCS, nil)

	if _, err := Check(x86, arm, descriptor(t, abi.X8664SysV), Options{}); !errors.Is(err, ErrArchitectureMismatch) {
		t.Errorf("Check() error = %v, want ErrArchitectureMismatch", err)
	}
	if _, err := Check(x86, x86, descriptor(t, abi.RV64G), Options{}); !errors.Is(err, ErrArchitectureMismatch) {
		t.Errorf("Check() error = %v, want ErrArchitectureMismatch", err)
	}
}

func TestCheckMalformedDescriptor(t *testing.T) {
	before := capture(t, abi.X8664SysV, nil)
	after := capture(t, abi.X8664SysV, nil)

	bad := *descriptor(t, abi.X8664SysV)
	bad.StackAlignment = 12

	if _, err := Check(before, after, &bad, Options{}); !errors.Is(err, abi.ErrMalformedDescriptor) {
		t.Errorf("Check() error = %v, want ErrMalformedDescriptor", err)
	}
}

func TestCheckNilInputs(t *testing.T) {
	snap := capture(t, abi.X8664SysV, nil)
	d := descriptor(t, abi.X8664SysV)
	if _, err := Check(nil, snap, d, Options{}); err == nil {
		t.Error("Check() expected error for nil before")
	}
	if _, err := Check(snap, nil, d, Options{}); err == nil {
		t.Error("Check() expected error for nil after")
	}
	if _, err := Check(snap, snap, nil, Options{}); err == nil {
		t.Error("Check() expected error for nil descriptor")
	}
}

func TestCheckEntryAndExitPhases(t *testing.T) {
	// hand-built sparse snapshots exercise the structural presence checks
	d := descriptor(t, abi.X8664SysV)

	sparse := func(regs map[string]uint64) *snapshot.Snapshot {
		return &snapshot.Snapshot{Arch: abi.X8664SysV, Regs: regs, SP: 0x7ffee0}
	}
	full := func() map[string]uint64 {
		m := make(map[string]uint64, len(d.Registers))
		for i, reg := range d.Registers {
			m[reg] = uint64(i + 1)
		}
		m["RSP"] = 0x7ffee0
		return m
	}

	t.Run("missing second argument at entry", func(t *testing.T) {
		regs := full()
		delete(regs, "RSI") // arg1
		got, err := Check(sparse(regs), sparse(full()), d, Options{AtEntry: true, ArgCount: 2})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		want := []Violation{{Kind: ArgumentRegisterUninitialized, Register: "RSI"}}
		if !reflect.DeepEqual(got.Violations, want) {
			t.Errorf("Check() violations = %+v, want %+v", got.Violations, want)
		}
	})

	t.Run("arg count past declared parameters ignored", func(t *testing.T) {
		regs := full()
		delete(regs, "R9") // arg5
		got, err := Check(sparse(regs), sparse(full()), d, Options{AtEntry: true, ArgCount: 3})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !got.Pass {
			t.Errorf("Check() violations = %+v, arg5 is past the declared count", got.Violations)
		}
	})

	t.Run("missing return register at exit", func(t *testing.T) {
		regs := full()
		delete(regs, "RAX")
		got, err := Check(sparse(full()), sparse(regs), d, Options{AtExit: true})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		want := []Violation{{Kind: ReturnRegisterUnset, Register: "RAX"}}
		if !reflect.DeepEqual(got.Violations, want) {
			t.Errorf("Check() violations = %+v, want %+v", got.Violations, want)
		}
	})
}

func TestCheckSparseCalleeSavedRejected(t *testing.T) {
	d := descriptor(t, abi.X8664SysV)
	full := capture(t, abi.X8664SysV, nil)
	hole := &snapshot.Snapshot{
		Arch: abi.X8664SysV,
		Regs: map[string]uint64{"RBX": 1},
		SP:   0x7ffee0,
	}
	if _, err := Check(hole, full, d, Options{}); !errors.Is(err, snapshot.ErrIncompleteSnapshot) {
		t.Errorf("Check() error = %v, want ErrIncompleteSnapshot", err)
	}
}
