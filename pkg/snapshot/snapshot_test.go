package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/blacktop/regvet/pkg/abi"
)

// fullRegs fabricates a complete register file for arch, each register
// holding a distinct value.
func fullRegs(t *testing.T, arch abi.Architecture) map[string]uint64 {
	t.Helper()
	d, err := abi.Get(arch)
	if err != nil {
		t.Fatal(err)
	}
	regs := make(map[string]uint64, len(d.Registers))
	for i, reg := range d.Registers {
		regs[reg] = uint64(i + 1)
	}
	regs[d.SP] = 0x7ffee0 // 16-byte aligned
	return regs
}

func TestCapture(t *testing.T) {
	type args struct {
		arch   abi.Architecture
		mutate func(map[string]uint64)
	}
	tests := []struct {
		name    string
		args    args
		wantErr error
	}{
		{
			name: "complete x86-64",
			args: args{arch: abi.X8664SysV, mutate: func(m map[string]uint64) {}},
		},
		{
			name: "complete riscv",
			args: args{arch: abi.RV64G, mutate: func(m map[string]uint64) {}},
		},
		{
			name:    "missing register",
			args:    args{arch: abi.X8664SysV, mutate: func(m map[string]uint64) { delete(m, "R12") }},
			wantErr: ErrIncompleteSnapshot,
		},
		{
			name:    "unexpected register",
			args:    args{arch: abi.X8664SysV, mutate: func(m map[string]uint64) { m["XMM0"] = 7 }},
			wantErr: ErrUnexpectedRegister,
		},
		{
			name: "wrong architecture names",
			args: args{arch: abi.AArch64AAPCS, mutate: func(m map[string]uint64) {
				delete(m, "X19")
				m["RBX"] = 1
			}},
			wantErr: ErrIncompleteSnapshot,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs := fullRegs(t, tt.args.arch)
			tt.args.mutate(regs)
			got, err := Capture(tt.args.arch, regs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Capture() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}
			if got.Arch != tt.args.arch {
				t.Errorf("Capture() arch = %v, want %v", got.Arch, tt.args.arch)
			}
			if !reflect.DeepEqual(got.Regs, regs) {
				t.Errorf("Capture() regs = %v, want %v", got.Regs, regs)
			}
		})
	}
}

func TestCaptureUnknownArchitecture(t *testing.T) {
	if _, err := Capture(abi.Architecture("M68K"), map[string]uint64{}); !errors.Is(err, abi.ErrUnknownArchitecture) {
		t.Errorf("Capture() error = %v, want ErrUnknownArchitecture", err)
	}
}

func TestCaptureExtractsSP(t *testing.T) {
	regs := fullRegs(t, abi.X8664SysV)
	regs["RSP"] = 0x7ffe10
	snap, err := Capture(abi.X8664SysV, regs)
	if err != nil {
		t.Fatal(err)
	}
	if snap.SP != 0x7ffe10 {
		t.Errorf("Capture() SP = %#x, want 0x7ffe10", snap.SP)
	}
}

func TestParseState(t *testing.T) {
	stateYAML := `
registers:
  RBX: 0x10
  R12: 4660
  RSP: "0x7ffee0"
`
	path := filepath.Join(t.TempDir(), "state.yml")
	if err := os.WriteFile(path, []byte(stateYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := ParseState(path)
	if err != nil {
		t.Fatalf("ParseState() error = %v", err)
	}
	got, err := state.Values()
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	want := map[string]uint64{
		"RBX": 0x10,
		"R12": 4660,
		"RSP": 0x7ffee0,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
}

func TestParseStateMissing(t *testing.T) {
	if _, err := ParseState(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("ParseState() expected error for missing file")
	}
}

func TestStateValuesBad(t *testing.T) {
	state := &State{Registers: map[string]any{"RBX": "not-a-number"}}
	if _, err := state.Values(); err == nil {
		t.Error("Values() expected error for junk value")
	}
}
