package abi

import "fmt"

// descriptors is the compiled-in ABI table. It models fixed, published
// hardware/OS calling conventions, so it is a static table rather than
// anything loaded at runtime. Populated and validated once in init;
// read-only afterwards, safe for concurrent readers.
var descriptors = map[Architecture]*Descriptor{
	X8664SysV: {
		Arch:  X8664SysV,
		Width: 64,
		Registers: []string{
			"RAX", "RBX", "RCX", "RDX", "RSI", "RDI", "RBP", "RSP",
			"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15",
		},
		Args:        []string{"RDI", "RSI", "RDX", "RCX", "R8", "R9"},
		Returns:     []string{"RAX", "RDX"},
		CalleeSaved: []string{"RBX", "RBP", "R12", "R13", "R14", "R15"},
		CallerSaved: []string{"RAX", "RCX", "RDX", "RSI", "RDI", "R8", "R9", "R10", "R11"},
		SP:          "RSP",
		FP:          "RBP",

		StackAlignment: 16,
		RedZone:        128,
	},
	X8664MS64: {
		Arch:  X8664MS64,
		Width: 64,
		Registers: []string{
			"RAX", "RBX", "RCX", "RDX", "RSI", "RDI", "RBP", "RSP",
			"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15",
		},
		Args:    []string{"RCX", "RDX", "R8", "R9"},
		Returns: []string{"RAX"},
		// RSI/RDI are callee-saved on Windows, unlike SysV.
		CalleeSaved: []string{"RBX", "RBP", "RDI", "RSI", "R12", "R13", "R14", "R15"},
		CallerSaved: []string{"RAX", "RCX", "RDX", "R8", "R9", "R10", "R11"},
		SP:          "RSP",
		FP:          "RBP",

		StackAlignment: 16,
	},
	AArch64AAPCS: {
		Arch:  AArch64AAPCS,
		Width: 64,
		Registers: []string{
			"X0", "X1", "X2", "X3", "X4", "X5", "X6", "X7",
			"X8", "X9", "X10", "X11", "X12", "X13", "X14", "X15",
			"X16", "X17", "X18", "X19", "X20", "X21", "X22", "X23",
			"X24", "X25", "X26", "X27", "X28", "X29", "X30", "SP",
		},
		Args:        []string{"X0", "X1", "X2", "X3", "X4", "X5", "X6", "X7"},
		Returns:     []string{"X0", "X1"},
		CalleeSaved: []string{"X19", "X20", "X21", "X22", "X23", "X24", "X25", "X26", "X27", "X28", "X29"},
		// X16/X17 are the linker's scratch (IP0/IP1), X18 is the platform
		// register, X30 is clobbered by the call itself.
		CallerSaved: []string{
			"X0", "X1", "X2", "X3", "X4", "X5", "X6", "X7",
			"X8", "X9", "X10", "X11", "X12", "X13", "X14", "X15",
			"X16", "X17", "X18", "X30",
		},
		SP: "SP",
		FP: "X29",
		LR: "X30",

		StackAlignment: 16,
	},
	RV64G: {
		Arch:  RV64G,
		Width: 64,
		Registers: []string{
			"ra", "sp", "gp", "tp",
			"t0", "t1", "t2",
			"s0", "s1",
			"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
			"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
			"t3", "t4", "t5", "t6",
		},
		Args:    []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"},
		Returns: []string{"a0", "a1"},
		// gp and tp are unallocatable in the psABI; a conforming callee
		// leaves them alone, so they sit on the preserved side.
		CalleeSaved: []string{
			"gp", "tp",
			"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
		},
		CallerSaved: []string{
			"ra",
			"t0", "t1", "t2", "t3", "t4", "t5", "t6",
			"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
		},
		SP: "sp",
		FP: "s0",
		LR: "ra",

		StackAlignment: 16,
	},
}

func init() {
	// A malformed compiled-in table is a programming defect; refusing to
	// start beats running checks against an inconsistent contract.
	for arch, d := range descriptors {
		if err := d.Validate(); err != nil {
			panic(fmt.Sprintf("abi: bad descriptor table for %s: %v", arch, err))
		}
		d.buildSlots()
	}
}

// Get returns the immutable descriptor for arch, or ErrUnknownArchitecture
// if arch is not in the compiled-in set.
func Get(arch Architecture) (*Descriptor, error) {
	d, ok := descriptors[arch]
	if !ok {
		return nil, ErrUnknownArchitecture
	}
	return d, nil
}
