package snapshot

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// State is the on-disk form of a register dump, as produced by a debugger
// script or written by hand for a test case:
//
//	registers:
//	  RBX: 0x10
//	  R12: 4660
//	  RSP: "0x7ffee0"
//
// Values may be YAML integers or hex strings.
type State struct {
	Registers map[string]any `yaml:"registers"`
}

// ParseState reads a YAML register dump from disk.
func ParseState(name string) (*State, error) {
	var state State

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("error reading state file: %v", err)
	}

	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("error unmarshalling state file: %v", err)
	}

	return &state, nil
}

// Values coerces the parsed register map to uint64 values suitable for
// Capture. Hex strings ("0x7ffee0") and decimal strings both work.
func (state *State) Values() (map[string]uint64, error) {
	regs := make(map[string]uint64, len(state.Registers))
	for name, val := range state.Registers {
		v, err := cast.ToUint64E(val)
		if err != nil {
			// cast does not understand 0x prefixes on strings
			s, serr := cast.ToStringE(val)
			if serr != nil {
				return nil, fmt.Errorf("register %s: bad value %v: %v", name, val, err)
			}
			if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
				if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
					return nil, fmt.Errorf("register %s: bad value %q", name, s)
				}
			}
		}
		regs[name] = v
	}
	return regs, nil
}

func (state *State) Dump() {
	data, err := yaml.Marshal(state)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s\n", data)
}
