/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/blacktop/regvet/pkg/abi"
	"github.com/blacktop/regvet/pkg/snapshot"
	"github.com/blacktop/regvet/pkg/verify"
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringP("arch", "a", "", "architecture ABI (x86-64-SysV, x86-64-MS64, AArch64-AAPCS64, RV64G)")
	verifyCmd.Flags().StringP("before", "b", "", "register state file captured before the call")
	verifyCmd.Flags().StringP("after", "f", "", "register state file captured after the call")
	verifyCmd.Flags().Int("entry", 0, "check the first N argument registers (function-entry mode)")
	verifyCmd.Flags().Bool("exit", false, "check the return registers (function-exit mode)")
	verifyCmd.Flags().BoolP("json", "j", false, "output as JSON")
	verifyCmd.MarkFlagRequired("arch")
	verifyCmd.MarkFlagRequired("before")
	verifyCmd.MarkFlagRequired("after")
}

func loadSnapshot(arch abi.Architecture, path string) (*snapshot.Snapshot, error) {
	state, err := snapshot.ParseState(path)
	if err != nil {
		return nil, err
	}
	regs, err := state.Values()
	if err != nil {
		return nil, errors.Wrapf(err, "bad state file %s", path)
	}
	return snapshot.Capture(arch, regs)
}

func renderViolation(v verify.Violation) string {
	switch v.Kind {
	case verify.StackMisaligned:
		return fmt.Sprintf("stack misaligned: SP %% alignment = %d", v.Observed)
	case verify.RegisterNotPreserved:
		return fmt.Sprintf("callee-saved %s not preserved (now %#x)", v.Register, v.Observed)
	case verify.ArgumentRegisterUninitialized:
		return fmt.Sprintf("argument register %s not populated at entry", v.Register)
	case verify.ReturnRegisterUnset:
		return fmt.Sprintf("return register %s unset at exit", v.Register)
	}
	return string(v.Kind)
}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:           "verify",
	Short:         "Check a before/after register pair against an architecture's ABI",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}
		color.NoColor = !Color

		archStr, _ := cmd.Flags().GetString("arch")
		beforePath, _ := cmd.Flags().GetString("before")
		afterPath, _ := cmd.Flags().GetString("after")
		argCount, _ := cmd.Flags().GetInt("entry")
		atExit, _ := cmd.Flags().GetBool("exit")
		asJSON, _ := cmd.Flags().GetBool("json")

		arch, err := abi.ParseArchitecture(archStr)
		if err != nil {
			return errors.Wrapf(err, "bad --arch %q", archStr)
		}
		d, err := abi.Get(arch)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"arch":   arch,
			"before": beforePath,
			"after":  afterPath,
		}).Debug("capturing snapshots")

		before, err := loadSnapshot(arch, beforePath)
		if err != nil {
			return err
		}
		after, err := loadSnapshot(arch, afterPath)
		if err != nil {
			return err
		}

		verdict, err := verify.Check(before, after, d, verify.Options{
			AtEntry:  argCount > 0,
			ArgCount: argCount,
			AtExit:   atExit,
		})
		if err != nil {
			return err
		}

		if asJSON {
			out, err := json.MarshalIndent(verdict, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else if verdict.Pass {
			fmt.Printf("%s %s call boundary obeys the ABI contract\n", color.GreenString("PASS"), arch)
		} else {
			fmt.Printf("%s %s call boundary violates the ABI contract:\n", color.RedString("FAIL"), arch)
			for _, v := range verdict.Violations {
				fmt.Printf("  %s %s\n", color.RedString("✗"), renderViolation(v))
			}
		}

		if !verdict.Pass {
			// CI gate: a failing verdict is a failing exit code
			os.Exit(1)
		}

		return nil
	},
}
