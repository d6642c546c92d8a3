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
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/blacktop/regvet/pkg/abi"
)

func init() {
	rootCmd.AddCommand(abiCmd)
	abiCmd.AddCommand(abiListCmd)
	abiCmd.AddCommand(abiInfoCmd)

	abiInfoCmd.Flags().BoolP("json", "j", false, "output as JSON")
}

// abiCmd represents the abi command
var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Inspect the compiled-in ABI descriptors",
}

var abiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported architectures",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arch := range abi.Architectures() {
			fmt.Println(arch)
		}
		return nil
	},
}

var abiInfoCmd = &cobra.Command{
	Use:   "info <architecture>",
	Short: "Show one architecture's calling-convention contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		arch, err := abi.ParseArchitecture(args[0])
		if err != nil {
			return errors.Wrapf(err, "bad architecture %q", args[0])
		}
		d, err := abi.Get(arch)
		if err != nil {
			return err
		}

		if asJSON {
			out, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("%s (%d-bit)\n", d.Arch, d.Width)
		fmt.Printf("  args:         %s\n", strings.Join(d.Args, ", "))
		fmt.Printf("  returns:      %s\n", strings.Join(d.Returns, ", "))
		fmt.Printf("  callee-saved: %s\n", strings.Join(d.CalleeSaved, ", "))
		fmt.Printf("  caller-saved: %s\n", strings.Join(d.CallerSaved, ", "))
		fmt.Printf("  sp: %s  fp: %s", d.SP, d.FP)
		if d.LR != "" {
			fmt.Printf("  lr: %s", d.LR)
		}
		fmt.Println()
		fmt.Printf("  stack alignment: %d bytes\n", d.StackAlignment)
		if d.RedZone > 0 {
			fmt.Printf("  red zone: %d bytes\n", d.RedZone)
		}
		return nil
	},
}
