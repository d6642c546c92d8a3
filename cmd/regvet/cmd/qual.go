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
	"fmt"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blacktop/regvet/internal/config"
	"github.com/blacktop/regvet/internal/db"
	"github.com/blacktop/regvet/internal/qual"
	"github.com/blacktop/regvet/pkg/abi"
)

func init() {
	rootCmd.AddCommand(qualCmd)
	qualCmd.AddCommand(qualAddCmd)
	qualCmd.AddCommand(qualListCmd)
	qualCmd.AddCommand(qualCheckCmd)

	qualCmd.PersistentFlags().StringP("arch", "a", "", "architecture the tool is qualified for")
}

func openLedger() (*qual.Ledger, func() error, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var database db.Database
	switch conf.Database.Driver {
	case "memory":
		database, err = db.NewInMemory(conf.Database.Path)
	default:
		database, err = db.NewSqlite(conf.Database.Path, conf.Database.BatchSize)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := database.Connect(); err != nil {
		return nil, nil, err
	}

	return qual.NewLedger(database), database.Close, nil
}

func qualArch(cmd *cobra.Command) (abi.Architecture, error) {
	archStr, _ := cmd.Flags().GetString("arch")
	return abi.ParseArchitecture(archStr)
}

// qualCmd represents the qual command
var qualCmd = &cobra.Command{
	Use:   "qual",
	Short: "Maintain the toolchain-qualification ledger",
}

var qualAddCmd = &cobra.Command{
	Use:   "add <tool> <version> <path>",
	Short: "Qualify a tool binary (append-only, content-hash identity)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		arch, err := qualArch(cmd)
		if err != nil {
			return err
		}

		ledger, closer, err := openLedger()
		if err != nil {
			return err
		}
		defer closer()

		t, err := ledger.Add(args[0], args[1], arch, args[2])
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"tool":   t.Tool,
			"sha256": t.SHA256[:12],
		}).Info("qualified")
		return nil
	},
}

var qualListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every qualification ledger entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, closer, err := openLedger()
		if err != nil {
			return err
		}
		defer closer()

		tools, err := ledger.List()
		if err != nil {
			return err
		}
		for _, t := range tools {
			fmt.Println(qual.Render(&t))
		}
		return nil
	},
}

var qualCheckCmd = &cobra.Command{
	Use:          "check <tool> <version> <path>",
	Short:        "Verify a tool binary against its ledger entry",
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		arch, err := qualArch(cmd)
		if err != nil {
			return err
		}

		ledger, closer, err := openLedger()
		if err != nil {
			return err
		}
		defer closer()

		t, err := ledger.Check(args[0], args[1], arch, args[2])
		if err != nil {
			return err
		}
		color.NoColor = !Color
		fmt.Printf("%s %s\n", color.GreenString("OK"), qual.Render(t))
		return nil
	},
}
