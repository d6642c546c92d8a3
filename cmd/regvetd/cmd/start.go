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
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blacktop/regvet/daemon"
	"github.com/blacktop/regvet/internal/config"
)

func init() {
	rootCmd.AddCommand(startCmd)
}

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the regvet daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		d := daemon.NewDaemon(conf)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			if conf.Daemon.Socket != "" {
				log.WithField("socket", conf.Daemon.Socket).Info("starting daemon")
			} else {
				log.WithFields(log.Fields{
					"host": conf.Daemon.Host,
					"port": conf.Daemon.Port,
				}).Info("starting daemon")
			}
			return d.Start()
		})

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		g.Go(func() error {
			select {
			case sig := <-sigs:
				log.WithField("signal", sig.String()).Info("shutting down")
				return d.Stop()
			case <-ctx.Done():
				// server already failed; nothing left to stop
				return nil
			}
		})

		return g.Wait()
	},
}
