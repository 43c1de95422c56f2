package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newReloadCmd() *cobra.Command {
	var pid int
	var pidFile string

	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Signal a running rr-dnsd to reload its zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := pid
			if target == 0 {
				if pidFile == "" {
					return exitCode(2, fmt.Errorf("reload requires --pid or --pid-file"))
				}
				p, err := readPIDFile(pidFile)
				if err != nil {
					return exitCode(2, fmt.Errorf("reading pid file %s: %w", pidFile, err))
				}
				target = p
			}

			proc, err := os.FindProcess(target)
			if err != nil {
				return exitCode(1, fmt.Errorf("finding process %d: %w", target, err))
			}
			if err := proc.Signal(syscall.SIGHUP); err != nil {
				return exitCode(1, fmt.Errorf("signaling process %d: %w", target, err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent SIGHUP to pid %d\n", target)
			return nil
		},
	}

	cmd.Flags().IntVar(&pid, "pid", 0, "pid of the running rr-dnsd process")
	cmd.Flags().StringVar(&pidFile, "pid-file", "", "path to a file containing the running rr-dnsd pid")
	return cmd
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
