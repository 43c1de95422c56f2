// Command rr-dnsd is an authoritative DNS server: load zone files, answer
// queries over UDP, and reload zones on demand without dropping traffic.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-dns/internal/dns/common/log"
)

const (
	version = "0.1.0-dev"
	appName = "rr-dnsd"
)

// cliError carries the process exit code a subcommand wants on failure,
// per the 0/1/2 contract (success / runtime failure / input validation).
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

// exitCode wraps err so main can exit with code instead of the default 1.
// A nil err passes through unchanged.
func exitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ce *cliError
		if errors.As(err, &ce) {
			os.Exit(ce.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "rr-dnsd serves authoritative DNS answers from master-file zones",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging("info", verbose)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCheckCmd(&configPath),
		newStartCmd(&configPath, &verbose),
		newReloadCmd(),
		newConfigCmd(&configPath),
	)

	return root
}

// configureLogging wires the global logger to the level the effective
// config asks for, folding in the --verbose flag as a floor of "debug".
func configureLogging(level string, verbose bool) error {
	if verbose {
		level = "debug"
	}
	env := "prod"
	if verbose {
		env = "dev"
	}
	if err := log.Configure(env, level); err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	return nil
}
