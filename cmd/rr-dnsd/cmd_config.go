package main

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/haukened/rr-dns/internal/dns/config"
)

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold rr-dnsd configuration",
	}

	cmd.AddCommand(newConfigShowCmd(configPath), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return exitCode(2, fmt.Errorf("loading config: %w", err))
			}

			data, err := marshalTOML(*cfg)
			if err != nil {
				return exitCode(1, fmt.Errorf("marshalling config: %w", err))
			}

			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := marshalTOML(config.DefaultConfig())
			if err != nil {
				return exitCode(1, fmt.Errorf("marshalling default config: %w", err))
			}

			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), defaultConfigHeader+string(data))
				return nil
			}

			if _, err := os.Stat(out); err == nil {
				return exitCode(2, fmt.Errorf("%s already exists, refusing to overwrite", out))
			}
			if err := os.WriteFile(out, []byte(defaultConfigHeader+string(data)), 0o644); err != nil {
				return exitCode(1, fmt.Errorf("writing %s: %w", out, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "file to write (defaults to stdout)")
	return cmd
}

const defaultConfigHeader = "# rr-dnsd default configuration.\n" +
	"# Exactly one of zonefile or zones_dir must be set.\n"

// marshalTOML renders cfg as TOML via koanf, so config show/init stay in
// sync with the struct tags config.Load already relies on for parsing.
func marshalTOML(cfg config.AppConfig) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, err
	}
	return k.Marshal(toml.Parser())
}
