package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-dns/internal/dns/config"
	"github.com/haukened/rr-dns/internal/dns/repos/zone"
)

const defaultTTL = 300

func newCheckCmd(configPath *string) *cobra.Command {
	var zonesDir string

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a zone file or directory without starting the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := zonesDir
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				if cfg, err := config.Load(*configPath); err == nil {
					if cfg.ZoneFile != "" {
						path = cfg.ZoneFile
					} else {
						path = cfg.ZonesDir
					}
				}
			}
			if path == "" {
				return exitCode(2, fmt.Errorf("check requires a path argument, --zones-dir, or a configured zonefile/zones_dir"))
			}

			info, err := os.Stat(path)
			if err != nil {
				return exitCode(2, fmt.Errorf("stat %s: %w", path, err))
			}

			var store interface{ RecordCount() int }
			if info.IsDir() {
				store, err = zone.LoadZoneDirectory(path, defaultTTL)
			} else {
				store, err = zone.LoadFile(path, defaultTTL)
			}
			if err != nil {
				return exitCode(2, fmt.Errorf("zone validation failed: %w", err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d records)\n", path, store.RecordCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&zonesDir, "zones-dir", "", "zone directory to validate, if no positional path is given")
	return cmd
}
