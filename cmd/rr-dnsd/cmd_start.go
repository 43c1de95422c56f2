package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-dns/internal/dns/common/log"
	"github.com/haukened/rr-dns/internal/dns/config"
	"github.com/haukened/rr-dns/internal/dns/gateways/transport"
	"github.com/haukened/rr-dns/internal/dns/gateways/wire"
	"github.com/haukened/rr-dns/internal/dns/repos/loadstate"
	"github.com/haukened/rr-dns/internal/dns/repos/zone"
	"github.com/haukened/rr-dns/internal/dns/repos/zonestore"
	"github.com/haukened/rr-dns/internal/dns/services/reload"
)

const defaultShutdownTimeout = 10 * time.Second

func newStartCmd(configPath *string, verbose *bool) *cobra.Command {
	var zoneFile, zonesDir, iface string
	var port int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Load zones and serve authoritative DNS answers over UDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return exitCode(2, fmt.Errorf("loading config: %w", err))
			}
			if zoneFile != "" {
				cfg.ZoneFile = zoneFile
				cfg.ZonesDir = ""
			}
			if zonesDir != "" {
				cfg.ZonesDir = zonesDir
				cfg.ZoneFile = ""
			}
			if port != 0 {
				cfg.Port = port
			}
			if iface != "" {
				cfg.Interface = iface
			}
			if *verbose {
				cfg.Verbose = true
			}
			if err := cfg.Validate(); err != nil {
				return exitCode(2, fmt.Errorf("invalid configuration: %w", err))
			}

			if err := configureLoggingFor(cfg); err != nil {
				return exitCode(1, err)
			}

			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&zoneFile, "zonefile", "", "single master file to serve (overrides config)")
	cmd.Flags().StringVar(&zonesDir, "zones-dir", "", "directory of master files to serve (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "UDP port to listen on (overrides config)")
	cmd.Flags().StringVar(&iface, "interface", "", "local address to bind (overrides config)")
	return cmd
}

// configureLoggingFor wires the global logger to the effective config,
// folding in --verbose as a floor of "debug" the same way configureLogging
// does for subcommands that don't load a full AppConfig.
func configureLoggingFor(cfg *config.AppConfig) error {
	level := cfg.LogLevel
	env := "prod"
	if cfg.Verbose {
		level = "debug"
		env = "dev"
	}
	if err := log.ConfigureOutput(env, level, cfg.LogFile); err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	return nil
}

// runServer loads zones, starts the UDP transport, and blocks until a
// shutdown signal arrives. SIGINT/SIGTERM trigger a graceful drain; SIGHUP
// triggers a zone reload without interrupting in-flight traffic.
func runServer(ctx context.Context, cfg *config.AppConfig) error {
	logger := log.GetLogger()

	loader := newZoneLoader(cfg)
	initial, err := loader()
	if err != nil {
		return exitCode(2, fmt.Errorf("loading zones: %w", err))
	}

	controller := reload.New(initial, loader, logger)

	codec := wire.NewUDPCodec(logger)
	addr := fmt.Sprintf("%s:%d", cfg.Interface, cfg.Port)
	srv, err := transport.NewTransport(transport.TransportUDP, addr, codec, logger)
	if err != nil {
		return exitCode(1, fmt.Errorf("creating transport: %w", err))
	}

	if cfg.WritePID {
		if err := writePIDFile(cfg.PIDFile); err != nil {
			return exitCode(1, fmt.Errorf("writing pid file: %w", err))
		}
		defer removePIDFileIfOwned(cfg.PIDFile)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		for sig := range sigChan {
			switch sig {
			case syscall.SIGHUP:
				log.Info(map[string]any{"signal": sig.String()}, "reload requested")
				if err := controller.Reload(); err != nil {
					log.Error(map[string]any{"error": err.Error()}, "reload failed, continuing with previous zone store")
				}
			default:
				log.Info(map[string]any{"signal": sig.String()}, "shutdown signal received")
				cancel()
				return
			}
		}
	}()

	if err := srv.Start(runCtx, controller); err != nil {
		return exitCode(1, fmt.Errorf("starting transport: %w", err))
	}

	log.Info(map[string]any{
		"address": srv.Address(),
		"apexes":  initial.Apexes(),
	}, "rr-dnsd serving")

	<-runCtx.Done()
	log.Info(nil, "shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer shutdownCancel()

	stopped := make(chan error, 1)
	go func() { stopped <- srv.Stop() }()

	select {
	case err := <-stopped:
		if err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "error during transport shutdown")
		}
	case <-shutdownCtx.Done():
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout.String()}, "shutdown timeout exceeded")
	}

	log.Info(nil, "rr-dnsd stopped")
	return nil
}

// newZoneLoader returns a reload.Loader that rebuilds the ZoneStore from
// cfg's zone source. For a directory source it consults a load-state
// database keyed by file size/mtime fingerprints and returns the previous
// build untouched when nothing on disk changed, so a SIGHUP-driven reload
// of an unmodified zones_dir is a no-op rebuild.
func newZoneLoader(cfg *config.AppConfig) reload.Loader {
	statePath := filepath.Join(filepath.Dir(pidFilePath(cfg)), "rr-dnsd.loadstate")
	var last *zonestore.ZoneStore

	return func() (*zonestore.ZoneStore, error) {
		if cfg.ZoneFile != "" {
			return zone.LoadFile(cfg.ZoneFile, uint32(defaultTTL))
		}

		fps, fpErr := loadstate.FingerprintDir(cfg.ZonesDir)
		if fpErr != nil {
			return zone.LoadZoneDirectory(cfg.ZonesDir, uint32(defaultTTL))
		}

		store, err := loadstate.Open(statePath)
		if err != nil {
			return zone.LoadZoneDirectory(cfg.ZonesDir, uint32(defaultTTL))
		}
		defer store.Close()

		if last != nil {
			if unchanged, err := store.Unchanged(fps); err == nil && unchanged {
				log.Debug(map[string]any{"zones_dir": cfg.ZonesDir}, "zone source unchanged, reusing previous store")
				return last, nil
			}
		}

		built, err := zone.LoadZoneDirectory(cfg.ZonesDir, uint32(defaultTTL))
		if err != nil {
			return nil, err
		}
		if err := store.Record(fps); err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "failed to record zone fingerprints")
		}
		last = built
		return built, nil
	}
}

// pidFilePath returns the configured PID file path, or a sane default when
// unset, used only to anchor the load-state database alongside it.
func pidFilePath(cfg *config.AppConfig) string {
	if cfg.PIDFile != "" {
		return cfg.PIDFile
	}
	return "/var/run/rr-dnsd.pid"
}

func writePIDFile(path string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// removePIDFileIfOwned deletes path only if it still contains this
// process's PID, so a faster-starting second instance never loses its own
// PID file to a slower-exiting first one.
func removePIDFileIfOwned(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if strconv.Itoa(os.Getpid()) != strings.TrimSpace(string(data)) {
		return
	}
	_ = os.Remove(path)
}
