package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds the server's effective configuration, assembled from
// defaults, an optional TOML file, and environment variables (in that
// order, environment wins).
type AppConfig struct {
	// ZoneFile points at a single RFC 1035 master file to serve. Mutually
	// exclusive with ZonesDir.
	ZoneFile string `koanf:"zonefile"`

	// ZonesDir points at a directory of master files to merge into one
	// store. Mutually exclusive with ZoneFile.
	ZonesDir string `koanf:"zones_dir"`

	// Port is the UDP port the server listens on.
	Port int `koanf:"port" validate:"gte=1,lte=65535"`

	// Interface is the local address to bind to; empty binds all interfaces.
	Interface string `koanf:"interface"`

	// Daemon is accepted and validated but has no effect: the process runs
	// in the foreground and logging is unchanged either way.
	Daemon bool `koanf:"daemon"`

	// WritePID controls whether a PID file is written on startup.
	WritePID bool `koanf:"write_pid"`

	// PIDFile is the path a PID file is written to when WritePID is true.
	PIDFile string `koanf:"pid_file"`

	// LogFile, if set, redirects structured logs to a file instead of stderr.
	LogFile string `koanf:"log_file"`

	// LogLevel controls verbosity: debug, info, warn, or error.
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Verbose additionally enables debug-level fields even when LogLevel is
	// higher, useful for one-off troubleshooting without editing LogLevel.
	Verbose bool `koanf:"verbose"`
}

// DefaultConfig returns the built-in defaults applied before any file or
// environment overrides.
func DefaultConfig() AppConfig {
	return AppConfig{
		ZonesDir:  "/etc/rr-dns/zones.d/",
		Port:      53,
		Interface: "",
		Daemon:    false,
		WritePID:  false,
		PIDFile:   "/var/run/rr-dnsd.pid",
		LogFile:   "",
		LogLevel:  "info",
		Verbose:   false,
	}
}

// envPrefix is the environment variable prefix consulted by Load, per
// RRDNS_ZONEFILE, RRDNS_PORT, etc.
const envPrefix = "RRDNS_"

// Load assembles the effective configuration: defaults, then configPath (a
// TOML file, if non-empty and present), then environment variables, which
// win over both. A missing configPath is not an error — the file layer is
// optional — but a present, malformed file is.
func Load(configPath string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return key, strings.TrimSpace(value)
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints plus the zonefile/zones_dir
// mutual-exclusivity rule that a plain struct tag can't express.
func (c AppConfig) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.ZoneFile == "" && c.ZonesDir == "" {
		return fmt.Errorf("exactly one of zonefile or zones_dir must be set")
	}
	if c.ZoneFile != "" && c.ZonesDir != "" {
		return fmt.Errorf("zonefile and zones_dir are mutually exclusive")
	}
	if c.WritePID && c.PIDFile == "" {
		return fmt.Errorf("pid_file must be set when write_pid is true")
	}
	return nil
}
