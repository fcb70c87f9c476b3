// Package config loads chdialect configuration from chdialect.yaml,
// CHDIALECT_ environment variables and command-line flags.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapter"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/adapters/clickhouse"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "chdialect.yaml"
	ConfigFileNameAlt = "chdialect.yml"
	EnvFileName       = ".env"
	EnvPrefix         = "CHDIALECT_"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Config is the resolved CLI configuration.
type Config struct {
	Target  core.TargetConfig `koanf:"target"`
	Verbose bool              `koanf:"verbose"`

	// ConfigFile is the file the values were read from, empty when none was found.
	ConfigFile string `koanf:"-"`
}

// targetKeys are the top-level env and flag names that live under target.
var targetKeys = map[string]bool{
	"type":     true,
	"host":     true,
	"port":     true,
	"database": true,
	"user":     true,
	"password": true,
	"schema":   true,
	"timezone": true,
	"debug":    true,
}

// loggerKey is used to store the logger in a context.
type loggerKey struct{}

// configKey is used to store the config in a context.
type configKey struct{}

// Defaults returns the values used when nothing else sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"target.type":     "clickhouse",
		"target.host":     clickhouse.DefaultHost,
		"target.port":     clickhouse.DefaultPort,
		"target.database": clickhouse.DefaultDatabase,
		"target.user":     clickhouse.DefaultUser,
		"target.timezone": datatypes.DefaultTimezone,
		"verbose":         false,
	}
}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// FindConfigFile searches upward from startDir for a chdialect config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func FindConfigFile(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if p := configExistsIn(dir); p != "" {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load reads configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// A .env file next to the config file (or in the working directory) is
// loaded into the process environment first; it never overrides variables
// that are already set.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = FindConfigFile(cwd)
		}
	}

	baseDir := "."
	if cfgFile != "" {
		baseDir = filepath.Dir(cfgFile)
	}
	if err := loadDotEnv(filepath.Join(baseDir, EnvFileName)); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// CHDIALECT_HOST -> target.host, CHDIALECT_VERBOSE -> verbose
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = cfgFile
	expandTargetEnvVars(&cfg.Target)

	if err := Validate(&cfg.Target); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if targetKeys[key] {
		return "target." + key
	}
	return key
}

func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if targetKeys[key] {
		return "target." + key
	}
	return key
}

// Validate checks that a target can be handed to an adapter.
func Validate(t *core.TargetConfig) error {
	if t.Type == "" {
		return errors.New("target type is required")
	}
	t.Type = strings.ToLower(t.Type)
	if !adapter.IsRegistered(t.Type) {
		return &adapter.UnknownAdapterError{Type: t.Type, Available: adapter.ListAdapters()}
	}
	if t.Port < 0 || t.Port > 65535 {
		return fmt.Errorf("port %d out of range", t.Port)
	}
	if t.Timezone != "" && !datatypes.IsOffset(t.Timezone) && !datatypes.IsNamedZone(t.Timezone) {
		return fmt.Errorf("unknown timezone %q", t.Timezone)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

func expandTargetEnvVars(t *core.TargetConfig) {
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	for k, v := range t.Options {
		t.Options[k] = expandEnvVars(v)
	}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, falling back to defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	cfg := &Config{Target: core.TargetConfig{
		Type:     "clickhouse",
		Host:     clickhouse.DefaultHost,
		Port:     clickhouse.DefaultPort,
		Database: clickhouse.DefaultDatabase,
		User:     clickhouse.DefaultUser,
		Timezone: datatypes.DefaultTimezone,
	}}
	return cfg
}
