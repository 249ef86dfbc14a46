// Package config loads runtime configuration from defaults, an optional
// steady.yaml and STEADY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/localstore"
	"github.com/julianstephens/steady/internal/storage/postgres"
	"github.com/julianstephens/steady/internal/utils"
)

type Config struct {
	DataDir          string
	LocalBackend     localstore.Backend
	Remote           string
	HealthURL        string
	Timezone         string
	Debug            bool
	TodoStaleAfter   time.Duration
	HealthStaleAfter time.Duration
	RolloverSpec     string
}

// RemoteIsPostgres reports whether Remote is a PostgreSQL connection string.
func (c Config) RemoteIsPostgres() bool {
	return postgres.IsConnString(c.Remote)
}

// Load resolves the configuration. dataDir, when non-empty, overrides the
// configured data directory and is also searched for steady.yaml.
func Load(dataDir string) (Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(constants.AppName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.AutomaticEnv()

	if override := os.Getenv("STEADY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if dataDir != "" {
		v.AddConfigPath(ExpandHome(dataDir))
	}
	v.AddConfigPath(ExpandHome(constants.DefaultDataDir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		DataDir:          v.GetString("data_dir"),
		LocalBackend:     localstore.Backend(v.GetString("local_backend")),
		Remote:           v.GetString("remote"),
		HealthURL:        v.GetString("health_url"),
		Timezone:         v.GetString("timezone"),
		Debug:            v.GetBool("debug"),
		TodoStaleAfter:   v.GetDuration("todo_stale_after"),
		HealthStaleAfter: v.GetDuration("health_stale_after"),
		RolloverSpec:     v.GetString("rollover_spec"),
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.DataDir = ExpandHome(cfg.DataDir)
	return cfg, cfg.Validate()
}

func defaults() map[string]any {
	return map[string]any{
		"data_dir":           constants.DefaultDataDir,
		"local_backend":      string(localstore.BackendDiskv),
		"remote":             "",
		"health_url":         "",
		"timezone":           "Local",
		"debug":              false,
		"todo_stale_after":   constants.TodoStaleAfter.String(),
		"health_stale_after": constants.HealthStaleAfter.String(),
		"rollover_spec":      constants.DefaultRolloverSpec,
	}
}

// WriteDefault writes steady.yaml with the default values into dir and
// returns its path. An existing file is left untouched.
func WriteDefault(dir string) (path string, created bool, err error) {
	dir = ExpandHome(dir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	v := viper.New()
	for key, value := range defaults() {
		if key == "data_dir" {
			continue
		}
		v.Set(key, value)
	}
	path = filepath.Join(dir, constants.AppName+".yaml")
	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("failed to write config: %w", err)
	}
	return path, true, nil
}

// DefaultRemotePath is the embedded sqlite record store used when no remote
// is configured.
func (c Config) DefaultRemotePath() string {
	return filepath.Join(c.DataDir, "remote.db")
}

// Validate checks the fields that cannot be coerced.
func (c Config) Validate() error {
	switch c.LocalBackend {
	case localstore.BackendDiskv, localstore.BackendSQLite, localstore.BackendMemory:
	default:
		return fmt.Errorf("unknown local_backend %q", c.LocalBackend)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.TodoStaleAfter < 0 || c.HealthStaleAfter < 0 {
		return fmt.Errorf("staleness thresholds must not be negative")
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
