// Package config loads the ols-dialog configuration.
//
// The configuration file is located, in order, by:
//   - the --config flag,
//   - the OLSD_CONFIG environment variable,
//   - $XDG_CONFIG_HOME/ols-dialog/config.yaml (or the platform equivalent) when it exists.
//
// Without a file the defaults are used.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "OLSD_CONFIG"

// Config is the ols-dialog configuration.
type Config struct {
	// Endpoint is the SOAP endpoint of the OLS query service.
	Endpoint string `yaml:"endpoint"`

	// HierarchyURL is the base URL serving rendered term hierarchy graphs.
	HierarchyURL string `yaml:"hierarchy_url"`

	// Timeout bounds every remote call, e.g. "20s".
	Timeout string `yaml:"timeout"`

	// ErrorLog is the file remote failures are logged to.
	ErrorLog string `yaml:"error_log"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MinWordLength is the shortest term name that triggers a search.
	MinWordLength int `yaml:"min_word_length"`

	// DefaultOntology is the ontology label or key selected on open.
	DefaultOntology string `yaml:"default_ontology"`

	// DefaultAccuracy prefills the mass search accuracy.
	DefaultAccuracy float64 `yaml:"default_accuracy"`

	// Preselected restricts the ontologies offered. Keys are ontology
	// short names, values optional root term IDs.
	Preselected map[string][]string `yaml:"preselected,omitempty"`

	// GlamourStyle is the glamour style used for the help and about pages.
	GlamourStyle string `yaml:"glamour_style"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Endpoint:        "http://www.ebi.ac.uk/ontology-lookup/services/OntologyQuery",
		HierarchyURL:    "http://www.ebi.ac.uk/ontology-lookup/",
		Timeout:         "20s",
		ErrorLog:        defaultErrorLog(),
		LogLevel:        "info",
		MinWordLength:   3,
		DefaultAccuracy: 0.1,
		GlamourStyle:    "auto",
	}
}

func defaultErrorLog() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ols-dialog", "ols-dialog.log")
}

// DefaultPath is the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ols-dialog", "config.yaml")
}

// Resolve picks the config file to read. An empty result means defaults.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	if p := DefaultPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads the configuration chosen by Resolve and validates it.
func Load(flagPath string) (*Config, error) {
	path := Resolve(flagPath)
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile reads a config file over the defaults. Fields missing from the
// file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.ErrorLog = expandHome(cfg.ErrorLog)
	return cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := checkURL(c.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("endpoint: %w", err))
	}
	if err := checkURL(c.HierarchyURL); err != nil {
		errs = append(errs, fmt.Errorf("hierarchy_url: %w", err))
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.MinWordLength < 1 {
		errs = append(errs, fmt.Errorf("min_word_length must be at least 1, got %d", c.MinWordLength))
	}
	if c.DefaultAccuracy < 0 {
		errs = append(errs, fmt.Errorf("default_accuracy must not be negative, got %g", c.DefaultAccuracy))
	}
	for key := range c.Preselected {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, errors.New("preselected: empty ontology key"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// TimeoutDuration returns the parsed timeout, or 20s when it is unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// Level returns the slog level for LogLevel, or info when it is invalid.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel parses a log level name.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", name)
}
