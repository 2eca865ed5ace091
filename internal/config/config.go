package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvConfigPath = "DSBMAP_CONFIG"
	EnvDBPath     = "DSBMAP_DB_PATH"
	EnvLogLevel   = "DSBMAP_LOG_LEVEL"
	EnvUniProtURL = "DSBMAP_UNIPROT_URL"
)

// DefaultDBPath is expanded against the user's home directory
const DefaultDBPath = "~/.dsbmap/catalog.db"

// Config is the full application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Decoder  DecoderConfig  `yaml:"decoder"`
	Layout   LayoutConfig   `yaml:"layout"`
	Import   ImportConfig   `yaml:"import"`
	UniProt  UniProtConfig  `yaml:"uniprot"`
}

// DatabaseConfig locates the catalog database
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DecoderConfig controls topology validation
type DecoderConfig struct {
	StrictPartition bool `yaml:"strict_partition"`
}

// LayoutConfig holds scene defaults
type LayoutConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Scale      float64 `yaml:"scale"`
	BondLength float64 `yaml:"bond_length"`
}

// ImportConfig controls the importer worker pool
type ImportConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// UniProtConfig controls remote lookups
type UniProtConfig struct {
	Enabled    bool          `yaml:"enabled"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"`
	MaxRetries int           `yaml:"max_retries"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDBPath},
		Log:      LogConfig{Level: "info", Format: "text"},
		Layout:   LayoutConfig{Width: 1000, Height: 500, Scale: 1, BondLength: 40},
		Import:   ImportConfig{Workers: 0, BatchSize: 200},
		UniProt: UniProtConfig{
			Enabled:    true,
			BaseURL:    "https://rest.uniprot.org/uniprotkb",
			Timeout:    30 * time.Second,
			CacheSize:  1000,
			MaxRetries: 3,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment, in that order. An empty path falls back to
// $DSBMAP_CONFIG; when neither is set no file is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	var err error
	if cfg.Database.Path, err = expandHome(cfg.Database.Path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys so that typos do not silently fall back to
// defaults
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvUniProtURL); v != "" {
		c.UniProt.BaseURL = v
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 || c.Layout.Scale <= 0 || c.Layout.BondLength <= 0 {
		errs = append(errs, errors.New("layout width, height, scale and bond_length must be positive"))
	}
	if c.Import.Workers < 0 || c.Import.BatchSize < 0 {
		errs = append(errs, errors.New("import workers and batch_size must not be negative"))
	}
	if c.UniProt.Enabled && c.UniProt.BaseURL == "" {
		errs = append(errs, errors.New("uniprot.base_url is required when uniprot is enabled"))
	}
	if c.UniProt.Timeout < 0 || c.UniProt.CacheSize < 0 || c.UniProt.MaxRetries < 0 {
		errs = append(errs, errors.New("uniprot timeout, cache_size and max_retries must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
