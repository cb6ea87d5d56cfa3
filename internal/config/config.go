package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "LAB_IMPORTER_CONFIG"
	databaseURLEnv = "DATABASE_URL"
	rateListEnv    = "LAB_IMPORTER_RATE_LIST"
	batchSizeEnv   = "LAB_IMPORTER_BATCH_SIZE"
	rulesFileEnv   = "LAB_IMPORTER_RULES"
	httpAddrEnv    = "LAB_IMPORTER_HTTP_ADDR"
	logLevelEnv    = "LAB_IMPORTER_LOG_LEVEL"
	logFormatEnv   = "LAB_IMPORTER_LOG_FORMAT"

	defaultBatchSize = 100
	// maxBatchSize keeps a multi-row INSERT under the bind parameter limits
	// of both Postgres and sqlite.
	maxBatchSize = 1000
)

// MissingError reports a required setting that has no value.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("config: %s is required", e.Key)
}

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Import     ImportConfig     `yaml:"import"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig describes the storage destination.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
}

// ImportConfig controls how a rate list is loaded.
type ImportConfig struct {
	File      string `yaml:"file"`
	BatchSize int    `yaml:"batchSize"`
}

// ClassifierConfig points at an optional replacement rule table.
type ClassifierConfig struct {
	RulesFile string `yaml:"rulesFile"`
}

// ServerConfig configures the catalog HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration from path (or LAB_IMPORTER_CONFIG when path
// is empty) and applies environment overrides. A missing file is an error only
// when a path was given.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: cannot parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings an import needs before any file is read.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return &MissingError{Key: databaseURLEnv}
	}
	if c.Import.BatchSize <= 0 || c.Import.BatchSize > maxBatchSize {
		return fmt.Errorf("config: import.batchSize must be between 1 and %d, got %d", maxBatchSize, c.Import.BatchSize)
	}
	return nil
}

// IsMissing reports whether err is a *MissingError.
func IsMissing(err error) bool {
	var missing *MissingError
	return errors.As(err, &missing)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.URL = v
	}

	if v := os.Getenv(rateListEnv); v != "" {
		c.Import.File = v
	}

	if v := os.Getenv(batchSizeEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", batchSizeEnv, err)
		}
		c.Import.BatchSize = n
	}

	if v := os.Getenv(rulesFileEnv); v != "" {
		c.Classifier.RulesFile = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Database.URL != "" {
		base.Database.URL = override.Database.URL
	}
	if override.Database.MaxOpenConns > 0 {
		base.Database.MaxOpenConns = override.Database.MaxOpenConns
	}

	if override.Import.File != "" {
		base.Import.File = override.Import.File
	}
	if override.Import.BatchSize != 0 {
		base.Import.BatchSize = override.Import.BatchSize
	}

	if override.Classifier.RulesFile != "" {
		base.Classifier.RulesFile = override.Classifier.RulesFile
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{MaxOpenConns: 4},
		Import:   ImportConfig{File: "rate_list.txt", BatchSize: defaultBatchSize},
		Server:   ServerConfig{Addr: ":8000"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}
