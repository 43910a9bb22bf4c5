// Package config loads the contactbook configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/contactbook/internal/models"
)

// DefaultPath is used when neither --config nor CONTACTBOOK_CONFIG is set.
const DefaultPath = "contactbook.yaml"

// Config holds all contactbook settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Backup  BackupConfig  `yaml:"backup"`

	// DefaultCategories are created on server start when missing.
	DefaultCategories []string `yaml:"default_categories"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// BackupConfig configures snapshot uploads to S3. Region and credentials
// come from the standard AWS environment when Region is empty.
type BackupConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server:            ServerConfig{ListenAddr: ":8080"},
		Storage:           StorageConfig{DBPath: "./data/contacts.db"},
		Logging:           LoggingConfig{Level: "info"},
		Backup:            BackupConfig{Prefix: "contactbook/"},
		DefaultCategories: append([]string(nil), models.DefaultCategories...),
	}
}

// Path resolves the config file location: flag value first, then
// CONTACTBOOK_CONFIG, then DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("CONTACTBOOK_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	for env, dst := range map[string]*string{
		"DB_PATH":       &c.Storage.DBPath,
		"LISTEN_ADDR":   &c.Server.ListenAddr,
		"LOG_LEVEL":     &c.Logging.Level,
		"BACKUP_BUCKET": &c.Backup.Bucket,
		"BACKUP_PREFIX": &c.Backup.Prefix,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
