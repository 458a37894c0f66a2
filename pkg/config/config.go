// Package config provides configuration management for the dataflow
// compiler: pass thresholds, the pass-run ledger's database, artifact
// storage, and logging.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the compiler.
type Config struct {
	Pass    PassConfig    `mapstructure:"pass"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// PassConfig holds thresholds consulted by the transformation passes.
type PassConfig struct {
	DefaultFIFOLength          int  `mapstructure:"default_fifo_length"`
	DefaultBaseSubBlockingLength int `mapstructure:"default_base_sub_blocking_length"`
	MaxValidationWorkers       int  `mapstructure:"max_validation_workers"`
	PrintActions               bool `mapstructure:"print_actions"`
}

// DatabaseConfig holds the pass-run ledger's database connection
// configuration (SPEC_FULL.md §3).
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres, or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds the artifact-snapshot storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
	// DualWrite, when true and both a local and a remote backend are
	// configured, writes each artifact to both concurrently via errgroup
	// rather than to only the primary backend.
	DualWrite bool `mapstructure:"dual_write"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/dataflowc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pass.default_fifo_length", 8)
	v.SetDefault("pass.default_base_sub_blocking_length", 1)
	v.SetDefault("pass.max_validation_workers", 4)
	v.SetDefault("pass.print_actions", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.database", "dataflowc_ledger.db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./artifacts")
	v.SetDefault("storage.dual_write", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.Type != "sqlite" && c.Database.Host == "" {
		return fmt.Errorf("database host is required for %s", c.Database.Type)
	}
	switch c.Storage.Type {
	case "local", "cos":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Pass.MaxValidationWorkers < 1 {
		return fmt.Errorf("max validation workers must be at least 1")
	}
	return nil
}
