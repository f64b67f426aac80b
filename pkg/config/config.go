// Package config provides a reusable loader for hive-indexer configuration
// files and environment variables, versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for an indexer process. It mirrors
// the structure of any YAML file under cmd/config, overridable by
// environment variables (HIVE_INDEXER_ prefix via AutomaticEnv).
type Config struct {
	Adapter struct {
		Endpoints    []string `mapstructure:"endpoints" json:"endpoints"`
		HTTPTimeout  string   `mapstructure:"http_timeout" json:"http_timeout"`
		MaxRetries   int      `mapstructure:"max_retries" json:"max_retries"`
		MaxIdleConns int      `mapstructure:"max_idle_conns" json:"max_idle_conns"`
		IdleTimeout  string   `mapstructure:"idle_timeout" json:"idle_timeout"`
	} `mapstructure:"adapter" json:"adapter"`

	Storage struct {
		DSN         string `mapstructure:"dsn" json:"dsn"`
		MaxConns    int    `mapstructure:"max_conns" json:"max_conns"`
		StatementMS int    `mapstructure:"statement_timeout_ms" json:"statement_timeout_ms"`
	} `mapstructure:"storage" json:"storage"`

	Sync struct {
		TrailBlocks    uint32 `mapstructure:"trail_blocks" json:"trail_blocks"`
		ChunkSize      int    `mapstructure:"chunk_size" json:"chunk_size"`
		RangeWindow    uint32 `mapstructure:"range_window" json:"range_window"`
		CheckpointDir  string `mapstructure:"checkpoint_dir" json:"checkpoint_dir"`
		LiveRetryMS    int    `mapstructure:"live_retry_ms" json:"live_retry_ms"`
		WallClockWarnS int    `mapstructure:"wall_clock_warn_seconds" json:"wall_clock_warn_seconds"`
	} `mapstructure:"sync" json:"sync"`

	HTTP struct {
		HealthzAddr string `mapstructure:"healthz_addr" json:"healthz_addr"`
		MetricsAddr string `mapstructure:"metrics_addr" json:"metrics_addr"`
	} `mapstructure:"http" json:"http"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment-specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. Missing config files are tolerated — the indexer can run on
// environment variables and defaults alone.
//
// The function uses the provided environment name to merge additional
// config files. If env is empty, only the default configuration (if
// present) is loaded.
func Load(env string) (*Config, error) {
	setDefaults()

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.SetEnvPrefix("hive_indexer")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the HIVE_INDEXER_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("HIVE_INDEXER_ENV", ""))
}

func setDefaults() {
	viper.SetDefault("adapter.endpoints", []string{"https://api.hive.blog"})
	viper.SetDefault("adapter.http_timeout", "10s")
	viper.SetDefault("adapter.max_retries", 5)
	viper.SetDefault("adapter.max_idle_conns", 10)
	viper.SetDefault("adapter.idle_timeout", "90s")
	viper.SetDefault("storage.dsn", "")
	viper.SetDefault("storage.max_conns", 10)
	viper.SetDefault("storage.statement_timeout_ms", 30000)
	viper.SetDefault("sync.trail_blocks", 2)
	viper.SetDefault("sync.chunk_size", 250)
	viper.SetDefault("sync.range_window", 1000)
	viper.SetDefault("sync.checkpoint_dir", "")
	viper.SetDefault("sync.live_retry_ms", 500)
	viper.SetDefault("sync.wall_clock_warn_seconds", 1)
	viper.SetDefault("http.healthz_addr", ":8081")
	viper.SetDefault("http.metrics_addr", ":9091")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
