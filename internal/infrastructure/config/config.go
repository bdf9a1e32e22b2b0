// Package config loads service configuration from config.yaml and the
// environment, environment winning.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the relayer service
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Bridge      BridgeConfig   `mapstructure:"bridge"`
	Custody     CustodyConfig  `mapstructure:"custody"`
	Relayer     RelayerConfig  `mapstructure:"relayer"`
	Workers     WorkerConfig   `mapstructure:"workers"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// BridgeConfig points at the token bridge node this relayer uses.
type BridgeConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
	// Authority is the bridge's transfer authority; outbound escrows
	// delegate spending to it before a message is posted.
	Authority string `mapstructure:"authority"`
}

// CustodyConfig points at the token custody service.
type CustodyConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// RelayerConfig carries the chain-level identity of this deployment.
type RelayerConfig struct {
	// ChainID is this chain's id in the bridge's numbering. Foreign
	// contracts may never register under it.
	ChainID uint16 `mapstructure:"chain_id"`
	// NativeMint is the tokenized form of the native currency.
	NativeMint string `mapstructure:"native_mint"`
	// SignerKey identifies this relayer when completing redemptions.
	SignerKey string `mapstructure:"signer_key"`
	// Defaults applied at initialize time; both are stored state
	// afterwards and updated through the admin API.
	RelayerFeePrecision uint32 `mapstructure:"relayer_fee_precision"`
	SwapRatePrecision   uint32 `mapstructure:"swap_rate_precision"`
}

type WorkerConfig struct {
	RedemptionEnabled  bool   `mapstructure:"redemption_enabled"`
	RedemptionSchedule string `mapstructure:"redemption_schedule"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	CollectorURL string  `mapstructure:"collector_url"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "relayer_service")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("bridge.timeout", 30)
	viper.SetDefault("custody.timeout", 30)

	viper.SetDefault("relayer.chain_id", 1)
	viper.SetDefault("relayer.relayer_fee_precision", 100000000)
	viper.SetDefault("relayer.swap_rate_precision", 100000000)

	viper.SetDefault("workers.redemption_enabled", true)
	viper.SetDefault("workers.redemption_schedule", "@every 15s")

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.collector_url", "localhost:4317")
	viper.SetDefault("tracing.sample_rate", 1.0)
}

func validate(cfg *Config) error {
	if cfg.Relayer.ChainID == 0 {
		return fmt.Errorf("relayer.chain_id must be nonzero")
	}
	if cfg.Relayer.RelayerFeePrecision == 0 || cfg.Relayer.SwapRatePrecision == 0 {
		return fmt.Errorf("relayer precisions must be nonzero")
	}
	if cfg.Bridge.BaseURL == "" {
		return fmt.Errorf("bridge.base_url is required")
	}
	if cfg.Bridge.Authority == "" {
		return fmt.Errorf("bridge.authority is required")
	}
	if cfg.Custody.BaseURL == "" {
		return fmt.Errorf("custody.base_url is required")
	}
	return nil
}
