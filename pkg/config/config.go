package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig              `mapstructure:"server"`
	Trellis  TrellisConfig             `mapstructure:"trellis"`
	Trellises map[string]TrellisConfig `mapstructure:"trellises"`
	Decoder  DecoderConfig             `mapstructure:"decoder"`
	Web      WebConfig                 `mapstructure:"web"`
	Events   EventsConfig              `mapstructure:"events"`
	Logging  LoggingConfig             `mapstructure:"logging"`
	Metrics  MetricsConfig             `mapstructure:"metrics"`
	Database DatabaseConfig            `mapstructure:"database"`
}

// ServerConfig holds process identification, surfaced over the status API.
type ServerConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// TrellisConfig describes a rate-1/n convolutional code, the configuration
// surface of internal/trellis.Spec. BlockBits is the number of information
// bits per block; the CLI has no flag that overrides it.
type TrellisConfig struct {
	ConstraintLength int   `mapstructure:"constraint_length"`
	Generators       []int `mapstructure:"generators"`
	BlockBits        int   `mapstructure:"block_bits"`
	Terminate        bool  `mapstructure:"terminate"`
}

// DecoderConfig holds the decoder construction parameters that aren't part
// of the trellis definition itself (spec.md §6).
type DecoderConfig struct {
	SamplePrecision  int `mapstructure:"sample_precision"`
	OutputBudgetBytes int `mapstructure:"output_budget_bytes"`
	Muxed            bool `mapstructure:"muxed"`
}

// WebConfig holds the decode-progress dashboard's HTTP server configuration.
type WebConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	AuthRequired bool   `mapstructure:"auth_required"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
}

// EventsConfig holds the decode-event publisher configuration.
type EventsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// DatabaseConfig holds the decode-session history store configuration.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/viterbi-decoder")
	}

	viper.SetEnvPrefix("VITERBI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults.
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.name", "viterbi-decoder")
	viper.SetDefault("server.description", "Soft-decision Viterbi decoder for convolutional codes")

	// The textbook (7,5) K=3 rate-1/2 code, the default when no trellis is
	// configured explicitly.
	viper.SetDefault("trellis.constraint_length", 3)
	viper.SetDefault("trellis.generators", []int{7, 5})
	viper.SetDefault("trellis.block_bits", 1024)
	viper.SetDefault("trellis.terminate", true)

	viper.SetDefault("decoder.sample_precision", 8)
	viper.SetDefault("decoder.output_budget_bytes", 65536)
	viper.SetDefault("decoder.muxed", true)

	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)
	viper.SetDefault("web.auth_required", false)

	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.topic_prefix", "viterbi/decoder")
	viper.SetDefault("events.client_id", "viterbi-decoder")
	viper.SetDefault("events.qos", 1)
	viper.SetDefault("events.retained", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 7)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")

	viper.SetDefault("database.enabled", true)
	viper.SetDefault("database.path", "data/viterbi-decoder.db")
}
