package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the detector service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Models   ModelsConfig   `mapstructure:"models"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	SDL      SDLConfig      `mapstructure:"sdl"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// NATSConfig holds message bus configuration
type NATSConfig struct {
	URL            string `mapstructure:"url"`
	Subject        string `mapstructure:"subject"`
	Queue          string `mapstructure:"queue"`
	VerdictSubject string `mapstructure:"verdict_subject"`
}

// PipelineConfig bounds the buffer-driven processing cycle
type PipelineConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	HardCap   int `mapstructure:"hard_cap"`
	Window    int `mapstructure:"window"`
}

// ModelsConfig points at the cascade artifact files
type ModelsConfig struct {
	Stage1Path          string `mapstructure:"stage1_path"`
	Stage2BenignPath    string `mapstructure:"stage2_benign_path"`
	Stage2MaliciousPath string `mapstructure:"stage2_malicious_path"`
}

// RecorderConfig controls raw-capture CSV persistence
type RecorderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SDLConfig holds the Redis-backed shared data layer settings
type SDLConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject", "telemetry.kpm.indication.>")
	v.SetDefault("nats.queue", "detector-workers")
	v.SetDefault("nats.verdict_subject", "detector.verdicts.created")

	v.SetDefault("pipeline.batch_size", 30)
	v.SetDefault("pipeline.hard_cap", 1440)
	v.SetDefault("pipeline.window", 5)

	v.SetDefault("models.stage1_path", "models/stage1.json")
	v.SetDefault("models.stage2_benign_path", "models/stage2_benign.json")
	v.SetDefault("models.stage2_malicious_path", "models/stage2_malicious.json")

	v.SetDefault("recorder.enabled", false)
	v.SetDefault("recorder.path", "data/kpm_capture.csv")

	v.SetDefault("sdl.enabled", false)
	v.SetDefault("sdl.url", "redis://localhost:6379/0")
	v.SetDefault("sdl.ttl", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config
	v.SetEnvPrefix("RANWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
