// Package config loads application configuration from config.yaml and the
// environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	TBA       TBAConfig       `yaml:"tba" mapstructure:"tba"`
	First     FirstConfig     `yaml:"first" mapstructure:"first"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Archive   ArchiveConfig   `yaml:"archive" mapstructure:"archive"`
	Overrides OverridesConfig `yaml:"overrides" mapstructure:"overrides"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// TBAConfig holds The Blue Alliance API credentials.
type TBAConfig struct {
	AuthKey string `yaml:"auth_key" mapstructure:"auth_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirstConfig holds FIRST Events API credentials for event enrichment.
type FirstConfig struct {
	Username string `yaml:"username" mapstructure:"username"`
	AuthKey  string `yaml:"auth_key" mapstructure:"auth_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// GeocodeConfig holds the geocoding provider credential and rate limit.
type GeocodeConfig struct {
	GoogleKey string  `yaml:"google_key" mapstructure:"google_key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ArchiveConfig configures the location archive directory.
type ArchiveConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OverridesConfig points at the manual override file.
type OverridesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures the GeoJSON output directory.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FRCMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("tba.base_url", "https://www.thebluealliance.com/api/v3")
	v.SetDefault("first.base_url", "https://frc-api.firstinspires.org/v3.0")
	v.SetDefault("geocode.rate_limit", 10.0)
	v.SetDefault("archive.dir", "archive")
	v.SetDefault("overrides.path", "overrides.yaml")
	v.SetDefault("output.dir", "dist")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
