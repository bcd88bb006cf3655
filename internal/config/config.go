package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultStatusFile is where cache enabled flags are persisted when the
// config does not say otherwise.
const DefaultStatusFile = "cache-status.yaml"

type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	SentryDSN string `mapstructure:"sentry_dsn"`
	Server    struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Portal struct {
		TemplatesGlob string `mapstructure:"templates_glob"` // Page template files, e.g. "templates/*.gohtml"
	} `mapstructure:"portal"`
	Cache struct {
		Provider      string `mapstructure:"provider"`       // "memory" or "redis"
		Size          int    `mapstructure:"size"`           // Maximum number of entries per named cache
		TTL           string `mapstructure:"ttl"`            // Go duration string like "1h", "24h", etc.
		StatusFile    string `mapstructure:"status_file"`    // Persisted enable flags
		RedisAddress  string `mapstructure:"redis_address"`  // e.g. "localhost:6379"
		RedisPassword string `mapstructure:"redis_password"` //
		RedisDB       int    `mapstructure:"redis_db"`       //
	} `mapstructure:"cache"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	// Set the global log level
	zerolog.SetGlobalLevel(level)

	// Update logger with the configured level
	logger = logger.Level(level)

	globalConfig = config
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.address", "localhost")
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("portal.templates_glob", "templates/*.gohtml")
	viper.SetDefault("cache.provider", "memory")
	viper.SetDefault("cache.size", 1000)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.status_file", DefaultStatusFile)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
