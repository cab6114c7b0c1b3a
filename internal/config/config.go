package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	EnvPrefix = "BOLSILLO"

	DefaultAPIURL = "https://api.fakerbostero.online/bolsillo/api"
)

func DefaultConfig() *Config {

	v := viper.New()

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("error unmarshaling default config: %v", err)
	}

	return &config
}

// Load loads the configuration from the config file, .env and the
// environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	setupViperConfig(v, configFile)
	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := setupLogging(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}
	return nil
}

func setupViperConfig(v *viper.Viper, configFile string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "bolsillo"))
	}

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func bindEnvironmentVariables(v *viper.Viper) {

	// The web client's build variable is honoured so both share one .env
	v.BindEnv("api.url", "BOLSILLO_API_URL", "VITE_API_URL")
	v.BindEnv("api.timeout", "BOLSILLO_API_TIMEOUT")

	v.BindEnv("storage.driver", "BOLSILLO_STORAGE_DRIVER")
	v.BindEnv("storage.path", "BOLSILLO_STORAGE_PATH")
	v.BindEnv("storage.prefix", "BOLSILLO_STORAGE_PREFIX")

	v.BindEnv("cache.enabled", "BOLSILLO_CACHE_ENABLED")
	v.BindEnv("cache.driver", "BOLSILLO_CACHE_DRIVER")
	v.BindEnv("cache.ttl", "BOLSILLO_CACHE_TTL")

	v.BindEnv("redis.addr", "BOLSILLO_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("redis.password", "BOLSILLO_REDIS_PASSWORD")
	v.BindEnv("redis.db", "BOLSILLO_REDIS_DB")

	v.BindEnv("logging.level", "BOLSILLO_LOGGING_LEVEL")
	v.BindEnv("logging.format", "BOLSILLO_LOGGING_FORMAT")
}

func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment only
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.source = v.ConfigFileUsed()

	return &config, nil
}

func setupLogging(config *Config, v *viper.Viper) error {
	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	// Never write the redis password to the log
	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			if key == "redis" {
				continue
			}
			logrus.Debugf("Config '%s': %v\n", key, value)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", "10s")

	// Sessions are kept per API host under ~/.config/bolsillo
	v.SetDefault("storage.driver", StorageDriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.prefix", "bolsillo")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", CacheDriverMemory)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}
