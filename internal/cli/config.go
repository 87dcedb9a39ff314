package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the command-line configuration.
//
// Values come from, in increasing precedence: defaults, the YAML file
// named by --config, GOEL_* environment variables and flags.
type Config struct {
	Log                 LogConfig    `mapstructure:"log"`
	Cache               CacheConfig  `mapstructure:"cache"`
	Parser              ParserConfig `mapstructure:"parser"`
	Eval                EvalConfig   `mapstructure:"eval"`
	MaxExpressionLength int          `mapstructure:"max_expression_length"`
	Extensions          []string     `mapstructure:"extensions"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// CacheConfig configures the expression cache. A non-empty Redis.Addr puts
// a shared Redis tier behind the in-process LRU.
type CacheConfig struct {
	Size  int         `mapstructure:"size"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the shared expression cache tier.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ParserConfig configures parsing.
type ParserConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// EvalConfig configures evaluation.
type EvalConfig struct {
	MaxDepth int           `mapstructure:"max_depth"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// newViper returns a viper instance with defaults and environment binding.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GOEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.size", 0)
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "goel:expr:")
	v.SetDefault("cache.redis.ttl", time.Hour)
	v.SetDefault("parser.max_depth", 0)
	v.SetDefault("eval.max_depth", 0)
	v.SetDefault("eval.timeout", time.Duration(0))
	v.SetDefault("max_expression_length", 0)
	v.SetDefault("extensions", []string{})
	return v
}

// LoadConfig reads the optional configuration file and decodes the
// merged settings.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
