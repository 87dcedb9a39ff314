package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/internal/logging"
	"github.com/sandrolain/goel/pkg/cache"
	"github.com/sandrolain/goel/pkg/ext"
	"github.com/sandrolain/goel/pkg/functions"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	config *Config
	logger *slog.Logger
	el     *goel.ExpressionLanguage
	redis  *redis.Client
}

// newApp builds the logger and the expression language from cfg.
func newApp(cfg *Config, stderr io.Writer) (*app, error) {
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(
		logging.WithFormat(format),
		logging.WithLevel(level),
		logging.WithOutput(stderr),
	)

	a := &app{config: cfg, logger: logger}

	providers := make([]functions.Provider, 0, len(cfg.Extensions))
	for _, name := range cfg.Extensions {
		p, err := ext.Lookup(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	opts := []goel.Option{
		goel.WithLogger(logger),
		goel.WithDebug(level <= slog.LevelDebug),
		goel.WithProviders(providers...),
		goel.WithCache(a.cache()),
	}
	if cfg.Parser.MaxDepth > 0 {
		opts = append(opts, goel.WithMaxDepth(cfg.Parser.MaxDepth))
	}
	if cfg.Eval.MaxDepth > 0 {
		opts = append(opts, goel.WithEvalMaxDepth(cfg.Eval.MaxDepth))
	}
	if cfg.Eval.Timeout > 0 {
		opts = append(opts, goel.WithTimeout(cfg.Eval.Timeout))
	}
	// a negative length disables the limit
	switch {
	case cfg.MaxExpressionLength > 0:
		opts = append(opts, goel.WithMaxExpressionLength(cfg.MaxExpressionLength))
	case cfg.MaxExpressionLength < 0:
		opts = append(opts, goel.WithMaxExpressionLength(0))
	}

	el, err := goel.New(opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.el = el
	return a, nil
}

// cache returns the in-process LRU, fronting Redis when an address is set.
func (a *app) cache() cache.ParserCache {
	lru := cache.New(a.config.Cache.Size)
	rc := a.config.Cache.Redis
	if rc.Addr == "" {
		return lru
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	a.logger.Debug("using redis expression cache", "addr", rc.Addr, "prefix", rc.Prefix)

	shared := cache.NewRedisCache(a.redis,
		cache.WithPrefix(rc.Prefix),
		cache.WithTTL(rc.TTL),
		cache.WithLogger(a.logger),
	)
	return cache.Tiered(lru, shared)
}

// Close releases the Redis connection, if any.
func (a *app) Close() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}

// loadValues merges the variables of a YAML file with key=value
// assignments. Assigned values are decoded as YAML scalars or documents,
// so "n=3" binds an int and "s='3'" a string.
func loadValues(path string, assignments []string) (map[string]any, error) {
	values := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read variables: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to decode variables %s: %w", path, err)
		}
		if values == nil {
			values = map[string]any{}
		}
	}

	for _, assignment := range assignments {
		name, raw, ok := strings.Cut(assignment, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", assignment)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

// errNoExpression is returned when an expression argument is blank.
var errNoExpression = errors.New("expression must not be empty")
