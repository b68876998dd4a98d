package config

import (
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
)

// Config holds all configuration for the application
type Config struct {
	Engine EngineConfig
	Redis  RedisConfig
}

// EngineConfig holds the property engine limits
type EngineConfig struct {
	MaxDepth   int
	Epsilon    float64
	RandomSeed uint64 // 0 seeds from the clock
}

// RedisConfig holds Redis-specific configuration. URL wins over Addr when
// both are set.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether any Redis endpoint was configured
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Addr != ""
}

// Options builds client options from the URL or the discrete fields
func (c RedisConfig) Options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, apperr.WrapWithCode(err, apperr.CodeValidation, "invalid REDIS_URL")
		}
		return opts, nil
	}

	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	maxDepth, err := getEnvAsInt("ATTR_MAX_DEPTH", 100)
	if err != nil {
		return nil, err
	}
	epsilon, err := getEnvAsFloat("ATTR_EPSILON", 1e-4)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvAsUint("ATTR_RANDOM_SEED", 0)
	if err != nil {
		return nil, err
	}
	db, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Engine: EngineConfig{
			MaxDepth:   maxDepth,
			Epsilon:    epsilon,
			RandomSeed: seed,
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		},
	}

	if cfg.Engine.MaxDepth <= 0 {
		return nil, apperr.Validationf("ATTR_MAX_DEPTH must be positive, got %d", cfg.Engine.MaxDepth)
	}
	if cfg.Engine.Epsilon < 0 {
		return nil, apperr.Validationf("ATTR_EPSILON cannot be negative, got %g", cfg.Engine.Epsilon)
	}

	return cfg, nil
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperr.WrapWithCode(err, apperr.CodeValidation, key+" must be an integer").
			WithMeta("value", value)
	}
	return n, nil
}

func getEnvAsUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, apperr.WrapWithCode(err, apperr.CodeValidation, key+" must be an unsigned integer").
			WithMeta("value", value)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, apperr.WrapWithCode(err, apperr.CodeValidation, key+" must be a number").
			WithMeta("value", value)
	}
	return f, nil
}
