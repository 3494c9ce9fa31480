package main

import (
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/davidvanstory/flowgenius"
	"github.com/davidvanstory/flowgenius/internal/config"
	"github.com/davidvanstory/flowgenius/internal/logging"
	redisAdapter "github.com/davidvanstory/flowgenius/pkg/adapters/redis"
)

// newEngine wires an engine from the process config: store backend,
// stage defaults, logger, debug mode.
func newEngine(cfg *config.Config, logger *slog.Logger, opts ...flowgenius.Option) (*flowgenius.Engine, error) {
	defaults, err := config.LoadStageDefaults(cfg.StageDefaultsFile)
	if err != nil {
		return nil, err
	}

	base := []flowgenius.Option{
		flowgenius.WithLogger(logger),
		flowgenius.WithDebug(cfg.Debug),
		flowgenius.WithStageDefaults(defaults.Prompts, defaults.Models),
	}

	switch cfg.StorageBackend {
	case "memory":
		// Default in-memory store.
	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		base = append(base,
			flowgenius.WithStore(redisAdapter.NewFromClient(client)),
			flowgenius.WithLocker(redisAdapter.NewLocker(client, "flowgenius:")),
		)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	return flowgenius.New(append(base, opts...)...)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.LogLevel))
}
