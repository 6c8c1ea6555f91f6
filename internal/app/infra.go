package app

import (
	"context"
	"fmt"

	"github.com/KevinAcruz/acru/internal/config"
	"github.com/KevinAcruz/acru/internal/db"
	"github.com/KevinAcruz/acru/internal/logger"
	"github.com/KevinAcruz/acru/internal/redis"
)

type Infra struct {
	Redis *redis.Client
	DB    *db.DB // nil when snapshot archiving is disabled
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisURL, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("presence store: %w", err)
	}

	logger.Info("presence store ready", nil)

	infra := &Infra{Redis: redisClient}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("snapshot database: %w", err)
		}

		if err := db.RunKeystoneMigration(ctx, database.DB); err != nil {
			database.Close()
			return nil, fmt.Errorf("snapshot migration: %w", err)
		}

		logger.Info("snapshot database ready", nil)
		infra.DB = database
	}

	return infra, nil
}
