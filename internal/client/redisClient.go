package client

import (
	"context"
	"fmt"
	"time"

	"zawawiya-store/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func InitRedisClient(cfg *config.Redis, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("redis connection established", zap.String("addr", cfg.Addr))
	return rdb, nil
}
