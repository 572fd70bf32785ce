package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// redisOptions 由配置构造连接池参数, 未配置的超时沿用 go-redis 默认值
func redisOptions(cfg *config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
		opts.WriteTimeout = cfg.ReadTimeout
	}
	return opts
}

// NewRedisConnection 创建 redis 连接池并探活, 失败时调用方退回进程内缓存
func NewRedisConnection(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(redisOptions(cfg))

	timeout := 5 * time.Second
	if cfg.DialTimeout > 0 {
		timeout = cfg.DialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("NewRedisConnection Error: ", errors.New("redis ping failed"), "addr: ", client.Options().Addr, "error: ", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("NewRedisConnection: ", "addr: ", client.Options().Addr, "db: ", cfg.DB, "pool_size: ", client.Options().PoolSize, "key_prefix: ", cfg.KeyPrefix)
	return client, nil
}
