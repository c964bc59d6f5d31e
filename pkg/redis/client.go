package redis

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
)

type Config struct {
	Addr     string // host:6379
	Password string
	DB       int
}

func options(cfg Config) (*goredis.Options, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR configuration is required")
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis DB index must not be negative, got %d", cfg.DB)
	}
	return &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}, nil
}

// NewClient создает клиент и проверяет соединение командой PING.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
