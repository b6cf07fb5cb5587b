package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
)

// RedisProvider 把文档保存为 redis 中的字符串键，文档不设置过期时间
type RedisProvider struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewRedisProvider(cfg *config.Config, rdb *redis.Client) *RedisProvider {
	return &RedisProvider{
		cfg: cfg,
		rdb: rdb,
	}
}

func (p *RedisProvider) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(p.cfg.Storage.OperationTimeout)*time.Second)
}

func (p *RedisProvider) Get(key string) (string, error) {
	ctx, cancel := p.operationContext()
	defer cancel()

	value, err := p.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", err
	}

	return value, nil
}

func (p *RedisProvider) Set(key string, value string) error {
	ctx, cancel := p.operationContext()
	defer cancel()

	return p.rdb.Set(ctx, key, value, 0).Err()
}

func (p *RedisProvider) Remove(key string) error {
	ctx, cancel := p.operationContext()
	defer cancel()

	return p.rdb.Del(ctx, key).Err()
}
