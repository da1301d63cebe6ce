package cache

import (
	"context"
	"time"
)

// NoOpCache 不做任何操作的 Cache 实现（CACHE_TYPE=none，及测试）
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *NoOpCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
