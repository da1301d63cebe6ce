// Package cache 缓存层抽象接口
//
// 为侧边栏聚合等开销较大的查询提供带 TTL 的缓存能力。
// 接口通过依赖注入传入 handler，键名确定性（见 keys.go），
// 当前实现：内存（memory.go）、Redis（redis/）、空操作（noop.go）。
package cache

import (
	"context"
	"time"
)

// Cache 缓存接口
//
// 值以 JSON 编码存取，GetJSON 返回 (false, nil) 表示未命中。
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
