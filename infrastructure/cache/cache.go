package cache

import (
	"context"
	"time"
)

// Cache 缓存接口,将来可以适配多种缓存
type Cache interface {
	// Get 获取缓存值
	Get(ctx context.Context, key string) (string, error)

	// SetNX 键不存在时设置，返回是否设置成功
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)

	// GetDel 读取并删除，值匹配校验由调用方完成
	GetDel(ctx context.Context, key string) (string, error)

	// Del 删除缓存键
	Del(ctx context.Context, keys ...string) error

	// Close 关闭缓存连接
	Close() error
}
