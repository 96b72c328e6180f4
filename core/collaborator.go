package core

import (
	"context"
	"time"
)

// EventProducer 审计事件外发
type EventProducer interface {
	PublishAudit(ctx context.Context, key string, value []byte) error
	Close() error
}

// RollbackLock 回滚互斥，全系统同一时刻只允许一次回滚
type RollbackLock interface {
	// TryAcquire 抢占租约，已被持有时返回 false
	TryAcquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, holder string) error
}
