package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const rollbackLockKey = "itops:migration_guard:rollback_lock"

// RollbackLease 基于 SetNX 的单持有者租约。
// 两个并发回滚同时作用于同一系统是未定义行为，租约保证全局只有一个在途回滚。
type RollbackLease struct {
	cache Cache
}

func NewRollbackLease(cache Cache) *RollbackLease {
	return &RollbackLease{cache: cache}
}

// TryAcquire 抢占租约，已被持有时返回 false
func (l *RollbackLease) TryAcquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	ok, err := l.cache.SetNX(ctx, rollbackLockKey, holder, ttl)
	if err != nil {
		return false, errors.Wrap(err, "抢占回滚租约失败")
	}
	return ok, nil
}

// Release 释放租约，只允许持有者本人释放
func (l *RollbackLease) Release(ctx context.Context, holder string) error {
	value, err := l.cache.Get(ctx, rollbackLockKey)
	if err != nil {
		// 租约已过期视为已释放
		return nil
	}
	if value != holder {
		return errors.Errorf("回滚租约被 %s 持有，%s 无权释放", value, holder)
	}
	return l.cache.Del(ctx, rollbackLockKey)
}
