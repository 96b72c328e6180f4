package cache

import (
	"sync"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewRollbackLock)

var (
	leaseOnce sync.Once
	lease     *RollbackLease
)

// NewRollbackLock 回滚互斥锁，底层为 redis 租约
func NewRollbackLock() core.RollbackLock {
	leaseOnce.Do(func() {
		conf := config.Get().Redis
		c, err := NewRedisCache(RedisConfig{
			Host:     conf.Host,
			Username: conf.Username,
			Password: conf.Password,
			DB:       conf.DB,
		})
		if err != nil {
			log.Errorf("init redis err:%s", err.Error())
			return
		}
		lease = NewRollbackLease(c)
	})
	return lease
}
