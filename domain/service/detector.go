package service

import (
	"context"
	"fmt"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
)

// 严重状况判定界限
const (
	connSaturationPercent  = 90.0
	longOperationSeconds   = 1800.0
	storageCriticalPercent = 90.0
	cacheHitFloorPercent   = 50.0
	lockWaitCeiling        = 100
)

//go:generate mockgen -source ./detector.go -destination ../../mock/service/mock_detector_service.go -package mock
type DetectorService interface {
	Detect(ctx context.Context) (vo.HealthVerdict, core.ServiceError)
}

type detectorService struct {
	stats dependency.StatsReader
}

// Detect 对实时读数逐条套用固定规则。
// 命中 0 条为 healthy，1~2 条为 degraded，超过 2 条为 critical。
// 纯读操作，可任意频率调用，不产生任何落库副作用
func (s *detectorService) Detect(ctx context.Context) (vo.HealthVerdict, core.ServiceError) {
	sys, repoErr := s.stats.ReadSystem(ctx)
	if repoErr != nil {
		log.Errorf("read system stats failed, err:%s", repoErr.Error())
		return vo.HealthVerdict{}, NewSvcInternalError(repoErr)
	}

	conditions := evaluateConditions(sys)
	verdict := vo.HealthVerdict{
		Status:     vo.VerdictHealthy,
		Conditions: conditions,
		CheckedAt:  time.Now(),
	}
	switch {
	case len(conditions) > 2:
		verdict.Status = vo.VerdictCritical
	case len(conditions) > 0:
		verdict.Status = vo.VerdictDegraded
	}
	return verdict, nil
}

func evaluateConditions(sys *dependency.SystemStats) []vo.CriticalCondition {
	conditions := make([]vo.CriticalCondition, 0)

	if sys.MaxConnections > 0 {
		usage := float64(sys.ActiveConnections+sys.IdleConnections) / float64(sys.MaxConnections) * 100
		if usage >= connSaturationPercent {
			conditions = append(conditions, vo.CriticalCondition{
				Name:     "connection_saturation",
				Severity: string(entity.SeverityCritical),
				Detail:   fmt.Sprintf("连接占用 %.1f%%（%d/%d）", usage, sys.ActiveConnections+sys.IdleConnections, sys.MaxConnections),
			})
		}
	}
	if sys.LongestOperationSecs > longOperationSeconds {
		detail := fmt.Sprintf("最长操作已运行 %.0f 秒", sys.LongestOperationSecs)
		if sys.LongestOperationInfo != "" {
			detail = fmt.Sprintf("%s: %s", detail, sys.LongestOperationInfo)
		}
		conditions = append(conditions, vo.CriticalCondition{
			Name:     "long_running_operation",
			Severity: string(entity.SeverityError),
			Detail:   detail,
		})
	}
	if sys.BlockingMigrationOps > 0 {
		conditions = append(conditions, vo.CriticalCondition{
			Name:     "blocking_migration_operation",
			Severity: string(entity.SeverityCritical),
			Detail:   fmt.Sprintf("%d 个迁移相关操作长时间持锁", sys.BlockingMigrationOps),
		})
	}
	if sys.Deadlocks > 0 {
		conditions = append(conditions, vo.CriticalCondition{
			Name:     "deadlock_detected",
			Severity: string(entity.SeverityCritical),
			Detail:   fmt.Sprintf("检测到 %d 次死锁", sys.Deadlocks),
		})
	}
	if sys.StorageUsedPercent >= storageCriticalPercent {
		conditions = append(conditions, vo.CriticalCondition{
			Name:     "storage_exhaustion",
			Severity: string(entity.SeverityCritical),
			Detail:   fmt.Sprintf("存储使用率 %.1f%%", sys.StorageUsedPercent),
		})
	}
	if sys.CacheHitRatio > 0 && sys.CacheHitRatio < cacheHitFloorPercent {
		conditions = append(conditions, vo.CriticalCondition{
			Name:     "cache_hit_degraded",
			Severity: string(entity.SeverityWarning),
			Detail:   fmt.Sprintf("缓存命中率 %.1f%%", sys.CacheHitRatio),
		})
	}
	if sys.LockWaits > lockWaitCeiling {
		conditions = append(conditions, vo.CriticalCondition{
			Name:     "lock_wait_surge",
			Severity: string(entity.SeverityError),
			Detail:   fmt.Sprintf("锁等待 %d 次", sys.LockWaits),
		})
	}
	return conditions
}
