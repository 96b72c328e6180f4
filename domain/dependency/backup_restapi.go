package dependency

import (
	"context"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
)

// ValidationResult 回滚点校验结果
type ValidationResult struct {
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// RollbackExecution 回滚执行结果
type RollbackExecution struct {
	Status          string  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// BackupServiceClient 备份服务客户端。
// 本服务只消费备份登记状态并触发回滚，备份的产生与校验在备份服务内完成。
type BackupServiceClient interface {
	// LatestVerifiedBackup 最近一个已完成且已校验的备份，未找到返回 nil
	LatestVerifiedBackup(ctx context.Context) (*entity.BackupRegistryEntry, error)
	Validate(ctx context.Context, backupName string) (*ValidationResult, error)
	Execute(ctx context.Context, backupName, reason string, force bool) (*RollbackExecution, error)
}
