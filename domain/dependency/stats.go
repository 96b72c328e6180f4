package dependency

import (
	"context"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
)

// SystemStats 被监控库的实时健康读数
type SystemStats struct {
	ActiveConnections    int64
	IdleConnections      int64
	MaxConnections       int64
	LongestOperationSecs float64
	LongestOperationInfo string // 最长操作的语句摘要
	BlockingMigrationOps int64  // 与迁移相关且长时间持锁的操作数
	CacheHitRatio        float64
	LockWaits            int64
	Deadlocks            int64
	StorageUsedPercent   float64
	TempResourceMB       float64
}

// StatsReader 读取被监控库的实时状态，只读
type StatsReader interface {
	ReadSystem(ctx context.Context) (*SystemStats, core.RepoError)
	ReadEntities(ctx context.Context) ([]*entity.EntityMetric, core.RepoError)
	ReadHotOperations(ctx context.Context, minCalls, topN int) ([]*entity.HotOperation, core.RepoError)
}

// ProbeRepo 完整性检查的参数化查询，标识符经校验后拼接，无运行时 SQL 字符串注入
type ProbeRepo interface {
	// 引用完整性：子表中外键指向不存在父行的行数
	CountOrphanRows(ctx context.Context, child, fkColumn, parent, pkColumn string) (int64, core.RepoError)
	// 约束：非空列中的 NULL 行数
	CountNullRows(ctx context.Context, table, column string) (int64, core.RepoError)
	// 业务规则：数值列中越界的行数
	CountOutOfRange(ctx context.Context, table, column string, min, max float64) (int64, core.RepoError)
	// 约束：唯一列中的重复值个数
	CountDuplicates(ctx context.Context, table, column string) (int64, core.RepoError)
	// 数据类型：无法转换为目标类型的行数
	CountInvalidCast(ctx context.Context, table, column, targetType string) (int64, core.RepoError)

	// 自动修复
	DeleteOrphanRows(ctx context.Context, child, fkColumn, parent, pkColumn string) (int64, core.RepoError)
	FillNullRows(ctx context.Context, table, column, defaultValue string) (int64, core.RepoError)
}

// OpsRepo 应急处置动作的数据库操作
type OpsRepo interface {
	// 清理空闲连接，返回清理数量
	KillIdleConnections(ctx context.Context, idleSeconds int64) (int64, core.RepoError)
	// 回收表存储空间
	ReclaimStorage(ctx context.Context, tables []string) core.RepoError
	// 重建统计信息
	RebuildStatistics(ctx context.Context, tables []string) core.RepoError
	// 清理临时表
	DropTempTables(ctx context.Context, prefix string) (int64, core.RepoError)
}
