package repository

import (
	"context"
	"database/sql"
	"strconv"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
)

// 迁移相关语句的持锁判定时长（秒）
const blockingOpSeconds = 300

type dbStatsReader struct {
	core.Repo
	StorageCapacityMB float64
}

// ReadSystem 读取被监控库的实时健康读数。
// 连接与最长操作读数失败整体失败，其余读数失败留零值
func (repo *dbStatsReader) ReadSystem(ctx context.Context) (*dependency.SystemStats, core.RepoError) {
	stats := &dependency.SystemStats{}

	status, repoErr := repo.globalStatus(ctx,
		"Threads_connected", "Threads_running",
		"Innodb_buffer_pool_read_requests", "Innodb_buffer_pool_reads",
		"Innodb_row_lock_waits")
	if repoErr != nil {
		return nil, repoErr
	}
	connected := status["Threads_connected"]
	running := status["Threads_running"]
	stats.ActiveConnections = int64(running)
	stats.IdleConnections = int64(connected - running)
	if stats.IdleConnections < 0 {
		stats.IdleConnections = 0
	}
	stats.LockWaits = int64(status["Innodb_row_lock_waits"])
	if requests := status["Innodb_buffer_pool_read_requests"]; requests > 0 {
		misses := status["Innodb_buffer_pool_reads"]
		stats.CacheHitRatio = (1 - misses/requests) * 100
	}

	var maxConn string
	if err := repo.DB.QueryRowContext(ctx, "SELECT @@max_connections").Scan(&maxConn); err != nil {
		log.Errorf("Failed to read max_connections: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	stats.MaxConnections, _ = strconv.ParseInt(maxConn, 10, 64)

	// 最长非空闲操作
	var longest sql.NullFloat64
	var info sql.NullString
	err := repo.DB.QueryRowContext(ctx,
		"SELECT time, info FROM information_schema.processlist WHERE command <> 'Sleep' AND id <> CONNECTION_ID() ORDER BY time DESC LIMIT 1").
		Scan(&longest, &info)
	if err != nil && err != sql.ErrNoRows {
		log.Errorf("Failed to read longest operation: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	stats.LongestOperationSecs = longest.Float64
	stats.LongestOperationInfo = truncateInfo(info.String)

	// 迁移类语句长时间运行视为持锁风险
	if err := repo.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.processlist WHERE command <> 'Sleep' AND time > ? "+
			"AND (UPPER(info) LIKE 'ALTER%' OR UPPER(info) LIKE 'CREATE INDEX%' OR UPPER(info) LIKE 'RENAME%' OR UPPER(state) LIKE '%LOCK%')",
		blockingOpSeconds).Scan(&stats.BlockingMigrationOps); err != nil {
		log.Warnf("read blocking migration ops failed: %v", err)
	}

	// 死锁计数来自 INNODB_METRICS，部分发行版未开放该表
	var deadlocks sql.NullInt64
	if err := repo.DB.QueryRowContext(ctx,
		"SELECT COUNT FROM information_schema.INNODB_METRICS WHERE NAME = 'lock_deadlocks'").
		Scan(&deadlocks); err != nil {
		log.Warnf("read deadlock counter failed: %v", err)
	}
	stats.Deadlocks = deadlocks.Int64

	var usedMB, tempMB sql.NullFloat64
	if err := repo.DB.QueryRowContext(ctx,
		"SELECT SUM(data_length + index_length) / 1048576, "+
			"SUM(CASE WHEN table_name LIKE 'tmp\\_%' THEN data_length + index_length ELSE 0 END) / 1048576 "+
			"FROM information_schema.tables WHERE table_schema = DATABASE()").
		Scan(&usedMB, &tempMB); err != nil {
		log.Warnf("read storage usage failed: %v", err)
	}
	if repo.StorageCapacityMB > 0 {
		stats.StorageUsedPercent = usedMB.Float64 / repo.StorageCapacityMB * 100
	}
	stats.TempResourceMB = tempMB.Float64

	return stats, nil
}

// ReadEntities 当前库所有表的足迹，带 IO 读写计数
func (repo *dbStatsReader) ReadEntities(ctx context.Context) ([]*entity.EntityMetric, core.RepoError) {
	rows, err := repo.DB.QueryContext(ctx,
		"SELECT t.table_name, IFNULL(t.table_rows, 0), IFNULL(t.data_length, 0) / 1048576, IFNULL(t.index_length, 0) / 1048576, "+
			"IFNULL(io.count_read, 0), IFNULL(io.count_write, 0) "+
			"FROM information_schema.tables t "+
			"LEFT JOIN performance_schema.table_io_waits_summary_by_table io "+
			"ON io.object_schema = t.table_schema AND io.object_name = t.table_name "+
			"WHERE t.table_schema = DATABASE() AND t.table_type = 'BASE TABLE'")
	if err != nil {
		log.Errorf("Failed to query entity metrics: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var metrics []*entity.EntityMetric
	for rows.Next() {
		var m entity.EntityMetric
		if err := rows.Scan(&m.TableName, &m.RowCount, &m.DataMB, &m.IndexMB,
			&m.ReadCount, &m.WriteCount); err != nil {
			log.Errorf("Failed to scan entity metric row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		metrics = append(metrics, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return metrics, nil
}

// ReadHotOperations 按平均耗时取 TopN 高频语句摘要，timer 单位皮秒
func (repo *dbStatsReader) ReadHotOperations(ctx context.Context, minCalls, topN int) ([]*entity.HotOperation, core.RepoError) {
	rows, err := repo.DB.QueryContext(ctx,
		"SELECT IFNULL(digest, ''), IFNULL(digest_text, ''), count_star, "+
			"avg_timer_wait / 1000000000, sum_timer_wait / 1000000000, sum_rows_examined "+
			"FROM performance_schema.events_statements_summary_by_digest "+
			"WHERE schema_name = DATABASE() AND count_star >= ? "+
			"ORDER BY avg_timer_wait DESC LIMIT ?",
		minCalls, topN)
	if err != nil {
		log.Errorf("Failed to query hot operations: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var ops []*entity.HotOperation
	for rows.Next() {
		var op entity.HotOperation
		if err := rows.Scan(&op.Digest, &op.QuerySample, &op.CallCount,
			&op.MeanLatencyMS, &op.TotalLatencyMS, &op.RowsExamined); err != nil {
			log.Errorf("Failed to scan hot operation row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		op.QuerySample = truncateInfo(op.QuerySample)
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return ops, nil
}

func (repo *dbStatsReader) globalStatus(ctx context.Context, names ...string) (map[string]float64, core.RepoError) {
	placeholders := ""
	args := make([]interface{}, 0, len(names))
	for i, name := range names {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, name)
	}
	rows, err := repo.DB.QueryContext(ctx,
		"SELECT variable_name, variable_value FROM performance_schema.global_status WHERE variable_name IN ("+placeholders+")",
		args...)
	if err != nil {
		log.Errorf("Failed to query global status: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	status := make(map[string]float64, len(names))
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		status[name], _ = strconv.ParseFloat(value, 64)
	}
	if err := rows.Err(); err != nil {
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return status, nil
}

func truncateInfo(s string) string {
	const maxLen = 512
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
