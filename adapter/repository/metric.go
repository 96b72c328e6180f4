package repository

import (
	"context"
	"database/sql"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

type metricRepo struct {
	core.Repo
	SampleTable string
	EntityTable string
	HotOpTable  string
}

var sampleColumns = []string{"f_id", "f_phase", "f_active_connections", "f_idle_connections",
	"f_max_connections", "f_longest_operation_secs", "f_cache_hit_ratio", "f_lock_waits",
	"f_deadlocks", "f_storage_used_percent", "f_temp_resource_mb", "f_collected_at"}

// InsertSample 追加一条系统快照
func (repo *metricRepo) InsertSample(ctx context.Context, s *entity.MetricSample) core.RepoError {
	query := squirrel.Insert(repo.SampleTable).
		Columns(sampleColumns...).
		Values(s.ID, s.Phase, s.ActiveConnections, s.IdleConnections,
			s.MaxConnections, s.LongestOperationSecs, s.CacheHitRatio, s.LockWaits,
			s.Deadlocks, s.StorageUsedPercent, s.TempResourceMB, s.CollectedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for insert sample: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert sample: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// InsertEntityMetrics 批量追加单表足迹
func (repo *metricRepo) InsertEntityMetrics(ctx context.Context, ms []*entity.EntityMetric) core.RepoError {
	if len(ms) == 0 {
		return nil
	}
	query := squirrel.Insert(repo.EntityTable).
		Columns("f_id", "f_phase", "f_table_name", "f_row_count", "f_data_mb",
			"f_index_mb", "f_read_count", "f_write_count", "f_collected_at")
	for _, m := range ms {
		query = query.Values(m.ID, m.Phase, m.TableName, m.RowCount, m.DataMB,
			m.IndexMB, m.ReadCount, m.WriteCount, m.CollectedAt)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for insert entity metrics: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert entity metrics: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// InsertHotOperations 批量追加热点操作
func (repo *metricRepo) InsertHotOperations(ctx context.Context, ops []*entity.HotOperation) core.RepoError {
	if len(ops) == 0 {
		return nil
	}
	query := squirrel.Insert(repo.HotOpTable).
		Columns("f_id", "f_phase", "f_digest", "f_query_sample", "f_call_count",
			"f_mean_latency_ms", "f_total_latency_ms", "f_rows_examined", "f_collected_at")
	for _, op := range ops {
		query = query.Values(op.ID, op.Phase, op.Digest, op.QuerySample, op.CallCount,
			op.MeanLatencyMS, op.TotalLatencyMS, op.RowsExamined, op.CollectedAt)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for insert hot operations: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert hot operations: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// LatestSample 最近一条系统快照
func (repo *metricRepo) LatestSample(ctx context.Context) (*entity.MetricSample, core.RepoError) {
	query := squirrel.Select(sampleColumns...).From(repo.SampleTable).
		OrderBy("f_collected_at DESC").Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for latest sample: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	var s entity.MetricSample
	err = row.Scan(&s.ID, &s.Phase, &s.ActiveConnections, &s.IdleConnections,
		&s.MaxConnections, &s.LongestOperationSecs, &s.CacheHitRatio, &s.LockWaits,
		&s.Deadlocks, &s.StorageUsedPercent, &s.TempResourceMB, &s.CollectedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan sample row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return &s, nil
}

// ListSamplesSince 时间窗内的系统快照，时间升序
func (repo *metricRepo) ListSamplesSince(ctx context.Context, since time.Time) ([]*entity.MetricSample, core.RepoError) {
	query := squirrel.Select(sampleColumns...).From(repo.SampleTable).
		Where("f_collected_at >= ?", since).
		OrderBy("f_collected_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list samples: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query samples: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var samples []*entity.MetricSample
	for rows.Next() {
		var s entity.MetricSample
		err := rows.Scan(&s.ID, &s.Phase, &s.ActiveConnections, &s.IdleConnections,
			&s.MaxConnections, &s.LongestOperationSecs, &s.CacheHitRatio, &s.LockWaits,
			&s.Deadlocks, &s.StorageUsedPercent, &s.TempResourceMB, &s.CollectedAt)
		if err != nil {
			log.Errorf("Failed to scan sample row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		samples = append(samples, &s)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return samples, nil
}
