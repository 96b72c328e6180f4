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

type thresholdRepo struct {
	core.Repo
	TableName string
}

var thresholdColumns = []string{"f_metric_name", "f_severity", "f_operator", "f_bound_value",
	"f_enabled", "f_cooldown_seconds", "f_last_alert_at", "f_auto_action",
	"f_message_template", "f_create_time"}

// Create 创建告警阈值
func (repo *thresholdRepo) Create(ctx context.Context, t *entity.AlertThreshold) core.RepoError {
	query := squirrel.Insert(repo.TableName).
		Columns("f_metric_name", "f_severity", "f_operator", "f_bound_value",
			"f_enabled", "f_cooldown_seconds", "f_auto_action", "f_message_template", "f_create_time").
		Values(t.MetricName, t.Severity, t.Operator, t.BoundValue,
			t.Enabled, t.CooldownSeconds, t.AutoAction, t.MessageTemplate, t.CreateTime)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create threshold: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert threshold: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// GetByMetric 按指标名取阈值
func (repo *thresholdRepo) GetByMetric(ctx context.Context, metric entity.MetricName) (*entity.AlertThreshold, core.RepoError) {
	query := squirrel.Select(thresholdColumns...).From(repo.TableName).
		Where("f_metric_name = ?", metric)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for get threshold: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	t, err := scanThreshold(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan threshold row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return t, nil
}

// ListEnabled 取全部启用的阈值
func (repo *thresholdRepo) ListEnabled(ctx context.Context) ([]*entity.AlertThreshold, core.RepoError) {
	query := squirrel.Select(thresholdColumns...).From(repo.TableName).
		Where("f_enabled = ?", true).OrderBy("f_metric_name")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list thresholds: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query thresholds: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var thresholds []*entity.AlertThreshold
	for rows.Next() {
		t, err := scanThreshold(rows)
		if err != nil {
			log.Errorf("Failed to scan threshold row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		thresholds = append(thresholds, t)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return thresholds, nil
}

// UpdateLastAlert 记录最近一次告警时间，冷却期从这里起算
func (repo *thresholdRepo) UpdateLastAlert(ctx context.Context, metric entity.MetricName, at time.Time) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{"f_last_alert_at": at}).
		Where("f_metric_name = ?", metric)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update last alert: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update last alert: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

func scanThreshold(row rowScanner) (*entity.AlertThreshold, error) {
	var t entity.AlertThreshold
	var lastAlertAt sql.NullTime
	err := row.Scan(&t.MetricName, &t.Severity, &t.Operator, &t.BoundValue,
		&t.Enabled, &t.CooldownSeconds, &lastAlertAt, &t.AutoAction,
		&t.MessageTemplate, &t.CreateTime)
	if err != nil {
		return nil, err
	}
	if lastAlertAt.Valid {
		t.LastAlertAt = &lastAlertAt.Time
	}
	return &t, nil
}
