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

type alertRepo struct {
	core.Repo
	TableName string
}

var alertColumns = []string{"f_id", "f_metric_name", "f_observed_value", "f_bound_value",
	"f_severity", "f_message", "f_auto_action_run", "f_auto_action_ok", "f_auto_action_error",
	"f_state", "f_created_at", "f_acknowledged_at", "f_resolved_at"}

// Create 落一条告警
func (repo *alertRepo) Create(ctx context.Context, a *entity.Alert) core.RepoError {
	query := squirrel.Insert(repo.TableName).
		Columns("f_id", "f_metric_name", "f_observed_value", "f_bound_value",
			"f_severity", "f_message", "f_state", "f_created_at").
		Values(a.ID, a.MetricName, a.ObservedValue, a.BoundValue,
			a.Severity, a.Message, a.State, a.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create alert: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert alert: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// Get 按 ID 取告警
func (repo *alertRepo) Get(ctx context.Context, id uint64) (*entity.Alert, core.RepoError) {
	query := squirrel.Select(alertColumns...).From(repo.TableName).Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for get alert: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan alert row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return a, nil
}

// UpdateState 推进告警状态并记录时间
func (repo *alertRepo) UpdateState(ctx context.Context, id uint64, state entity.AlertState, at time.Time) core.RepoError {
	set := map[string]interface{}{"f_state": state}
	switch state {
	case entity.AlertStateAcknowledged:
		set["f_acknowledged_at"] = at
	case entity.AlertStateResolved:
		set["f_resolved_at"] = at
	}
	query := squirrel.Update(repo.TableName).SetMap(set).Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update alert state: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update alert state: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// UpdateAutoAction 回写自动动作结果
func (repo *alertRepo) UpdateAutoAction(ctx context.Context, id uint64, ok bool, actionErr string) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{
			"f_auto_action_run":   true,
			"f_auto_action_ok":    ok,
			"f_auto_action_error": actionErr,
		}).
		Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update auto action: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update auto action: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// ListSince 时间窗内的告警，时间倒序
func (repo *alertRepo) ListSince(ctx context.Context, since time.Time) ([]*entity.Alert, core.RepoError) {
	query := squirrel.Select(alertColumns...).From(repo.TableName).
		Where("f_created_at >= ?", since).
		OrderBy("f_created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list alerts: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query alerts: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var alerts []*entity.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			log.Errorf("Failed to scan alert row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return alerts, nil
}

func scanAlert(row rowScanner) (*entity.Alert, error) {
	var a entity.Alert
	var acknowledgedAt, resolvedAt sql.NullTime
	err := row.Scan(&a.ID, &a.MetricName, &a.ObservedValue, &a.BoundValue,
		&a.Severity, &a.Message, &a.AutoActionRun, &a.AutoActionOK, &a.AutoActionError,
		&a.State, &a.CreatedAt, &acknowledgedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if acknowledgedAt.Valid {
		a.AcknowledgedAt = &acknowledgedAt.Time
	}
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return &a, nil
}
