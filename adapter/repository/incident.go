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
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type incidentRepo struct {
	core.Repo
	TableName string
}

var incidentColumns = []string{"f_id", "f_type", "f_severity", "f_description", "f_source",
	"f_actions", "f_state", "f_detected_at", "f_resolved_at", "f_duration_seconds",
	"f_resolved_by", "f_backup_used"}

// Create 落一条事件
func (repo *incidentRepo) Create(ctx context.Context, inc *entity.Incident) core.RepoError {
	query := squirrel.Insert(repo.TableName).
		Columns("f_id", "f_type", "f_severity", "f_description", "f_source",
			"f_actions", "f_state", "f_detected_at").
		Values(inc.ID, inc.Type, inc.Severity, inc.Description, inc.Source,
			"[]", inc.State, inc.DetectedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create incident: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert incident: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// Get 按 ID 取事件
func (repo *incidentRepo) Get(ctx context.Context, id uint64) (*entity.Incident, core.RepoError) {
	query := squirrel.Select(incidentColumns...).From(repo.TableName).Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for get incident: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan incident row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return inc, nil
}

// UpdateState 推进事件状态
func (repo *incidentRepo) UpdateState(ctx context.Context, id uint64, state entity.IncidentState) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{"f_state": state}).
		Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update incident state: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update incident state: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// Finalize 收尾回写处置过程与耗时
func (repo *incidentRepo) Finalize(ctx context.Context, inc *entity.Incident) core.RepoError {
	actions, err := sonic.Marshal(inc.Actions)
	if err != nil {
		log.Errorf("Failed to marshal incident actions: %v", err)
		return dependency.NewRepoInternalError(err)
	}
	set := map[string]interface{}{
		"f_actions":          string(actions),
		"f_state":            inc.State,
		"f_duration_seconds": inc.DurationSeconds,
		"f_resolved_by":      inc.ResolvedBy,
		"f_backup_used":      inc.BackupUsed,
	}
	if inc.ResolvedAt != nil {
		set["f_resolved_at"] = *inc.ResolvedAt
	}
	query := squirrel.Update(repo.TableName).SetMap(set).Where("f_id = ?", inc.ID)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for finalize incident: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to finalize incident: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// ListSince 时间窗内的事件，时间倒序
func (repo *incidentRepo) ListSince(ctx context.Context, since time.Time) ([]*entity.Incident, core.RepoError) {
	query := squirrel.Select(incidentColumns...).From(repo.TableName).
		Where("f_detected_at >= ?", since).
		OrderBy("f_detected_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list incidents: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query incidents: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var incidents []*entity.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			log.Errorf("Failed to scan incident row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return incidents, nil
}

func scanIncident(row rowScanner) (*entity.Incident, error) {
	var inc entity.Incident
	var actions string
	var resolvedAt sql.NullTime
	err := row.Scan(&inc.ID, &inc.Type, &inc.Severity, &inc.Description, &inc.Source,
		&actions, &inc.State, &inc.DetectedAt, &resolvedAt, &inc.DurationSeconds,
		&inc.ResolvedBy, &inc.BackupUsed)
	if err != nil {
		return nil, err
	}
	if actions != "" {
		if err := sonic.UnmarshalString(actions, &inc.Actions); err != nil {
			return nil, err
		}
	}
	if resolvedAt.Valid {
		inc.ResolvedAt = &resolvedAt.Time
	}
	return &inc, nil
}
