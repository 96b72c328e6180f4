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

type sessionRepo struct {
	core.Repo
	TableName string
}

// Create 创建监控会话
func (repo *sessionRepo) Create(ctx context.Context, s *entity.MonitoringSession) core.RepoError {
	query := squirrel.Insert(repo.TableName).
		Columns("f_id", "f_phase", "f_config", "f_started_at", "f_last_heartbeat", "f_status",
			"f_checks_performed", "f_violations_found", "f_critical_violations").
		Values(s.ID, s.Phase, s.Config, s.StartedAt, s.LastHeartbeat, s.Status,
			s.ChecksPerformed, s.ViolationsFound, s.CriticalViolations)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create session: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert session: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// Get 按 ID 取会话
func (repo *sessionRepo) Get(ctx context.Context, id string) (*entity.MonitoringSession, core.RepoError) {
	query := squirrel.Select("f_id", "f_phase", "f_config", "f_started_at", "f_last_heartbeat",
		"f_status", "f_checks_performed", "f_violations_found", "f_critical_violations", "f_stopped_at").
		From(repo.TableName).
		Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for get session: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	var s entity.MonitoringSession
	var stoppedAt sql.NullTime
	err = row.Scan(&s.ID, &s.Phase, &s.Config, &s.StartedAt, &s.LastHeartbeat,
		&s.Status, &s.ChecksPerformed, &s.ViolationsFound, &s.CriticalViolations, &stoppedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan session row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	if stoppedAt.Valid {
		s.StoppedAt = &stoppedAt.Time
	}
	return &s, nil
}

// UpdateHeartbeat 心跳计数整体覆盖为上报快照
func (repo *sessionRepo) UpdateHeartbeat(ctx context.Context, id string, checks, violations, criticals int64, at time.Time) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{
			"f_checks_performed":    checks,
			"f_violations_found":    violations,
			"f_critical_violations": criticals,
			"f_last_heartbeat":      at,
		}).
		Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update heartbeat: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update heartbeat: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// UpdateStatus 更新会话状态
func (repo *sessionRepo) UpdateStatus(ctx context.Context, id string, status entity.SessionStatus, stoppedAt *time.Time) core.RepoError {
	set := map[string]interface{}{"f_status": status}
	if stoppedAt != nil {
		set["f_stopped_at"] = *stoppedAt
	}
	query := squirrel.Update(repo.TableName).SetMap(set).Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update session status: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update session status: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}
