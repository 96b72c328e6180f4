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
)

type violationRepo struct {
	core.Repo
	TableName string
}

// Create 落一条违规记录
func (repo *violationRepo) Create(ctx context.Context, v *entity.IntegrityViolation) core.RepoError {
	query := squirrel.Insert(repo.TableName).
		Columns("f_id", "f_check_name", "f_violation_count", "f_details", "f_severity",
			"f_auto_fix_attempted", "f_auto_fix_succeeded", "f_auto_fix_error", "f_detected_at").
		Values(v.ID, v.CheckName, v.ViolationCount, v.Details, v.Severity,
			v.AutoFixAttempted, v.AutoFixSucceeded, v.AutoFixError, v.DetectedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create violation: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert violation: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// UpdateAutoFix 回写自动修复结果
func (repo *violationRepo) UpdateAutoFix(ctx context.Context, id uint64, attempted, succeeded bool, fixErr string) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{
			"f_auto_fix_attempted": attempted,
			"f_auto_fix_succeeded": succeeded,
			"f_auto_fix_error":     fixErr,
		}).
		Where("f_id = ?", id)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update auto fix: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update auto fix: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// ListSince 时间窗内的违规记录，时间倒序
func (repo *violationRepo) ListSince(ctx context.Context, since time.Time) ([]*entity.IntegrityViolation, core.RepoError) {
	query := squirrel.Select("f_id", "f_check_name", "f_violation_count", "f_details", "f_severity",
		"f_auto_fix_attempted", "f_auto_fix_succeeded", "f_auto_fix_error",
		"f_detected_at", "f_resolved_at", "f_resolved_by").
		From(repo.TableName).
		Where("f_detected_at >= ?", since).
		OrderBy("f_detected_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list violations: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query violations: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var violations []*entity.IntegrityViolation
	for rows.Next() {
		var v entity.IntegrityViolation
		var resolvedAt sql.NullTime
		var resolvedBy sql.NullString
		err := rows.Scan(&v.ID, &v.CheckName, &v.ViolationCount, &v.Details, &v.Severity,
			&v.AutoFixAttempted, &v.AutoFixSucceeded, &v.AutoFixError,
			&v.DetectedAt, &resolvedAt, &resolvedBy)
		if err != nil {
			log.Errorf("Failed to scan violation row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		if resolvedAt.Valid {
			v.ResolvedAt = &resolvedAt.Time
		}
		v.ResolvedBy = resolvedBy.String
		violations = append(violations, &v)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return violations, nil
}
