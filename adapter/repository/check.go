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

type checkRepo struct {
	core.Repo
	TableName string
}

var checkColumns = []string{"f_name", "f_type", "f_severity", "f_enabled", "f_auto_fix",
	"f_params", "f_interval_seconds", "f_last_run_at", "f_last_run_status",
	"f_last_violation_count", "f_create_time"}

// Create 创建检查定义
func (repo *checkRepo) Create(ctx context.Context, check *entity.IntegrityCheck) core.RepoError {
	params, err := sonic.Marshal(check.Params)
	if err != nil {
		log.Errorf("Failed to marshal check params: %v", err)
		return dependency.NewRepoInternalError(err)
	}
	query := squirrel.Insert(repo.TableName).
		Columns("f_name", "f_type", "f_severity", "f_enabled", "f_auto_fix",
			"f_params", "f_interval_seconds", "f_create_time").
		Values(check.Name, check.Type, check.Severity, check.Enabled, check.AutoFix,
			string(params), check.IntervalSeconds, check.CreateTime)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create check: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert check: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// GetByName 按名称取检查定义
func (repo *checkRepo) GetByName(ctx context.Context, name string) (*entity.IntegrityCheck, core.RepoError) {
	query := squirrel.Select(checkColumns...).From(repo.TableName).Where("f_name = ?", name)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for get check: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	check, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan check row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return check, nil
}

// ListEnabled 取全部启用的检查
func (repo *checkRepo) ListEnabled(ctx context.Context) ([]*entity.IntegrityCheck, core.RepoError) {
	query := squirrel.Select(checkColumns...).From(repo.TableName).
		Where("f_enabled = ?", true).OrderBy("f_name")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list checks: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query checks: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var checks []*entity.IntegrityCheck
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			log.Errorf("Failed to scan check row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return checks, nil
}

// UpdateLastRun 记录最近一次执行
func (repo *checkRepo) UpdateLastRun(ctx context.Context, name string, status entity.CheckRunStatus,
	violationCount int64, at time.Time) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{
			"f_last_run_at":          at,
			"f_last_run_status":      status,
			"f_last_violation_count": violationCount,
		}).
		Where("f_name = ?", name)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for update last run: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to update last run: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// SetEnabled 启停检查
func (repo *checkRepo) SetEnabled(ctx context.Context, name string, enabled bool) core.RepoError {
	query := squirrel.Update(repo.TableName).
		SetMap(map[string]interface{}{"f_enabled": enabled}).
		Where("f_name = ?", name)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for set enabled: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to set check enabled: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCheck(row rowScanner) (*entity.IntegrityCheck, error) {
	var check entity.IntegrityCheck
	var params string
	var lastRunAt sql.NullTime
	var lastRunStatus sql.NullString
	err := row.Scan(&check.Name, &check.Type, &check.Severity, &check.Enabled, &check.AutoFix,
		&params, &check.IntervalSeconds, &lastRunAt, &lastRunStatus,
		&check.LastViolationCount, &check.CreateTime)
	if err != nil {
		return nil, err
	}
	if params != "" {
		if err := sonic.UnmarshalString(params, &check.Params); err != nil {
			return nil, err
		}
	}
	if lastRunAt.Valid {
		check.LastRunAt = &lastRunAt.Time
	}
	if lastRunStatus.Valid {
		check.LastRunStatus = entity.CheckRunStatus(lastRunStatus.String)
	}
	return &check, nil
}
