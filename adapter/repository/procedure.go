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

type procedureRepo struct {
	core.Repo
	TableName string
}

var procedureColumns = []string{"f_name", "f_incident_type", "f_min_severity", "f_action",
	"f_params", "f_auto_execute", "f_budget_seconds", "f_compensation_action",
	"f_execution_count", "f_last_executed_at", "f_create_time"}

// Create 创建处置流程
func (repo *procedureRepo) Create(ctx context.Context, p *entity.EmergencyProcedure) core.RepoError {
	params, err := sonic.Marshal(p.Params)
	if err != nil {
		log.Errorf("Failed to marshal procedure params: %v", err)
		return dependency.NewRepoInternalError(err)
	}
	query := squirrel.Insert(repo.TableName).
		Columns("f_name", "f_incident_type", "f_min_severity", "f_action",
			"f_params", "f_auto_execute", "f_budget_seconds", "f_compensation_action", "f_create_time").
		Values(p.Name, p.IncidentType, p.MinSeverity, p.Action,
			string(params), p.AutoExecute, p.BudgetSeconds, p.CompensationAction, p.CreateTime)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for create procedure: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to insert procedure: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

// GetByName 按名称取处置流程
func (repo *procedureRepo) GetByName(ctx context.Context, name string) (*entity.EmergencyProcedure, core.RepoError) {
	query := squirrel.Select(procedureColumns...).From(repo.TableName).Where("f_name = ?", name)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for get procedure: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	row := repo.DB.QueryRowContext(ctx, sqlStr, args...)
	p, err := scanProcedure(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dependency.NewRepoNotFoundError(err)
		}
		log.Errorf("Failed to scan procedure row: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return p, nil
}

// ListByIncidentType 取某事件类型的全部处置流程
func (repo *procedureRepo) ListByIncidentType(ctx context.Context, incidentType string) ([]*entity.EmergencyProcedure, core.RepoError) {
	query := squirrel.Select(procedureColumns...).From(repo.TableName).
		Where("f_incident_type = ?", incidentType).OrderBy("f_name")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for list procedures: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	rows, err := repo.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to query procedures: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var procedures []*entity.EmergencyProcedure
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			log.Errorf("Failed to scan procedure row: %v", err)
			return nil, dependency.NewRepoExecuteSqlError(err)
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Rows iteration error: %v", err)
		return nil, dependency.NewRepoExecuteSqlError(err)
	}
	return procedures, nil
}

// RecordExecution 累加执行次数并记录时间
func (repo *procedureRepo) RecordExecution(ctx context.Context, name string, at time.Time) core.RepoError {
	query := squirrel.Update(repo.TableName).
		Set("f_execution_count", squirrel.Expr("f_execution_count + 1")).
		Set("f_last_executed_at", at).
		Where("f_name = ?", name)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for record execution: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to record execution: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}

func scanProcedure(row rowScanner) (*entity.EmergencyProcedure, error) {
	var p entity.EmergencyProcedure
	var params string
	var lastExecutedAt sql.NullTime
	err := row.Scan(&p.Name, &p.IncidentType, &p.MinSeverity, &p.Action,
		&params, &p.AutoExecute, &p.BudgetSeconds, &p.CompensationAction,
		&p.ExecutionCount, &lastExecutedAt, &p.CreateTime)
	if err != nil {
		return nil, err
	}
	if params != "" {
		if err := sonic.UnmarshalString(params, &p.Params); err != nil {
			return nil, err
		}
	}
	if lastExecutedAt.Valid {
		p.LastExecutedAt = &lastExecutedAt.Time
	}
	return &p, nil
}
