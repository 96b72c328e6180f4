package repository

import (
	"context"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"github.com/Masterminds/squirrel"
)

type auditRepo struct {
	core.Repo
	TableName string
}

// Append 追加一条审计记录，无更新无删除
func (repo *auditRepo) Append(ctx context.Context, rec *entity.AuditRecord) core.RepoError {
	query := squirrel.Insert(repo.TableName).
		Columns("f_id", "f_action", "f_entity_type", "f_details", "f_created_at").
		Values(rec.ID, rec.Action, rec.EntityType, rec.Details, rec.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Errorf("Failed to build SQL for append audit: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	_, err = repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to append audit: %v", err)
		return dependency.NewRepoExecuteSqlError(err)
	}
	return nil
}
