package repository

import (
	"context"
	"fmt"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/validate"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"github.com/pkg/errors"
)

type opsRepo struct {
	core.Repo
}

// KillIdleConnections 清理空闲超过 idleSeconds 的连接，返回清理数量。
// 单个连接清理失败不中断，可能恰好已自行断开
func (repo *opsRepo) KillIdleConnections(ctx context.Context, idleSeconds int64) (int64, core.RepoError) {
	rows, err := repo.DB.QueryContext(ctx,
		"SELECT id FROM information_schema.processlist WHERE command = 'Sleep' AND time > ? AND id <> CONNECTION_ID()",
		idleSeconds)
	if err != nil {
		log.Errorf("Failed to query idle connections: %v", err)
		return 0, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Errorf("Failed to scan process id: %v", err)
			return 0, dependency.NewRepoExecuteSqlError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, dependency.NewRepoExecuteSqlError(err)
	}

	var killed int64
	for _, id := range ids {
		if _, err := repo.DB.ExecContext(ctx, fmt.Sprintf("KILL %d", id)); err != nil {
			log.Warnf("kill connection %d failed: %v", id, err)
			continue
		}
		killed++
	}
	return killed, nil
}

// ReclaimStorage 回收表存储空间
func (repo *opsRepo) ReclaimStorage(ctx context.Context, tables []string) core.RepoError {
	return repo.perTable(ctx, tables, "OPTIMIZE TABLE %s")
}

// RebuildStatistics 重建统计信息
func (repo *opsRepo) RebuildStatistics(ctx context.Context, tables []string) core.RepoError {
	return repo.perTable(ctx, tables, "ANALYZE TABLE %s")
}

// DropTempTables 清理指定前缀的临时表，返回清理数量
func (repo *opsRepo) DropTempTables(ctx context.Context, prefix string) (int64, core.RepoError) {
	if !validate.IsIdentifier(prefix) {
		return 0, dependency.NewRepoInternalError(errors.Errorf("非法表前缀: %s", prefix))
	}
	rows, err := repo.DB.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name LIKE CONCAT(?, '%')",
		prefix)
	if err != nil {
		log.Errorf("Failed to query temp tables: %v", err)
		return 0, dependency.NewRepoExecuteSqlError(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Errorf("Failed to scan table name: %v", err)
			return 0, dependency.NewRepoExecuteSqlError(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return 0, dependency.NewRepoExecuteSqlError(err)
	}

	var dropped int64
	for _, name := range names {
		if !validate.IsIdentifier(name) {
			continue
		}
		if _, err := repo.DB.ExecContext(ctx, fmt.Sprintf("DROP TABLE `%s`", name)); err != nil {
			log.Errorf("Failed to drop temp table %s: %v", name, err)
			return dropped, dependency.NewRepoExecuteSqlError(err)
		}
		dropped++
	}
	return dropped, nil
}

func (repo *opsRepo) perTable(ctx context.Context, tables []string, stmt string) core.RepoError {
	for _, table := range tables {
		if !validate.IsIdentifier(table) {
			return dependency.NewRepoInternalError(errors.Errorf("非法表名: %s", table))
		}
		if _, err := repo.DB.ExecContext(ctx, fmt.Sprintf(stmt, "`"+table+"`")); err != nil {
			log.Errorf("Failed to run %q on %s: %v", stmt, table, err)
			return dependency.NewRepoExecuteSqlError(err)
		}
	}
	return nil
}
