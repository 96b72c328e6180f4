package repository

import (
	"context"
	"fmt"
	"strings"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/validate"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"github.com/pkg/errors"
)

type probeRepo struct {
	core.Repo
}

// 允许的类型转换目标
var castTargets = map[string]bool{
	"SIGNED":   true,
	"UNSIGNED": true,
	"DECIMAL":  true,
	"DATETIME": true,
	"DATE":     true,
	"TIME":     true,
	"CHAR":     true,
	"JSON":     true,
}

// quoteIdent 标识符校验后反引号包裹，值永远走占位符
func quoteIdent(names ...string) ([]string, error) {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		if !validate.IsIdentifier(name) {
			return nil, errors.Errorf("非法标识符: %s", name)
		}
		quoted = append(quoted, "`"+name+"`")
	}
	return quoted, nil
}

// CountOrphanRows 子表中外键指向不存在父行的行数
func (repo *probeRepo) CountOrphanRows(ctx context.Context, child, fkColumn, parent, pkColumn string) (int64, core.RepoError) {
	idents, err := quoteIdent(child, fkColumn, parent, pkColumn)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s c LEFT JOIN %s p ON c.%s = p.%s WHERE c.%s IS NOT NULL AND p.%s IS NULL",
		idents[0], idents[2], idents[1], idents[3], idents[1], idents[3])
	return repo.queryCount(ctx, sqlStr)
}

// CountNullRows 非空列中的 NULL 行数
func (repo *probeRepo) CountNullRows(ctx context.Context, table, column string) (int64, core.RepoError) {
	idents, err := quoteIdent(table, column)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", idents[0], idents[1])
	return repo.queryCount(ctx, sqlStr)
}

// CountOutOfRange 数值列中越界的行数
func (repo *probeRepo) CountOutOfRange(ctx context.Context, table, column string, min, max float64) (int64, core.RepoError) {
	idents, err := quoteIdent(table, column)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s < ? OR %s > ?",
		idents[0], idents[1], idents[1])
	return repo.queryCount(ctx, sqlStr, min, max)
}

// CountDuplicates 唯一列中的重复值个数
func (repo *probeRepo) CountDuplicates(ctx context.Context, table, column string) (int64, core.RepoError) {
	idents, err := quoteIdent(table, column)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf(
		"SELECT COUNT(*) FROM (SELECT %s FROM %s WHERE %s IS NOT NULL GROUP BY %s HAVING COUNT(*) > 1) d",
		idents[1], idents[0], idents[1], idents[1])
	return repo.queryCount(ctx, sqlStr)
}

// CountInvalidCast 无法转换为目标类型的行数
func (repo *probeRepo) CountInvalidCast(ctx context.Context, table, column, targetType string) (int64, core.RepoError) {
	target := strings.ToUpper(strings.TrimSpace(targetType))
	if !castTargets[target] {
		return 0, dependency.NewRepoInternalError(errors.Errorf("不支持的目标类型: %s", targetType))
	}
	idents, err := quoteIdent(table, column)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND CAST(%s AS %s) IS NULL",
		idents[0], idents[1], idents[1], target)
	return repo.queryCount(ctx, sqlStr)
}

// DeleteOrphanRows 删除孤儿行，返回删除数量
func (repo *probeRepo) DeleteOrphanRows(ctx context.Context, child, fkColumn, parent, pkColumn string) (int64, core.RepoError) {
	idents, err := quoteIdent(child, fkColumn, parent, pkColumn)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf(
		"DELETE c FROM %s c LEFT JOIN %s p ON c.%s = p.%s WHERE c.%s IS NOT NULL AND p.%s IS NULL",
		idents[0], idents[2], idents[1], idents[3], idents[1], idents[3])
	return repo.execAffected(ctx, sqlStr)
}

// FillNullRows 用缺省值回填 NULL 行，返回回填数量
func (repo *probeRepo) FillNullRows(ctx context.Context, table, column, defaultValue string) (int64, core.RepoError) {
	idents, err := quoteIdent(table, column)
	if err != nil {
		return 0, dependency.NewRepoInternalError(err)
	}
	sqlStr := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s IS NULL",
		idents[0], idents[1], idents[1])
	return repo.execAffected(ctx, sqlStr, defaultValue)
}

func (repo *probeRepo) queryCount(ctx context.Context, sqlStr string, args ...interface{}) (int64, core.RepoError) {
	var count int64
	if err := repo.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Errorf("Failed to run probe query: %v", err)
		return 0, dependency.NewRepoExecuteSqlError(err)
	}
	return count, nil
}

func (repo *probeRepo) execAffected(ctx context.Context, sqlStr string, args ...interface{}) (int64, core.RepoError) {
	result, err := repo.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Errorf("Failed to run probe exec: %v", err)
		return 0, dependency.NewRepoExecuteSqlError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dependency.NewRepoExecuteSqlError(err)
	}
	return affected, nil
}
