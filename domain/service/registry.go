package service

import (
	"context"
	"sync"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/validate"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// CheckLogic 一条检查编译后的执行逻辑。
// 检查定义持久化在库里，可执行逻辑只在注册表内以参数化查询的形式存在，
// 不做任何运行时 SQL 字符串拼接。
type CheckLogic struct {
	Evaluate func(ctx context.Context) (int64, map[string]any, error)
	Fix      func(ctx context.Context) error // 为 nil 表示该检查无自动修复
}

// ProcedureAction 一个处置动作，返回结构化执行详情
type ProcedureAction func(ctx context.Context) (map[string]any, error)

// Registry 检查与处置动作的进程内注册表，由监控服务持有，非全局状态
type Registry struct {
	mu         sync.RWMutex
	checks     map[string]*CheckLogic
	procedures map[string]ProcedureAction
	autoAction map[string]ProcedureAction // 阈值自动动作，按动作名索引
}

func NewRegistry() *Registry {
	return &Registry{
		checks:     make(map[string]*CheckLogic),
		procedures: make(map[string]ProcedureAction),
		autoAction: make(map[string]ProcedureAction),
	}
}

// BindCheck 绑定检查逻辑，重复绑定覆盖
func (r *Registry) BindCheck(name string, logic *CheckLogic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = logic
}

// CheckLogic 按名称取检查逻辑
func (r *Registry) CheckLogic(name string) (*CheckLogic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	logic, ok := r.checks[name]
	return logic, ok
}

// BindProcedure 绑定处置动作
func (r *Registry) BindProcedure(name string, action ProcedureAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procedures[name] = action
}

// ProcedureAction 按流程名取动作
func (r *Registry) ProcedureAction(name string) (ProcedureAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.procedures[name]
	return action, ok
}

// BindAutoAction 绑定阈值自动动作
func (r *Registry) BindAutoAction(name string, action ProcedureAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoAction[name] = action
}

// AutoAction 按动作名取阈值自动动作
func (r *Registry) AutoAction(name string) (ProcedureAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.autoAction[name]
	return action, ok
}

// BuildCheckLogic 按检查类型把参数编译为可执行逻辑
func BuildCheckLogic(probe dependency.ProbeRepo, checkType entity.CheckType, params map[string]any) (*CheckLogic, error) {
	switch checkType {
	case entity.CheckTypeReferential:
		var p vo.ReferentialParams
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "referential 参数解析失败")
		}
		for _, id := range []string{p.ChildTable, p.FkColumn, p.ParentTable, p.PkColumn} {
			if !validate.IsIdentifier(id) {
				return nil, errors.Errorf("非法标识符: %q", id)
			}
		}
		logic := &CheckLogic{
			Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
				count, err := probe.CountOrphanRows(ctx, p.ChildTable, p.FkColumn, p.ParentTable, p.PkColumn)
				if err != nil {
					return 0, nil, err.GetError()
				}
				return count, map[string]any{
					"child_table":  p.ChildTable,
					"fk_column":    p.FkColumn,
					"parent_table": p.ParentTable,
				}, nil
			},
		}
		if p.DeleteOrphan {
			logic.Fix = func(ctx context.Context) error {
				_, err := probe.DeleteOrphanRows(ctx, p.ChildTable, p.FkColumn, p.ParentTable, p.PkColumn)
				if err != nil {
					return err.GetError()
				}
				return nil
			}
		}
		return logic, nil

	case entity.CheckTypeConstraint:
		var p vo.ConstraintParams
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "constraint 参数解析失败")
		}
		if !validate.IsIdentifier(p.Table) || !validate.IsIdentifier(p.Column) {
			return nil, errors.Errorf("非法标识符: %q.%q", p.Table, p.Column)
		}
		switch p.Kind {
		case "not_null":
			logic := &CheckLogic{
				Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
					count, err := probe.CountNullRows(ctx, p.Table, p.Column)
					if err != nil {
						return 0, nil, err.GetError()
					}
					return count, map[string]any{"table": p.Table, "column": p.Column, "kind": p.Kind}, nil
				},
			}
			if p.DefaultValue != "" {
				logic.Fix = func(ctx context.Context) error {
					_, err := probe.FillNullRows(ctx, p.Table, p.Column, p.DefaultValue)
					if err != nil {
						return err.GetError()
					}
					return nil
				}
			}
			return logic, nil
		case "unique":
			return &CheckLogic{
				Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
					count, err := probe.CountDuplicates(ctx, p.Table, p.Column)
					if err != nil {
						return 0, nil, err.GetError()
					}
					return count, map[string]any{"table": p.Table, "column": p.Column, "kind": p.Kind}, nil
				},
			}, nil
		default:
			return nil, errors.Errorf("不支持的 constraint 类型: %q", p.Kind)
		}

	case entity.CheckTypeBusinessRule:
		var p vo.RangeParams
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "business_rule 参数解析失败")
		}
		if !validate.IsIdentifier(p.Table) || !validate.IsIdentifier(p.Column) {
			return nil, errors.Errorf("非法标识符: %q.%q", p.Table, p.Column)
		}
		if p.Min > p.Max {
			return nil, errors.Errorf("区间非法: min=%v > max=%v", p.Min, p.Max)
		}
		return &CheckLogic{
			Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
				count, err := probe.CountOutOfRange(ctx, p.Table, p.Column, p.Min, p.Max)
				if err != nil {
					return 0, nil, err.GetError()
				}
				return count, map[string]any{"table": p.Table, "column": p.Column, "min": p.Min, "max": p.Max}, nil
			},
		}, nil

	case entity.CheckTypeDataType:
		var p vo.CastParams
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "data_type 参数解析失败")
		}
		if !validate.IsIdentifier(p.Table) || !validate.IsIdentifier(p.Column) {
			return nil, errors.Errorf("非法标识符: %q.%q", p.Table, p.Column)
		}
		return &CheckLogic{
			Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
				count, err := probe.CountInvalidCast(ctx, p.Table, p.Column, p.TargetType)
				if err != nil {
					return 0, nil, err.GetError()
				}
				return count, map[string]any{"table": p.Table, "column": p.Column, "target_type": p.TargetType}, nil
			},
		}, nil
	}
	return nil, errors.Errorf("未知检查类型: %q", checkType)
}

// 处置动作参数
type killIdleParams struct {
	IdleSeconds int64 `mapstructure:"idle_seconds"`
}

type tableListParams struct {
	Tables []string `mapstructure:"tables"`
}

type tempTableParams struct {
	Prefix string `mapstructure:"prefix"`
}

// BuildProcedureAction 把处置动作标识与参数编译为可执行动作
func BuildProcedureAction(ops dependency.OpsRepo, action string, params map[string]any) (ProcedureAction, error) {
	switch action {
	case "kill_idle_connections":
		p := killIdleParams{IdleSeconds: 300}
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "kill_idle_connections 参数解析失败")
		}
		return func(ctx context.Context) (map[string]any, error) {
			killed, err := ops.KillIdleConnections(ctx, p.IdleSeconds)
			if err != nil {
				return nil, err.GetError()
			}
			return map[string]any{"killed": killed, "idle_seconds": p.IdleSeconds}, nil
		}, nil

	case "reclaim_storage":
		var p tableListParams
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "reclaim_storage 参数解析失败")
		}
		for _, t := range p.Tables {
			if !validate.IsIdentifier(t) {
				return nil, errors.Errorf("非法表名: %q", t)
			}
		}
		return func(ctx context.Context) (map[string]any, error) {
			if err := ops.ReclaimStorage(ctx, p.Tables); err != nil {
				return nil, err.GetError()
			}
			return map[string]any{"tables": p.Tables}, nil
		}, nil

	case "rebuild_statistics":
		var p tableListParams
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "rebuild_statistics 参数解析失败")
		}
		for _, t := range p.Tables {
			if !validate.IsIdentifier(t) {
				return nil, errors.Errorf("非法表名: %q", t)
			}
		}
		return func(ctx context.Context) (map[string]any, error) {
			if err := ops.RebuildStatistics(ctx, p.Tables); err != nil {
				return nil, err.GetError()
			}
			return map[string]any{"tables": p.Tables}, nil
		}, nil

	case "drop_temp_tables":
		p := tempTableParams{Prefix: "tmp_"}
		if err := mapstructure.Decode(params, &p); err != nil {
			return nil, errors.Wrap(err, "drop_temp_tables 参数解析失败")
		}
		if !validate.IsIdentifier(p.Prefix) {
			return nil, errors.Errorf("非法前缀: %q", p.Prefix)
		}
		return func(ctx context.Context) (map[string]any, error) {
			dropped, err := ops.DropTempTables(ctx, p.Prefix)
			if err != nil {
				return nil, err.GetError()
			}
			return map[string]any{"dropped": dropped, "prefix": p.Prefix}, nil
		}, nil
	}
	return nil, errors.Errorf("未知处置动作: %q", action)
}
