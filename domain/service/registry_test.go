package service

import (
	"context"
	"testing"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry_Bind(t *testing.T) {
	Convey("TestRegistry_Bind", t, func() {
		registry := NewRegistry()

		Convey("检查逻辑按名索引，重复绑定覆盖", func() {
			first := &CheckLogic{}
			second := &CheckLogic{}
			registry.BindCheck("order_fk", first)
			registry.BindCheck("order_fk", second)

			logic, ok := registry.CheckLogic("order_fk")
			So(ok, ShouldBeTrue)
			So(logic, ShouldEqual, second)

			_, ok = registry.CheckLogic("missing")
			So(ok, ShouldBeFalse)
		})

		Convey("处置动作与阈值自动动作互不串号", func() {
			registry.BindProcedure("kill_idle", func(context.Context) (map[string]any, error) { return nil, nil })

			_, ok := registry.ProcedureAction("kill_idle")
			So(ok, ShouldBeTrue)
			_, ok = registry.AutoAction("kill_idle")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBuildCheckLogic(t *testing.T) {
	Convey("TestBuildCheckLogic", t, func() {
		probe := &fakeProbe{}

		Convey("referential 检查", func() {
			params := map[string]any{
				"child_table": "t_order", "fk_column": "f_user_id",
				"parent_table": "t_user", "pk_column": "f_id",
			}

			Convey("未开启清理时无修复动作", func() {
				probe.orphanCount = 3
				logic, err := BuildCheckLogic(probe, entity.CheckTypeReferential, params)

				So(err, ShouldBeNil)
				So(logic.Fix, ShouldBeNil)

				count, details, evalErr := logic.Evaluate(context.Background())
				So(evalErr, ShouldBeNil)
				So(count, ShouldEqual, 3)
				So(details["child_table"], ShouldEqual, "t_order")
			})

			Convey("开启 delete_orphan 时携带修复动作", func() {
				params["delete_orphan"] = true
				logic, err := BuildCheckLogic(probe, entity.CheckTypeReferential, params)

				So(err, ShouldBeNil)
				So(logic.Fix, ShouldNotBeNil)
				So(logic.Fix(context.Background()), ShouldBeNil)
				So(probe.deletedCalls, ShouldEqual, 1)
			})

			Convey("标识符携带 SQL 片段时拒绝编译", func() {
				params["child_table"] = "t_order; DROP TABLE t_user"

				_, err := BuildCheckLogic(probe, entity.CheckTypeReferential, params)

				So(err, ShouldNotBeNil)
			})
		})

		Convey("constraint 检查", func() {
			Convey("not_null 带默认值时可修复", func() {
				logic, err := BuildCheckLogic(probe, entity.CheckTypeConstraint, map[string]any{
					"table": "t_order", "column": "f_status", "kind": "not_null", "default_value": "pending",
				})

				So(err, ShouldBeNil)
				So(logic.Fix, ShouldNotBeNil)
			})

			Convey("unique 永远只读", func() {
				probe.dupCount = 2
				logic, err := BuildCheckLogic(probe, entity.CheckTypeConstraint, map[string]any{
					"table": "t_order", "column": "f_serial", "kind": "unique",
				})

				So(err, ShouldBeNil)
				So(logic.Fix, ShouldBeNil)

				count, _, evalErr := logic.Evaluate(context.Background())
				So(evalErr, ShouldBeNil)
				So(count, ShouldEqual, 2)
			})

			Convey("不支持的约束类型报错", func() {
				_, err := BuildCheckLogic(probe, entity.CheckTypeConstraint, map[string]any{
					"table": "t_order", "column": "f_status", "kind": "check",
				})

				So(err, ShouldNotBeNil)
			})
		})

		Convey("business_rule 区间非法时报错", func() {
			_, err := BuildCheckLogic(probe, entity.CheckTypeBusinessRule, map[string]any{
				"table": "t_order", "column": "f_amount", "min": 100.0, "max": 1.0,
			})

			So(err, ShouldNotBeNil)
		})

		Convey("data_type 检查统计不可转换行", func() {
			probe.castCount = 5
			logic, err := BuildCheckLogic(probe, entity.CheckTypeDataType, map[string]any{
				"table": "t_order", "column": "f_created", "target_type": "datetime",
			})

			So(err, ShouldBeNil)
			count, details, evalErr := logic.Evaluate(context.Background())
			So(evalErr, ShouldBeNil)
			So(count, ShouldEqual, 5)
			So(details["target_type"], ShouldEqual, "datetime")
		})

		Convey("未知检查类型报错", func() {
			_, err := BuildCheckLogic(probe, entity.CheckType("fulltext"), nil)

			So(err, ShouldNotBeNil)
		})
	})
}

func TestBuildProcedureAction(t *testing.T) {
	Convey("TestBuildProcedureAction", t, func() {
		ops := &fakeOps{}

		Convey("kill_idle_connections 缺省空闲阈值 300 秒", func() {
			ops.killed = 7
			action, err := BuildProcedureAction(ops, "kill_idle_connections", nil)

			So(err, ShouldBeNil)
			details, actErr := action(context.Background())
			So(actErr, ShouldBeNil)
			So(details["killed"], ShouldEqual, int64(7))
			So(details["idle_seconds"], ShouldEqual, int64(300))
		})

		Convey("reclaim_storage 校验表名", func() {
			_, err := BuildProcedureAction(ops, "reclaim_storage", map[string]any{
				"tables": []string{"t_order", "t_order--"},
			})

			So(err, ShouldNotBeNil)
		})

		Convey("rebuild_statistics 透传表清单", func() {
			action, err := BuildProcedureAction(ops, "rebuild_statistics", map[string]any{
				"tables": []string{"t_order", "t_user"},
			})

			So(err, ShouldBeNil)
			_, actErr := action(context.Background())
			So(actErr, ShouldBeNil)
			So(ops.rebuilt, ShouldHaveLength, 1)
			So(ops.rebuilt[0], ShouldResemble, []string{"t_order", "t_user"})
		})

		Convey("drop_temp_tables 缺省前缀 tmp_", func() {
			ops.dropped = 2
			action, err := BuildProcedureAction(ops, "drop_temp_tables", nil)

			So(err, ShouldBeNil)
			details, actErr := action(context.Background())
			So(actErr, ShouldBeNil)
			So(details["prefix"], ShouldEqual, "tmp_")
			So(details["dropped"], ShouldEqual, int64(2))
		})

		Convey("未知动作报错", func() {
			_, err := BuildProcedureAction(ops, "format_disk", nil)

			So(err, ShouldNotBeNil)
		})
	})
}
