package service

import (
	"context"
	"testing"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestCheckService(checkRepo *fakeCheckRepo, violationRepo *fakeViolationRepo, probe *fakeProbe) (*checkService, *fakeAuditRepo) {
	auditRepo := &fakeAuditRepo{}
	return &checkService{
		checkRepo:     checkRepo,
		violationRepo: violationRepo,
		probe:         probe,
		registry:      NewRegistry(),
		audit:         newTestAudit(auditRepo),
		idGen:         idgen.New(),
		cfg:           config.MonitorCfg{CheckWorkers: 2, CheckTimeout: 5, FixTimeout: 5},
	}, auditRepo
}

func referentialReq(name string, autoFix bool) *vo.CheckReq {
	return &vo.CheckReq{
		Name:     name,
		Type:     string(entity.CheckTypeReferential),
		Severity: string(entity.SeverityCritical),
		AutoFix:  autoFix,
		Params: map[string]any{
			"child_table":   "t_order",
			"fk_column":     "f_user_id",
			"parent_table":  "t_user",
			"pk_column":     "f_id",
			"delete_orphan": autoFix,
		},
	}
}

func TestCheckService_Register(t *testing.T) {
	Convey("TestCheckService_Register", t, func() {
		Convey("成功注册 referential 检查", func() {
			svc, auditRepo := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{})

			err := svc.Register(context.Background(), referentialReq("orphan_orders", false))

			So(err, ShouldBeNil)
			_, ok := svc.registry.CheckLogic("orphan_orders")
			So(ok, ShouldBeTrue)
			So(auditRepo.actions(), ShouldContain, "check_registered")
		})

		Convey("默认执行间隔为 300 秒", func() {
			checkRepo := newFakeCheckRepo()
			svc, _ := newTestCheckService(checkRepo, newFakeViolationRepo(), &fakeProbe{})

			err := svc.Register(context.Background(), referentialReq("orphan_orders", false))

			So(err, ShouldBeNil)
			So(checkRepo.checks["orphan_orders"].IntervalSeconds, ShouldEqual, 300)
		})

		Convey("名称重复返回 NameExisted", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{})

			So(svc.Register(context.Background(), referentialReq("dup", false)), ShouldBeNil)
			err := svc.Register(context.Background(), referentialReq("dup", false))

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "NameExisted")
		})

		Convey("非法标识符在注册时被拒绝", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{})
			req := referentialReq("bad_check", false)
			req.Params["child_table"] = "t_order; DROP TABLE t_user"

			err := svc.Register(context.Background(), req)

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "ValidateParamError")
		})
	})
}

func TestCheckService_Execute(t *testing.T) {
	Convey("TestCheckService_Execute", t, func() {
		Convey("检查不存在返回 NotFound", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{})

			_, err := svc.Execute(context.Background(), "missing")

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "NotFound")
		})

		Convey("无违规时不落违规记录", func() {
			violationRepo := newFakeViolationRepo()
			svc, _ := newTestCheckService(newFakeCheckRepo(), violationRepo, &fakeProbe{orphanCount: 0})
			So(svc.Register(context.Background(), referentialReq("clean", false)), ShouldBeNil)

			result, err := svc.Execute(context.Background(), "clean")

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, string(entity.CheckRunCompleted))
			So(result.ViolationCount, ShouldEqual, 0)
			So(violationRepo.created, ShouldBeEmpty)
		})

		Convey("检出违规先落记录再尝试修复", func() {
			violationRepo := newFakeViolationRepo()
			probe := &fakeProbe{orphanCount: 7}
			svc, auditRepo := newTestCheckService(newFakeCheckRepo(), violationRepo, probe)
			So(svc.Register(context.Background(), referentialReq("orphans", true)), ShouldBeNil)

			result, err := svc.Execute(context.Background(), "orphans")

			So(err, ShouldBeNil)
			So(result.ViolationCount, ShouldEqual, 7)
			So(result.AutoFixAttempted, ShouldBeTrue)
			So(result.AutoFixSucceeded, ShouldBeTrue)
			So(violationRepo.created, ShouldHaveLength, 1)
			So(violationRepo.created[0].Severity, ShouldEqual, entity.SeverityCritical)
			So(probe.deletedCalls, ShouldEqual, 1)
			So(auditRepo.actions(), ShouldContain, "violation_detected")
		})

		Convey("修复失败不影响违规记录", func() {
			violationRepo := newFakeViolationRepo()
			probe := &fakeProbe{orphanCount: 3, fixErr: sqlErr()}
			svc, _ := newTestCheckService(newFakeCheckRepo(), violationRepo, probe)
			So(svc.Register(context.Background(), referentialReq("orphans", true)), ShouldBeNil)

			result, err := svc.Execute(context.Background(), "orphans")

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, string(entity.CheckRunCompleted))
			So(result.AutoFixAttempted, ShouldBeTrue)
			So(result.AutoFixSucceeded, ShouldBeFalse)
			So(violationRepo.created, ShouldHaveLength, 1)
		})

		Convey("停用的检查跳过执行", func() {
			checkRepo := newFakeCheckRepo()
			svc, _ := newTestCheckService(checkRepo, newFakeViolationRepo(), &fakeProbe{orphanCount: 5})
			req := referentialReq("disabled", false)
			disabled := false
			req.Enabled = &disabled
			So(svc.Register(context.Background(), req), ShouldBeNil)

			result, err := svc.Execute(context.Background(), "disabled")

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, string(entity.CheckRunSkipped))
		})

		Convey("注册表未命中时按落库参数重建逻辑", func() {
			checkRepo := newFakeCheckRepo()
			svc, _ := newTestCheckService(checkRepo, newFakeViolationRepo(), &fakeProbe{orphanCount: 2})
			So(svc.Register(context.Background(), referentialReq("rebuilt", false)), ShouldBeNil)
			// 模拟服务重启后的空注册表
			svc.registry = NewRegistry()

			result, err := svc.Execute(context.Background(), "rebuilt")

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, string(entity.CheckRunCompleted))
			So(result.ViolationCount, ShouldEqual, 2)
			_, ok := svc.registry.CheckLogic("rebuilt")
			So(ok, ShouldBeTrue)
		})

		Convey("检查逻辑 panic 按 failed 记录", func() {
			checkRepo := newFakeCheckRepo()
			svc, _ := newTestCheckService(checkRepo, newFakeViolationRepo(), &fakeProbe{})
			So(svc.Register(context.Background(), referentialReq("boom", false)), ShouldBeNil)
			svc.registry.BindCheck("boom", &CheckLogic{
				Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
					panic("boom")
				},
			})

			result, err := svc.Execute(context.Background(), "boom")

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, string(entity.CheckRunFailed))
			So(result.Error, ShouldContainSubstring, "panic")
		})
	})
}

func TestCheckService_ExecuteAll(t *testing.T) {
	Convey("TestCheckService_ExecuteAll", t, func() {
		Convey("无检查时汇总为 OK", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{})

			agg, err := svc.ExecuteAll(context.Background())

			So(err, ShouldBeNil)
			So(agg.TotalChecks, ShouldEqual, 0)
			So(agg.OverallStatus, ShouldEqual, vo.SweepStatusOK)
		})

		Convey("严重违规任一存在即为 CRITICAL", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{orphanCount: 1})
			So(svc.Register(context.Background(), referentialReq("c1", false)), ShouldBeNil)

			agg, err := svc.ExecuteAll(context.Background())

			So(err, ShouldBeNil)
			So(agg.TotalChecks, ShouldEqual, 1)
			So(agg.CriticalViolations, ShouldEqual, 1)
			So(agg.OverallStatus, ShouldEqual, vo.SweepStatusCritical)
		})

		Convey("非严重违规超过 10 行为 ERROR", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{nullCount: 11})
			req := &vo.CheckReq{
				Name:     "nulls",
				Type:     string(entity.CheckTypeConstraint),
				Severity: string(entity.SeverityWarning),
				Params:   map[string]any{"table": "t_user", "column": "f_email", "kind": "not_null"},
			}
			So(svc.Register(context.Background(), req), ShouldBeNil)

			agg, err := svc.ExecuteAll(context.Background())

			So(err, ShouldBeNil)
			So(agg.TotalViolations, ShouldEqual, 11)
			So(agg.CriticalViolations, ShouldEqual, 0)
			So(agg.OverallStatus, ShouldEqual, vo.SweepStatusError)
		})

		Convey("单个检查失败不终止巡检", func() {
			svc, _ := newTestCheckService(newFakeCheckRepo(), newFakeViolationRepo(), &fakeProbe{})
			So(svc.Register(context.Background(), referentialReq("ok_check", false)), ShouldBeNil)
			So(svc.Register(context.Background(), referentialReq("bad_check", false)), ShouldBeNil)
			svc.registry.BindCheck("bad_check", &CheckLogic{
				Evaluate: func(ctx context.Context) (int64, map[string]any, error) {
					panic("broken")
				},
			})

			agg, err := svc.ExecuteAll(context.Background())

			So(err, ShouldBeNil)
			So(agg.TotalChecks, ShouldEqual, 2)
			statuses := map[string]string{}
			for _, r := range agg.Results {
				statuses[r.CheckName] = r.Status
			}
			So(statuses["ok_check"], ShouldEqual, string(entity.CheckRunCompleted))
			So(statuses["bad_check"], ShouldEqual, string(entity.CheckRunFailed))
		})
	})
}
