package service

import (
	"context"
	"testing"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestRollbackService(incidentRepo *fakeIncidentRepo, backup *fakeBackup, lock *fakeLock) (*rollbackService, *fakeAuditRepo) {
	auditRepo := &fakeAuditRepo{}
	return &rollbackService{
		incidentRepo: incidentRepo,
		backup:       backup,
		lock:         lock,
		audit:        newTestAudit(auditRepo),
		idGen:        idgen.New(),
		cfg:          config.MonitorCfg{RollbackLockTTL: 1800, OncallContact: "dba-oncall"},
	}, auditRepo
}

func verifiedBackup() *entity.BackupRegistryEntry {
	return &entity.BackupRegistryEntry{Name: "bk_20260826_0300", Completed: true, Verified: true}
}

func TestRollbackService_ExecuteEmergencyRollback(t *testing.T) {
	req := &vo.RollbackReq{Reason: "迁移后数据损坏"}

	Convey("TestRollbackService_ExecuteEmergencyRollback", t, func() {
		Convey("已有回滚在执行时直接拒绝", func() {
			svc, _ := newTestRollbackService(newFakeIncidentRepo(), &fakeBackup{}, &fakeLock{acquired: false})

			_, err := svc.ExecuteEmergencyRollback(context.Background(), req)

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "RollbackInProgress")
		})

		Convey("租约服务异常时返回内部错误", func() {
			lock := &fakeLock{acquireErr: errors.New("redis down")}
			svc, _ := newTestRollbackService(newFakeIncidentRepo(), &fakeBackup{}, lock)

			_, err := svc.ExecuteEmergencyRollback(context.Background(), req)

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "InternalError")
		})

		Convey("没有已校验备份时回滚失败", func() {
			incidentRepo := newFakeIncidentRepo()
			lock := &fakeLock{acquired: true}
			svc, _ := newTestRollbackService(incidentRepo, &fakeBackup{entry: nil}, lock)

			result, err := svc.ExecuteEmergencyRollback(context.Background(), req)

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, vo.RollbackStatusFailed)
			So(result.Error, ShouldContainSubstring, "可用备份")
			// 失败路径也必须释放租约
			So(lock.released, ShouldHaveLength, 1)
			So(incidentRepo.finalized, ShouldHaveLength, 1)
			So(incidentRepo.finalized[0].State, ShouldEqual, entity.IncidentFailed)
		})

		Convey("回滚点校验未通过时返回建议", func() {
			backup := &fakeBackup{
				entry:      verifiedBackup(),
				validation: &dependency.ValidationResult{Passed: false, Details: "校验和不一致"},
			}
			svc, _ := newTestRollbackService(newFakeIncidentRepo(), backup, &fakeLock{acquired: true})

			result, err := svc.ExecuteEmergencyRollback(context.Background(), req)

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, vo.RollbackStatusValidationFailed)
			So(result.Recommendation, ShouldContainSubstring, "force=true")
			So(backup.executed, ShouldEqual, 0)
		})

		Convey("force 跳过校验但不跳过备份存在性检查", func() {
			Convey("有备份时直接执行", func() {
				backup := &fakeBackup{
					entry:     verifiedBackup(),
					execution: &dependency.RollbackExecution{Status: "success", DurationSeconds: 12.5},
				}
				svc, _ := newTestRollbackService(newFakeIncidentRepo(), backup, &fakeLock{acquired: true})

				result, err := svc.ExecuteEmergencyRollback(context.Background(), &vo.RollbackReq{Reason: "r", Force: true})

				So(err, ShouldBeNil)
				So(result.Status, ShouldEqual, vo.RollbackStatusSuccess)
				So(backup.validated, ShouldEqual, 0)
				So(backup.executed, ShouldEqual, 1)
			})

			Convey("无备份时仍然失败", func() {
				svc, _ := newTestRollbackService(newFakeIncidentRepo(), &fakeBackup{entry: nil}, &fakeLock{acquired: true})

				result, err := svc.ExecuteEmergencyRollback(context.Background(), &vo.RollbackReq{Reason: "r", Force: true})

				So(err, ShouldBeNil)
				So(result.Status, ShouldEqual, vo.RollbackStatusFailed)
			})
		})

		Convey("校验通过后执行回滚并解决事件", func() {
			incidentRepo := newFakeIncidentRepo()
			backup := &fakeBackup{
				entry:      verifiedBackup(),
				validation: &dependency.ValidationResult{Passed: true},
				execution:  &dependency.RollbackExecution{Status: "success", DurationSeconds: 30},
			}
			lock := &fakeLock{acquired: true}
			svc, auditRepo := newTestRollbackService(incidentRepo, backup, lock)

			result, err := svc.ExecuteEmergencyRollback(context.Background(), req)

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, vo.RollbackStatusSuccess)
			So(result.BackupUsed, ShouldEqual, "bk_20260826_0300")
			So(result.DurationSeconds, ShouldEqual, 30)
			So(backup.validated, ShouldEqual, 1)
			So(lock.released, ShouldHaveLength, 1)
			So(incidentRepo.finalized, ShouldHaveLength, 1)
			So(incidentRepo.finalized[0].State, ShouldEqual, entity.IncidentResolved)
			So(incidentRepo.finalized[0].BackupUsed, ShouldEqual, "bk_20260826_0300")
			So(auditRepo.actions(), ShouldContain, "rollback_completed")
			So(auditRepo.actions(), ShouldContain, "notification_intent")
		})

		Convey("回滚执行失败时事件为 failed", func() {
			backup := &fakeBackup{
				entry:      verifiedBackup(),
				validation: &dependency.ValidationResult{Passed: true},
				executeErr: sqlErr(),
			}
			incidentRepo := newFakeIncidentRepo()
			svc, auditRepo := newTestRollbackService(incidentRepo, backup, &fakeLock{acquired: true})

			result, err := svc.ExecuteEmergencyRollback(context.Background(), req)

			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, vo.RollbackStatusFailed)
			So(incidentRepo.finalized[0].State, ShouldEqual, entity.IncidentFailed)
			So(auditRepo.actions(), ShouldContain, "rollback_failed")
			So(auditRepo.actions(), ShouldContain, "notification_intent")
		})
	})
}
