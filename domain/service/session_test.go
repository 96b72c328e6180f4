package service

import (
	"context"
	"testing"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestSessionService(repo *fakeSessionRepo) (*sessionService, *fakeAuditRepo) {
	auditRepo := &fakeAuditRepo{}
	return &sessionService{sessionRepo: repo, audit: newTestAudit(auditRepo)}, auditRepo
}

func startSession(svc *sessionService, phase string) string {
	resp, _ := svc.Start(context.Background(), &vo.SessionStartReq{Phase: phase})
	return resp.SessionID
}

func TestSessionService_Start(t *testing.T) {
	Convey("TestSessionService_Start", t, func() {
		Convey("启动会话返回会话号并记审计", func() {
			repo := newFakeSessionRepo()
			svc, auditRepo := newTestSessionService(repo)

			resp, err := svc.Start(context.Background(), &vo.SessionStartReq{
				Phase:  "during_migration",
				Config: map[string]any{"check_interval": 60},
			})

			So(err, ShouldBeNil)
			So(resp.SessionID, ShouldNotBeEmpty)
			So(auditRepo.actions(), ShouldContain, "session_started")

			session := repo.sessions[resp.SessionID]
			So(session.Status, ShouldEqual, entity.SessionActive)
			So(session.Config, ShouldContainSubstring, "check_interval")
		})

		Convey("未携带配置时落空对象", func() {
			repo := newFakeSessionRepo()
			svc, _ := newTestSessionService(repo)

			id := startSession(svc, "pre_migration")

			So(repo.sessions[id].Config, ShouldEqual, "{}")
		})
	})
}

func TestSessionService_Heartbeat(t *testing.T) {
	Convey("TestSessionService_Heartbeat", t, func() {
		repo := newFakeSessionRepo()
		svc, _ := newTestSessionService(repo)
		id := startSession(svc, "during_migration")

		Convey("心跳覆盖计数快照", func() {
			err := svc.Heartbeat(context.Background(), id, &vo.HeartbeatReq{
				ChecksPerformed: 10, ViolationsFound: 2, CriticalViolations: 1,
			})
			So(err, ShouldBeNil)

			// 乱序上报以最后到达为准，不做单调约束
			err = svc.Heartbeat(context.Background(), id, &vo.HeartbeatReq{
				ChecksPerformed: 8, ViolationsFound: 1, CriticalViolations: 0,
			})
			So(err, ShouldBeNil)

			session := repo.sessions[id]
			So(session.ChecksPerformed, ShouldEqual, 8)
			So(session.ViolationsFound, ShouldEqual, 1)
			So(session.CriticalViolations, ShouldEqual, 0)
		})

		Convey("会话不存在时返回 NotFound", func() {
			err := svc.Heartbeat(context.Background(), "no-such-session", &vo.HeartbeatReq{})

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "NotFound")
		})

		Convey("已停止的会话拒绝心跳", func() {
			_, stopErr := svc.Stop(context.Background(), id, &vo.SessionStopReq{})
			So(stopErr, ShouldBeNil)

			err := svc.Heartbeat(context.Background(), id, &vo.HeartbeatReq{ChecksPerformed: 1})

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "PreconditionFailed")
		})
	})
}

func TestSessionService_Stop(t *testing.T) {
	Convey("TestSessionService_Stop", t, func() {
		repo := newFakeSessionRepo()
		svc, auditRepo := newTestSessionService(repo)
		id := startSession(svc, "post_migration")

		Convey("停止会话返回最后一次心跳快照", func() {
			So(svc.Heartbeat(context.Background(), id, &vo.HeartbeatReq{
				ChecksPerformed: 42, ViolationsFound: 3, CriticalViolations: 1,
			}), ShouldBeNil)

			summary, err := svc.Stop(context.Background(), id, &vo.SessionStopReq{})

			So(err, ShouldBeNil)
			So(summary.SessionID, ShouldEqual, id)
			So(summary.Phase, ShouldEqual, "post_migration")
			So(summary.Status, ShouldEqual, string(entity.SessionStopped))
			So(summary.ChecksPerformed, ShouldEqual, 42)
			So(summary.ViolationsFound, ShouldEqual, 3)
			So(summary.CriticalViolations, ShouldEqual, 1)
			So(repo.sessions[id].StoppedAt, ShouldNotBeNil)
			So(auditRepo.actions(), ShouldContain, "session_stopped")
		})

		Convey("指定最终状态时按请求落库", func() {
			summary, err := svc.Stop(context.Background(), id, &vo.SessionStopReq{FinalStatus: "error"})

			So(err, ShouldBeNil)
			So(summary.Status, ShouldEqual, "error")
			So(repo.sessions[id].Status, ShouldEqual, entity.SessionError)
		})

		Convey("会话不存在时返回 NotFound", func() {
			_, err := svc.Stop(context.Background(), "no-such-session", &vo.SessionStopReq{})

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "NotFound")
		})

		Convey("重复停止返回 PreconditionFailed", func() {
			_, err := svc.Stop(context.Background(), id, &vo.SessionStopReq{})
			So(err, ShouldBeNil)

			_, err = svc.Stop(context.Background(), id, &vo.SessionStopReq{})

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "PreconditionFailed")
		})
	})
}
