package service

import (
	"context"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

//go:generate mockgen -source ./session.go -destination ../../mock/service/mock_session_service.go -package mock
type SessionService interface {
	Start(ctx context.Context, req *vo.SessionStartReq) (vo.SessionResp, core.ServiceError)
	Heartbeat(ctx context.Context, sessionID string, req *vo.HeartbeatReq) core.ServiceError
	Stop(ctx context.Context, sessionID string, req *vo.SessionStopReq) (vo.SessionSummary, core.ServiceError)
}

type sessionService struct {
	sessionRepo dependency.SessionRepo
	audit       AuditService
}

// Start 启动监控会话
func (s *sessionService) Start(ctx context.Context, req *vo.SessionStartReq) (vo.SessionResp, core.ServiceError) {
	cfgJSON := "{}"
	if len(req.Config) > 0 {
		raw, err := sonic.Marshal(req.Config)
		if err != nil {
			return vo.SessionResp{}, NewSvcValidateError(dependency.NewRepoInternalError(err))
		}
		cfgJSON = string(raw)
	}
	now := time.Now()
	session := &entity.MonitoringSession{
		ID:            uuid.NewString(),
		Phase:         req.Phase,
		Config:        cfgJSON,
		StartedAt:     now,
		LastHeartbeat: now,
		Status:        entity.SessionActive,
	}
	if repoErr := s.sessionRepo.Create(ctx, session); repoErr != nil {
		log.Errorf("create session failed, phase:%s err:%s", req.Phase, repoErr.Error())
		return vo.SessionResp{}, NewSvcInternalError(repoErr)
	}
	s.audit.Record(ctx, "session_started", "monitoring_session", map[string]any{
		"session_id": session.ID, "phase": req.Phase,
	})
	return vo.SessionResp{SessionID: session.ID}, nil
}

// Heartbeat 会话心跳。计数直接覆盖为上报快照，乱序上报以最后到达为准
func (s *sessionService) Heartbeat(ctx context.Context, sessionID string, req *vo.HeartbeatReq) core.ServiceError {
	session, repoErr := s.sessionRepo.Get(ctx, sessionID)
	if repoErr != nil {
		return NewSvcNotFoundError(repoErr)
	}
	if session.Status != entity.SessionActive && session.Status != entity.SessionPaused {
		return NewSvcPreconditionError(dependency.NewRepoInternalError(
			errors.Errorf("会话 %s 已结束，状态 %s", sessionID, session.Status)))
	}
	if repoErr := s.sessionRepo.UpdateHeartbeat(ctx, sessionID,
		req.ChecksPerformed, req.ViolationsFound, req.CriticalViolations, time.Now()); repoErr != nil {
		log.Errorf("update heartbeat failed, session:%s err:%s", sessionID, repoErr.Error())
		return NewSvcInternalError(repoErr)
	}
	return nil
}

// Stop 停止会话并返回摘要，摘要计数取最后一次心跳快照
func (s *sessionService) Stop(ctx context.Context, sessionID string, req *vo.SessionStopReq) (vo.SessionSummary, core.ServiceError) {
	session, repoErr := s.sessionRepo.Get(ctx, sessionID)
	if repoErr != nil {
		return vo.SessionSummary{}, NewSvcNotFoundError(repoErr)
	}
	if session.Status == entity.SessionStopped || session.Status == entity.SessionError {
		return vo.SessionSummary{}, NewSvcPreconditionError(dependency.NewRepoInternalError(
			errors.Errorf("会话 %s 已结束，状态 %s", sessionID, session.Status)))
	}

	final := entity.SessionStopped
	if req.FinalStatus != "" {
		final = entity.SessionStatus(req.FinalStatus)
	}
	now := time.Now()
	if repoErr := s.sessionRepo.UpdateStatus(ctx, sessionID, final, &now); repoErr != nil {
		log.Errorf("stop session failed, session:%s err:%s", sessionID, repoErr.Error())
		return vo.SessionSummary{}, NewSvcInternalError(repoErr)
	}
	s.audit.Record(ctx, "session_stopped", "monitoring_session", map[string]any{
		"session_id": sessionID, "final_status": string(final),
		"checks_performed": session.ChecksPerformed, "violations_found": session.ViolationsFound,
	})
	return vo.SessionSummary{
		SessionID:          sessionID,
		Phase:              session.Phase,
		Status:             string(final),
		StartedAt:          session.StartedAt,
		StoppedAt:          now,
		ChecksPerformed:    session.ChecksPerformed,
		ViolationsFound:    session.ViolationsFound,
		CriticalViolations: session.CriticalViolations,
	}, nil
}
