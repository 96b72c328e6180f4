package service

import (
	"context"
	"fmt"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/google/uuid"
)

//go:generate mockgen -source ./rollback.go -destination ../../mock/service/mock_rollback_service.go -package mock
type RollbackService interface {
	ExecuteEmergencyRollback(ctx context.Context, req *vo.RollbackReq) (vo.RollbackResult, core.ServiceError)
}

type rollbackService struct {
	incidentRepo dependency.IncidentRepo
	backup       dependency.BackupServiceClient
	lock         core.RollbackLock
	audit        AuditService
	idGen        *idgen.Generator
	cfg          config.MonitorCfg
}

// ExecuteEmergencyRollback 恢复到最近一个已校验备份。
// 全程持回滚租约，并发请求直接拒绝。无可用备份一律失败，
// force 只跳过回滚点校验，不跳过备份存在性检查
func (s *rollbackService) ExecuteEmergencyRollback(ctx context.Context, req *vo.RollbackReq) (vo.RollbackResult, core.ServiceError) {
	holder := uuid.NewString()
	acquired, err := s.lock.TryAcquire(ctx, holder, s.cfg.RollbackLockTTL*time.Second)
	if err != nil {
		log.Errorf("acquire rollback lock failed, err:%v", err)
		return vo.RollbackResult{}, NewSvcInternalError(dependency.NewRepoInternalError(err))
	}
	if !acquired {
		return vo.RollbackResult{}, NewSvcRollbackBusyError(nil)
	}
	defer func() {
		if err := s.lock.Release(context.Background(), holder); err != nil {
			log.Errorf("release rollback lock failed, err:%v", err)
		}
	}()

	start := time.Now()
	incident := &entity.Incident{
		ID:          s.idGen.NextID(),
		Type:        entity.IncidentTypeSystemFailure,
		Severity:    entity.SeverityCritical,
		Description: "紧急回滚: " + req.Reason,
		Source:      "rollback",
		State:       entity.IncidentDetected,
		DetectedAt:  start,
	}
	if repoErr := s.incidentRepo.Create(ctx, incident); repoErr != nil {
		log.Errorf("create rollback incident failed, err:%s", repoErr.Error())
		return vo.RollbackResult{}, NewSvcInternalError(repoErr)
	}
	s.transition(ctx, incident, entity.IncidentResponding)
	s.audit.Record(ctx, "rollback_started", "incident", map[string]any{
		"incident_id": incident.ID, "reason": req.Reason, "force": req.Force,
	})

	result := vo.RollbackResult{IncidentID: incident.ID}

	backup, err := s.backup.LatestVerifiedBackup(ctx)
	if err != nil {
		log.Errorf("query latest backup failed, err:%v", err)
		return s.conclude(ctx, incident, result, vo.RollbackStatusFailed, "查询备份登记失败: "+err.Error(), start), nil
	}
	if backup == nil {
		return s.conclude(ctx, incident, result, vo.RollbackStatusFailed, "没有已校验的可用备份", start), nil
	}
	incident.BackupUsed = backup.Name
	result.BackupUsed = backup.Name

	if !req.Force {
		validation, err := s.backup.Validate(ctx, backup.Name)
		if err != nil {
			result.Recommendation = "确认风险后可携带 force=true 重新发起"
			return s.conclude(ctx, incident, result, vo.RollbackStatusValidationFailed, "回滚点校验失败: "+err.Error(), start), nil
		}
		if !validation.Passed {
			result.Recommendation = "确认风险后可携带 force=true 重新发起"
			return s.conclude(ctx, incident, result, vo.RollbackStatusValidationFailed, "回滚点校验未通过: "+validation.Details, start), nil
		}
	}

	execution, err := s.backup.Execute(ctx, backup.Name, req.Reason, req.Force)
	if err != nil {
		log.Errorf("execute rollback failed, backup:%s err:%v", backup.Name, err)
		return s.conclude(ctx, incident, result, vo.RollbackStatusFailed, "回滚执行失败: "+err.Error(), start), nil
	}

	result.Status = vo.RollbackStatusSuccess
	result.DurationSeconds = execution.DurationSeconds
	s.transition(ctx, incident, entity.IncidentResolved)
	s.finalize(ctx, incident, start)
	s.audit.Record(ctx, "rollback_completed", "incident", map[string]any{
		"incident_id": incident.ID, "backup": backup.Name, "duration_seconds": execution.DurationSeconds,
	})
	s.audit.NotifyIntent(ctx, s.cfg.OncallContact,
		fmt.Sprintf("紧急回滚完成，事件 %d 已恢复至备份 %s", incident.ID, backup.Name))
	return result, nil
}

// conclude 按失败路径收尾事件并返回结果
func (s *rollbackService) conclude(ctx context.Context, incident *entity.Incident, result vo.RollbackResult, status, errMsg string, start time.Time) vo.RollbackResult {
	result.Status = status
	result.Error = errMsg
	result.DurationSeconds = time.Since(start).Seconds()
	s.transition(ctx, incident, entity.IncidentFailed)
	s.finalize(ctx, incident, start)
	s.audit.Record(ctx, "rollback_failed", "incident", map[string]any{
		"incident_id": incident.ID, "status": status, "error": errMsg,
	})
	s.audit.NotifyIntent(ctx, s.cfg.OncallContact,
		fmt.Sprintf("紧急回滚失败，事件 %d 需人工介入：%s", incident.ID, errMsg))
	return result
}

func (s *rollbackService) transition(ctx context.Context, incident *entity.Incident, to entity.IncidentState) {
	if !incident.State.CanTransition(to) {
		log.Errorf("illegal incident transition, id:%d from:%s to:%s", incident.ID, incident.State, to)
		return
	}
	incident.State = to
	if repoErr := s.incidentRepo.UpdateState(ctx, incident.ID, to); repoErr != nil {
		log.Errorf("update incident state failed, id:%d err:%s", incident.ID, repoErr.Error())
	}
}

func (s *rollbackService) finalize(ctx context.Context, incident *entity.Incident, start time.Time) {
	now := time.Now()
	incident.ResolvedAt = &now
	incident.DurationSeconds = now.Sub(start).Seconds()
	incident.ResolvedBy = "rollback_orchestrator"
	if repoErr := s.incidentRepo.Finalize(ctx, incident); repoErr != nil {
		log.Errorf("finalize incident failed, id:%d err:%s", incident.ID, repoErr.Error())
	}
}
