package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/pkg/errors"
)

// 处置流程缺省时间预算（秒）
const defaultBudgetSeconds = 60

//go:generate mockgen -source ./emergency.go -destination ../../mock/service/mock_emergency_service.go -package mock
type EmergencyService interface {
	RegisterProcedure(ctx context.Context, req *vo.ProcedureReq) core.ServiceError
	Respond(ctx context.Context, req *vo.RespondReq) (vo.ResponseLog, core.ServiceError)
}

type emergencyService struct {
	procedureRepo dependency.ProcedureRepo
	incidentRepo  dependency.IncidentRepo
	ops           dependency.OpsRepo
	registry      *Registry
	audit         AuditService
	idGen         *idgen.Generator
	cfg           config.MonitorCfg
}

// RegisterProcedure 注册应急处置流程。动作在注册时构建，非法动作直接拒绝
func (s *emergencyService) RegisterProcedure(ctx context.Context, req *vo.ProcedureReq) core.ServiceError {
	action, err := BuildProcedureAction(s.ops, req.Action, req.Params)
	if err != nil {
		log.Errorf("build procedure action failed, name:%s err:%v", req.Name, err)
		return NewSvcValidateError(dependency.NewRepoInternalError(err))
	}
	if existing, repoErr := s.procedureRepo.GetByName(ctx, req.Name); repoErr == nil && existing != nil {
		return NewSvcNameSameError(nil)
	}

	budget := req.BudgetSeconds
	if budget <= 0 {
		budget = defaultBudgetSeconds
	}
	procedure := &entity.EmergencyProcedure{
		Name:               req.Name,
		IncidentType:       req.IncidentType,
		MinSeverity:        entity.Severity(req.MinSeverity),
		Action:             req.Action,
		Params:             req.Params,
		AutoExecute:        req.AutoExecute,
		BudgetSeconds:      budget,
		CompensationAction: req.CompensationAction,
		CreateTime:         time.Now(),
	}
	if repoErr := s.procedureRepo.Create(ctx, procedure); repoErr != nil {
		log.Errorf("create procedure failed, name:%s err:%s", req.Name, repoErr.Error())
		return NewSvcInternalError(repoErr)
	}
	s.registry.BindProcedure(req.Name, action)
	s.audit.Record(ctx, "procedure_registered", "emergency_procedure", map[string]any{
		"name": req.Name, "incident_type": req.IncidentType, "action": req.Action,
		"auto_execute": req.AutoExecute, "budget_seconds": budget,
	})
	return nil
}

// Respond 创建事件并顺序执行匹配的处置流程。
// 单个流程失败不中断后续流程，也不推翻整体响应：只要有流程执行过，
// 事件一律按 resolved 归档，失败细节留在动作日志里。无匹配流程为 escalated
func (s *emergencyService) Respond(ctx context.Context, req *vo.RespondReq) (vo.ResponseLog, core.ServiceError) {
	start := time.Now()
	severity := entity.Severity(req.Severity)
	incident := &entity.Incident{
		ID:          s.idGen.NextID(),
		Type:        req.IncidentType,
		Severity:    severity,
		Description: req.Description,
		Source:      "api",
		State:       entity.IncidentDetected,
		DetectedAt:  start,
	}
	if repoErr := s.incidentRepo.Create(ctx, incident); repoErr != nil {
		log.Errorf("create incident failed, type:%s err:%s", req.IncidentType, repoErr.Error())
		return vo.ResponseLog{}, NewSvcInternalError(repoErr)
	}

	procedures, repoErr := s.procedureRepo.ListByIncidentType(ctx, req.IncidentType)
	if repoErr != nil {
		log.Errorf("list procedures failed, type:%s err:%s", req.IncidentType, repoErr.Error())
		return vo.ResponseLog{}, NewSvcInternalError(repoErr)
	}
	matched := make([]*entity.EmergencyProcedure, 0, len(procedures))
	for _, p := range procedures {
		if !severity.AtLeast(p.MinSeverity) {
			continue
		}
		if req.AutoExecuteOnly && !p.AutoExecute {
			continue
		}
		matched = append(matched, p)
	}
	// 针对更高级别配置的流程先执行，同级按名称稳定
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MinSeverity.Rank() != matched[j].MinSeverity.Rank() {
			return matched[i].MinSeverity.Rank() < matched[j].MinSeverity.Rank()
		}
		return matched[i].Name < matched[j].Name
	})

	if len(matched) == 0 {
		s.transition(ctx, incident, entity.IncidentEscalated)
		s.finalize(ctx, incident, start, "")
		s.audit.Record(ctx, "incident_escalated", "incident", map[string]any{
			"incident_id": incident.ID, "type": req.IncidentType, "reason": "无匹配处置流程",
		})
		s.audit.NotifyIntent(ctx, s.cfg.OncallContact,
			fmt.Sprintf("事件 %d（%s/%s）无匹配处置流程，已升级，需人工介入", incident.ID, req.IncidentType, req.Severity))
		return vo.ResponseLog{
			IncidentID: incident.ID,
			State:      string(incident.State),
			ElapsedMS:  time.Since(start).Milliseconds(),
			Actions:    []entity.ResponseAction{},
		}, nil
	}

	s.transition(ctx, incident, entity.IncidentResponding)

	failures := 0
	for _, p := range matched {
		action := s.executeProcedure(ctx, p)
		incident.Actions = append(incident.Actions, action)
		if action.Status != "success" {
			failures++
		}
	}

	s.transition(ctx, incident, entity.IncidentResolved)
	s.finalize(ctx, incident, start, "auto_responder")
	s.audit.Record(ctx, "incident_responded", "incident", map[string]any{
		"incident_id": incident.ID, "type": req.IncidentType, "state": string(incident.State),
		"procedures": len(matched), "failures": failures,
	})
	return vo.ResponseLog{
		IncidentID: incident.ID,
		State:      string(incident.State),
		ElapsedMS:  time.Since(start).Milliseconds(),
		Actions:    incident.Actions,
	}, nil
}

// executeProcedure 在时间预算内执行单个流程，超时与 panic 均按失败记录。
// 失败且配置了补偿动作时，补偿尽力执行
func (s *emergencyService) executeProcedure(ctx context.Context, p *entity.EmergencyProcedure) entity.ResponseAction {
	start := time.Now()
	record := entity.ResponseAction{Procedure: p.Name, ExecutedAt: start}

	action, ok := s.registry.ProcedureAction(p.Name)
	if !ok {
		built, err := BuildProcedureAction(s.ops, p.Action, p.Params)
		if err != nil {
			record.Status = "failed"
			record.Error = err.Error()
			record.ElapsedMS = time.Since(start).Milliseconds()
			return record
		}
		s.registry.BindProcedure(p.Name, built)
		action = built
	}

	budget := p.BudgetSeconds
	if budget <= 0 {
		budget = defaultBudgetSeconds
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(budget)*time.Second)
	err := runBounded(runCtx, action)
	cancel()
	record.ElapsedMS = time.Since(start).Milliseconds()
	if err != nil {
		var svcErr core.ServiceError
		if errors.Is(err, context.DeadlineExceeded) {
			svcErr = NewSvcBudgetExceededError(dependency.NewRepoInternalError(err))
		} else {
			svcErr = NewSvcExecuteError(dependency.NewRepoInternalError(err))
		}
		record.Status = "failed"
		record.ErrorType = svcErr.Type()
		record.Error = err.Error()
		log.Errorf("procedure failed, name:%s type:%s err:%v", p.Name, record.ErrorType, err)
		if p.CompensationAction != "" {
			s.compensate(ctx, p)
		}
	} else {
		record.Status = "success"
	}
	if repoErr := s.procedureRepo.RecordExecution(context.Background(), p.Name, time.Now()); repoErr != nil {
		log.Errorf("record procedure execution failed, name:%s err:%s", p.Name, repoErr.Error())
	}
	return record
}

func (s *emergencyService) compensate(ctx context.Context, p *entity.EmergencyProcedure) {
	comp, err := BuildProcedureAction(s.ops, p.CompensationAction, p.Params)
	if err != nil {
		log.Errorf("build compensation failed, name:%s err:%v", p.Name, err)
		return
	}
	compCtx, cancel := context.WithTimeout(ctx, defaultBudgetSeconds*time.Second)
	defer cancel()
	if err := runBounded(compCtx, comp); err != nil {
		log.Errorf("compensation failed, name:%s action:%s err:%v", p.Name, p.CompensationAction, err)
	}
}

func (s *emergencyService) transition(ctx context.Context, incident *entity.Incident, to entity.IncidentState) {
	if !incident.State.CanTransition(to) {
		log.Errorf("illegal incident transition, id:%d from:%s to:%s", incident.ID, incident.State, to)
		return
	}
	incident.State = to
	if repoErr := s.incidentRepo.UpdateState(ctx, incident.ID, to); repoErr != nil {
		log.Errorf("update incident state failed, id:%d err:%s", incident.ID, repoErr.Error())
	}
}

func (s *emergencyService) finalize(ctx context.Context, incident *entity.Incident, start time.Time, resolvedBy string) {
	now := time.Now()
	incident.ResolvedAt = &now
	incident.DurationSeconds = now.Sub(start).Seconds()
	incident.ResolvedBy = resolvedBy
	if repoErr := s.incidentRepo.Finalize(ctx, incident); repoErr != nil {
		log.Errorf("finalize incident failed, id:%d err:%s", incident.ID, repoErr.Error())
	}
}

// runBounded 将动作跑在预算上下文内，panic 按失败处理
func runBounded(ctx context.Context, action ProcedureAction) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errors.Errorf("procedure panic: %v", r)
			}
		}()
		_, err := action(ctx)
		done <- err
	}()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "处置超出时间预算")
	case err := <-done:
		return err
	}
}
