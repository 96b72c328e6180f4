package service

import (
	"context"
	"fmt"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/pkg/errors"
)

//go:generate mockgen -source ./threshold.go -destination ../../mock/service/mock_threshold_service.go -package mock
type ThresholdService interface {
	Register(ctx context.Context, req *vo.ThresholdReq) core.ServiceError
	Evaluate(ctx context.Context) ([]vo.AlertResp, core.ServiceError)
	Acknowledge(ctx context.Context, alertID uint64) core.ServiceError
	Resolve(ctx context.Context, alertID uint64) core.ServiceError
}

type thresholdService struct {
	thresholdRepo dependency.ThresholdRepo
	alertRepo     dependency.AlertRepo
	metricRepo    dependency.MetricRepo
	ops           dependency.OpsRepo
	registry      *Registry
	audit         AuditService
	idGen         *idgen.Generator
}

// Register 注册告警阈值，指标名唯一
func (s *thresholdService) Register(ctx context.Context, req *vo.ThresholdReq) core.ServiceError {
	metric := entity.MetricName(req.MetricName)
	if !metric.Valid() {
		return NewSvcValidateError(dependency.NewRepoInternalError(errors.Errorf("未知指标: %s", req.MetricName)))
	}
	if existing, repoErr := s.thresholdRepo.GetByMetric(ctx, metric); repoErr == nil && existing != nil {
		return NewSvcNameSameError(nil)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	threshold := &entity.AlertThreshold{
		MetricName:      metric,
		Severity:        entity.Severity(req.Severity),
		Operator:        entity.CompareOp(req.Operator),
		BoundValue:      req.BoundValue,
		Enabled:         enabled,
		CooldownSeconds: req.CooldownSeconds,
		AutoAction:      req.AutoAction,
		MessageTemplate: req.MessageTemplate,
		CreateTime:      time.Now(),
	}
	if repoErr := s.thresholdRepo.Create(ctx, threshold); repoErr != nil {
		log.Errorf("create threshold failed, metric:%s err:%s", req.MetricName, repoErr.Error())
		return NewSvcInternalError(repoErr)
	}
	s.audit.Record(ctx, "threshold_registered", "alert_threshold", map[string]any{
		"metric": req.MetricName, "operator": req.Operator, "bound": req.BoundValue, "severity": req.Severity,
	})
	return nil
}

// Evaluate 以最近一次系统快照评估全部启用阈值。
// 冷却期内的突破不产生新告警，自动动作失败不影响告警落库
func (s *thresholdService) Evaluate(ctx context.Context) ([]vo.AlertResp, core.ServiceError) {
	sample, repoErr := s.metricRepo.LatestSample(ctx)
	if repoErr != nil {
		log.Errorf("load latest sample failed, err:%s", repoErr.Error())
		return nil, NewSvcNotFoundError(repoErr)
	}
	thresholds, repoErr := s.thresholdRepo.ListEnabled(ctx)
	if repoErr != nil {
		log.Errorf("list thresholds failed, err:%s", repoErr.Error())
		return nil, NewSvcInternalError(repoErr)
	}

	now := time.Now()
	alerts := make([]vo.AlertResp, 0)
	for _, t := range thresholds {
		observed, ok := sample.Value(t.MetricName)
		if !ok {
			continue
		}
		if !t.Operator.Compare(observed, t.BoundValue) {
			continue
		}
		if t.InCooldown(now) {
			continue
		}

		alert := &entity.Alert{
			ID:            s.idGen.NextID(),
			MetricName:    t.MetricName,
			ObservedValue: observed,
			BoundValue:    t.BoundValue,
			Severity:      t.Severity,
			Message:       renderAlertMessage(t, observed),
			State:         entity.AlertStateActive,
			CreatedAt:     now,
		}
		if repoErr := s.alertRepo.Create(ctx, alert); repoErr != nil {
			log.Errorf("create alert failed, metric:%s err:%s", t.MetricName, repoErr.Error())
			continue
		}
		if repoErr := s.thresholdRepo.UpdateLastAlert(ctx, t.MetricName, now); repoErr != nil {
			log.Errorf("update last alert failed, metric:%s err:%s", t.MetricName, repoErr.Error())
		}

		resp := vo.AlertResp{
			AlertID:       alert.ID,
			MetricName:    string(t.MetricName),
			ObservedValue: observed,
			BoundValue:    t.BoundValue,
			Severity:      string(t.Severity),
			Message:       alert.Message,
		}
		if t.AutoAction != "" {
			resp.AutoActionRun = true
			actionErr := s.runAutoAction(ctx, t.AutoAction)
			actionMsg := ""
			if actionErr != nil {
				actionMsg = actionErr.Error()
				log.Errorf("auto action failed, metric:%s action:%s err:%v", t.MetricName, t.AutoAction, actionErr)
			} else {
				resp.AutoActionOK = true
			}
			if repoErr := s.alertRepo.UpdateAutoAction(ctx, alert.ID, resp.AutoActionOK, actionMsg); repoErr != nil {
				log.Errorf("update alert auto action failed, id:%d err:%s", alert.ID, repoErr.Error())
			}
		}
		s.audit.Record(ctx, "alert_raised", "alert", map[string]any{
			"metric": string(t.MetricName), "observed": observed, "bound": t.BoundValue,
			"severity": string(t.Severity), "auto_action": t.AutoAction,
		})
		alerts = append(alerts, resp)
	}
	return alerts, nil
}

// Acknowledge 确认告警
func (s *thresholdService) Acknowledge(ctx context.Context, alertID uint64) core.ServiceError {
	return s.advance(ctx, alertID, entity.AlertStateAcknowledged)
}

// Resolve 解决告警
func (s *thresholdService) Resolve(ctx context.Context, alertID uint64) core.ServiceError {
	return s.advance(ctx, alertID, entity.AlertStateResolved)
}

// advance 告警状态只进不退
func (s *thresholdService) advance(ctx context.Context, alertID uint64, to entity.AlertState) core.ServiceError {
	alert, repoErr := s.alertRepo.Get(ctx, alertID)
	if repoErr != nil {
		return NewSvcNotFoundError(repoErr)
	}
	if !alert.State.CanAdvance(to) {
		return NewSvcPreconditionError(dependency.NewRepoInternalError(
			errors.Errorf("告警状态不允许从 %s 变更为 %s", alert.State, to)))
	}
	if repoErr := s.alertRepo.UpdateState(ctx, alertID, to, time.Now()); repoErr != nil {
		log.Errorf("update alert state failed, id:%d err:%s", alertID, repoErr.Error())
		return NewSvcInternalError(repoErr)
	}
	s.audit.Record(ctx, "alert_"+string(to), "alert", map[string]any{"alert_id": alertID})
	return nil
}

// runAutoAction 优先取注册表中的动作，未注册则按内置动作名构建
func (s *thresholdService) runAutoAction(ctx context.Context, name string) error {
	action, ok := s.registry.AutoAction(name)
	if !ok {
		action, ok = s.registry.ProcedureAction(name)
	}
	if !ok {
		built, err := BuildProcedureAction(s.ops, name, nil)
		if err != nil {
			return err
		}
		s.registry.BindAutoAction(name, built)
		action = built
	}
	_, err := action(ctx)
	return err
}

func renderAlertMessage(t *entity.AlertThreshold, observed float64) string {
	if t.MessageTemplate != "" {
		return fmt.Sprintf(t.MessageTemplate, observed, t.BoundValue)
	}
	return fmt.Sprintf("指标 %s 当前值 %.2f，越过阈值 %.2f", t.MetricName, observed, t.BoundValue)
}
