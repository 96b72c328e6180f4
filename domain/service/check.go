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
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source ./check.go -destination ../../mock/service/mock_check_service.go -package mock
type CheckService interface {
	Register(ctx context.Context, req *vo.CheckReq) core.ServiceError
	Execute(ctx context.Context, name string) (vo.ViolationResult, core.ServiceError)
	ExecuteAll(ctx context.Context) (vo.AggregateResult, core.ServiceError)
}

type checkService struct {
	checkRepo     dependency.CheckRepo
	violationRepo dependency.ViolationRepo
	probe         dependency.ProbeRepo
	registry      *Registry
	audit         AuditService
	idGen         *idgen.Generator
	cfg           config.MonitorCfg
}

// Register 注册完整性检查。定义落库，可执行逻辑进注册表
func (s *checkService) Register(ctx context.Context, req *vo.CheckReq) core.ServiceError {
	logic, err := BuildCheckLogic(s.probe, entity.CheckType(req.Type), req.Params)
	if err != nil {
		log.Errorf("build check logic failed, name:%s err:%v", req.Name, err)
		return NewSvcValidateError(dependency.NewRepoInternalError(err))
	}

	if existing, repoErr := s.checkRepo.GetByName(ctx, req.Name); repoErr == nil && existing != nil {
		return NewSvcNameSameError(nil)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	interval := req.IntervalSeconds
	if interval <= 0 {
		interval = 300
	}
	check := &entity.IntegrityCheck{
		Name:            req.Name,
		Type:            entity.CheckType(req.Type),
		Severity:        entity.Severity(req.Severity),
		Enabled:         enabled,
		AutoFix:         req.AutoFix,
		Params:          req.Params,
		IntervalSeconds: interval,
		CreateTime:      time.Now(),
	}
	if repoErr := s.checkRepo.Create(ctx, check); repoErr != nil {
		log.Errorf("create check failed, name:%s err:%s", req.Name, repoErr.Error())
		return NewSvcInternalError(repoErr)
	}
	s.registry.BindCheck(req.Name, logic)
	s.audit.Record(ctx, "check_registered", "integrity_check", map[string]any{
		"name": req.Name, "type": req.Type, "severity": req.Severity, "auto_fix": req.AutoFix,
	})
	return nil
}

// Execute 执行单个检查
func (s *checkService) Execute(ctx context.Context, name string) (vo.ViolationResult, core.ServiceError) {
	check, repoErr := s.checkRepo.GetByName(ctx, name)
	if repoErr != nil {
		return vo.ViolationResult{}, NewSvcNotFoundError(repoErr)
	}
	return s.runOne(ctx, check), nil
}

// ExecuteAll 全量巡检。按严重级别从高到低排序，有限并发执行，
// 单个检查失败只记为 failed，不终止巡检
func (s *checkService) ExecuteAll(ctx context.Context) (vo.AggregateResult, core.ServiceError) {
	start := time.Now()
	checks, repoErr := s.checkRepo.ListEnabled(ctx)
	if repoErr != nil {
		log.Errorf("list enabled checks failed, err:%s", repoErr.Error())
		return vo.AggregateResult{}, NewSvcInternalError(repoErr)
	}
	// critical 最先执行，同级按名称稳定
	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Severity.Rank() != checks[j].Severity.Rank() {
			return checks[i].Severity.Rank() < checks[j].Severity.Rank()
		}
		return checks[i].Name < checks[j].Name
	})

	results := make([]vo.ViolationResult, len(checks))
	workers := s.cfg.CheckWorkers
	if workers <= 0 {
		workers = 4
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, check := range checks {
		i, check := i, check
		eg.Go(func() error {
			results[i] = s.runOne(egCtx, check)
			return nil
		})
	}
	_ = eg.Wait()

	agg := vo.AggregateResult{
		TotalChecks: len(checks),
		Results:     results,
		ElapsedMS:   time.Since(start).Milliseconds(),
	}
	for _, r := range results {
		agg.TotalViolations += r.ViolationCount
		if r.Severity == string(entity.SeverityCritical) {
			agg.CriticalViolations += r.ViolationCount
		}
	}
	switch {
	case agg.CriticalViolations > 0:
		agg.OverallStatus = vo.SweepStatusCritical
	case agg.TotalViolations > 10:
		agg.OverallStatus = vo.SweepStatusError
	case agg.TotalViolations > 0:
		agg.OverallStatus = vo.SweepStatusWarning
	default:
		agg.OverallStatus = vo.SweepStatusOK
	}
	s.audit.Record(ctx, "check_sweep", "integrity_check", map[string]any{
		"total_checks": agg.TotalChecks, "total_violations": agg.TotalViolations,
		"critical_violations": agg.CriticalViolations, "status": agg.OverallStatus,
	})
	return agg, nil
}

// runOne 执行一条检查并更新其最近执行状态
func (s *checkService) runOne(ctx context.Context, check *entity.IntegrityCheck) (result vo.ViolationResult) {
	start := time.Now()
	result = vo.ViolationResult{
		CheckName: check.Name,
		Severity:  string(check.Severity),
	}
	// 检查逻辑 panic 不终止巡检
	defer func() {
		if r := recover(); r != nil {
			result.Status = string(entity.CheckRunFailed)
			result.Error = fmt.Sprintf("check panic: %v", r)
			result.ElapsedMS = time.Since(start).Milliseconds()
			s.recordRun(check.Name, entity.CheckRunFailed, 0)
		}
	}()

	if !check.Enabled {
		result.Status = string(entity.CheckRunSkipped)
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}

	logic, ok := s.registry.CheckLogic(check.Name)
	if !ok {
		// 服务重启后注册表为空，按落库参数重建逻辑
		rebuilt, err := BuildCheckLogic(s.probe, check.Type, check.Params)
		if err != nil {
			result.Status = string(entity.CheckRunFailed)
			result.Error = err.Error()
			result.ElapsedMS = time.Since(start).Milliseconds()
			s.recordRun(check.Name, entity.CheckRunFailed, 0)
			return result
		}
		s.registry.BindCheck(check.Name, rebuilt)
		logic = rebuilt
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.CheckTimeout*time.Second)
	defer cancel()
	count, details, err := logic.Evaluate(runCtx)
	if err != nil {
		result.Status = string(entity.CheckRunFailed)
		result.Error = err.Error()
		result.ElapsedMS = time.Since(start).Milliseconds()
		s.recordRun(check.Name, entity.CheckRunFailed, 0)
		return result
	}

	result.Status = string(entity.CheckRunCompleted)
	result.ViolationCount = count
	if count == 0 {
		result.ElapsedMS = time.Since(start).Milliseconds()
		s.recordRun(check.Name, entity.CheckRunCompleted, 0)
		return result
	}

	// 先落违规记录，严重级别取自检查定义
	detailJSON, marshalErr := sonic.Marshal(details)
	if marshalErr != nil {
		detailJSON = []byte("{}")
	}
	violation := &entity.IntegrityViolation{
		ID:             s.idGen.NextID(),
		CheckName:      check.Name,
		ViolationCount: count,
		Details:        string(detailJSON),
		Severity:       check.Severity,
		DetectedAt:     time.Now(),
	}
	if repoErr := s.violationRepo.Create(context.Background(), violation); repoErr != nil {
		log.Errorf("create violation failed, check:%s err:%s", check.Name, repoErr.Error())
		result.Status = string(entity.CheckRunFailed)
		result.Error = repoErr.Error()
		result.ElapsedMS = time.Since(start).Milliseconds()
		s.recordRun(check.Name, entity.CheckRunFailed, count)
		return result
	}
	result.ViolationID = violation.ID

	// 自动修复在独立工作单元内执行，修复失败不影响违规记录与其他检查
	if check.AutoFix && logic.Fix != nil {
		result.AutoFixAttempted = true
		fixCtx, fixCancel := context.WithTimeout(context.Background(), s.cfg.FixTimeout*time.Second)
		fixErr := s.runFix(fixCtx, logic)
		fixCancel()
		fixMsg := ""
		if fixErr != nil {
			fixMsg = fixErr.Error()
			log.Errorf("auto fix failed, check:%s err:%v", check.Name, fixErr)
		} else {
			result.AutoFixSucceeded = true
		}
		if repoErr := s.violationRepo.UpdateAutoFix(context.Background(), violation.ID, true, result.AutoFixSucceeded, fixMsg); repoErr != nil {
			log.Errorf("update violation auto fix failed, check:%s err:%s", check.Name, repoErr.Error())
		}
	}

	s.recordRun(check.Name, entity.CheckRunCompleted, count)
	s.audit.Record(ctx, "violation_detected", "integrity_violation", map[string]any{
		"check": check.Name, "count": count, "severity": string(check.Severity),
		"auto_fix_attempted": result.AutoFixAttempted, "auto_fix_succeeded": result.AutoFixSucceeded,
	})
	result.ElapsedMS = time.Since(start).Milliseconds()
	return result
}

// runFix 自动修复，panic 按失败处理
func (s *checkService) runFix(ctx context.Context, logic *CheckLogic) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errors.Errorf("fix panic: %v", r)
			}
		}()
		done <- logic.Fix(ctx)
	}()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "自动修复超出时间预算")
	case err := <-done:
		return err
	}
}

func (s *checkService) recordRun(name string, status entity.CheckRunStatus, count int64) {
	if repoErr := s.checkRepo.UpdateLastRun(context.Background(), name, status, count, time.Now()); repoErr != nil {
		log.Errorf("update check last run failed, name:%s err:%s", name, repoErr.Error())
	}
}
