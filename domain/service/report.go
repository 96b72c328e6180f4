package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
)

// 各严重状况对应的处置建议
var conditionAdvice = map[string]string{
	"connection_saturation":         "清理空闲连接或提高连接上限",
	"long_running_operation":        "确认最长操作是否可以终止",
	"blocking_migration_operation":  "暂停迁移写入，排查持锁操作",
	"deadlock_detected":             "检查迁移批次的加锁顺序",
	"storage_exhaustion":            "回收存储空间或扩容",
	"cache_hit_degraded":            "检查缓存配置与热点访问模式",
	"lock_wait_surge":               "降低迁移批次大小，错峰执行",
}

//go:generate mockgen -source ./report.go -destination ../../mock/service/mock_report_service.go -package mock
type ReportService interface {
	GenerateReport(ctx context.Context, hoursBack int) (vo.ReportResp, core.ServiceError)
	EmergencyHealthCheck(ctx context.Context) (vo.HealthCheckResp, core.ServiceError)
}

type reportService struct {
	violationRepo dependency.ViolationRepo
	alertRepo     dependency.AlertRepo
	incidentRepo  dependency.IncidentRepo
	metricRepo    dependency.MetricRepo
	stats         dependency.StatsReader
}

// GenerateReport 汇总时间窗内的违规、告警与事件，输出人读监控报告
func (s *reportService) GenerateReport(ctx context.Context, hoursBack int) (vo.ReportResp, core.ServiceError) {
	if hoursBack <= 0 {
		hoursBack = 24
	}
	now := time.Now()
	since := now.Add(-time.Duration(hoursBack) * time.Hour)

	violations, repoErr := s.violationRepo.ListSince(ctx, since)
	if repoErr != nil {
		log.Errorf("list violations failed, err:%s", repoErr.Error())
		return vo.ReportResp{}, NewSvcInternalError(repoErr)
	}
	alerts, repoErr := s.alertRepo.ListSince(ctx, since)
	if repoErr != nil {
		log.Errorf("list alerts failed, err:%s", repoErr.Error())
		return vo.ReportResp{}, NewSvcInternalError(repoErr)
	}
	incidents, repoErr := s.incidentRepo.ListSince(ctx, since)
	if repoErr != nil {
		log.Errorf("list incidents failed, err:%s", repoErr.Error())
		return vo.ReportResp{}, NewSvcInternalError(repoErr)
	}

	var criticalViolations, fixedViolations int64
	var totalViolationRows int64
	for _, v := range violations {
		totalViolationRows += v.ViolationCount
		if v.Severity == entity.SeverityCritical {
			criticalViolations++
		}
		if v.AutoFixSucceeded {
			fixedViolations++
		}
	}
	var activeAlerts int
	for _, a := range alerts {
		if a.State == entity.AlertStateActive {
			activeAlerts++
		}
	}
	var unresolvedIncidents int
	for _, inc := range incidents {
		if inc.State != entity.IncidentResolved {
			unresolvedIncidents++
		}
	}

	level := vo.ReportHealthy
	switch {
	case criticalViolations > 0 || unresolvedIncidents > 0:
		level = vo.ReportCritical
	case len(violations) > 0 || activeAlerts > 0:
		level = vo.ReportWarning
	}

	var b strings.Builder
	b.WriteString("迁移监控报告\n")
	b.WriteString(fmt.Sprintf("时间窗: 最近 %d 小时（%s ~ %s）\n", hoursBack,
		since.Format("2006-01-02 15:04:05"), now.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("健康级别: %s\n\n", level))

	b.WriteString("== 完整性违规 ==\n")
	b.WriteString(fmt.Sprintf("检出 %d 次，涉及 %d 行，严重 %d 次，自动修复成功 %d 次\n",
		len(violations), totalViolationRows, criticalViolations, fixedViolations))
	for _, v := range violations {
		if v.Severity == entity.SeverityCritical || v.Severity == entity.SeverityError {
			b.WriteString(fmt.Sprintf("  - [%s] %s: %d 行 (%s)\n",
				v.Severity, v.CheckName, v.ViolationCount, v.DetectedAt.Format("15:04:05")))
		}
	}

	b.WriteString("\n== 阈值告警 ==\n")
	b.WriteString(fmt.Sprintf("共 %d 条，未确认 %d 条\n", len(alerts), activeAlerts))
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("  - [%s] %s\n", a.Severity, a.Message))
	}

	b.WriteString("\n== 事件 ==\n")
	b.WriteString(fmt.Sprintf("共 %d 起，未解决 %d 起\n", len(incidents), unresolvedIncidents))
	for _, inc := range incidents {
		b.WriteString(fmt.Sprintf("  - [%s/%s] %s（耗时 %.1fs）\n",
			inc.Type, inc.State, inc.Description, inc.DurationSeconds))
	}

	if sample, repoErr := s.metricRepo.LatestSample(ctx); repoErr == nil && sample != nil {
		b.WriteString("\n== 最近快照 ==\n")
		b.WriteString(fmt.Sprintf("连接 %d/%d，缓存命中 %.1f%%，存储使用 %.1f%%，死锁 %d，锁等待 %d\n",
			sample.ActiveConnections+sample.IdleConnections, sample.MaxConnections,
			sample.CacheHitRatio, sample.StorageUsedPercent, sample.Deadlocks, sample.LockWaits))
	}

	b.WriteString("\n== 建议 ==\n")
	switch level {
	case vo.ReportCritical:
		b.WriteString("  - 存在严重违规或未解决事件，建议暂停迁移并人工介入\n")
	case vo.ReportWarning:
		b.WriteString("  - 存在违规或未确认告警，建议降低迁移速率并持续观察\n")
	default:
		b.WriteString("  - 系统健康，可按计划推进迁移\n")
	}

	return vo.ReportResp{
		HoursBack:   hoursBack,
		GeneratedAt: now.Format(time.RFC3339),
		Report:      b.String(),
	}, nil
}

// EmergencyHealthCheck 迁移切换前的快速体检，
// 命中严重状况给 CRITICAL，只有告警级状况给 WARNING
func (s *reportService) EmergencyHealthCheck(ctx context.Context) (vo.HealthCheckResp, core.ServiceError) {
	sys, repoErr := s.stats.ReadSystem(ctx)
	if repoErr != nil {
		log.Errorf("read system stats failed, err:%s", repoErr.Error())
		return vo.HealthCheckResp{
			Status:          vo.ReportCritical,
			Findings:        []string{"无法读取系统状态: " + repoErr.Error()},
			Recommendations: []string{"确认数据库可达后重试"},
		}, nil
	}

	conditions := evaluateConditions(sys)
	resp := vo.HealthCheckResp{
		Status:          vo.ReportHealthy,
		Findings:        make([]string, 0, len(conditions)),
		Recommendations: make([]string, 0, len(conditions)),
	}
	for _, c := range conditions {
		resp.Findings = append(resp.Findings, fmt.Sprintf("[%s] %s", c.Severity, c.Detail))
		if advice, ok := conditionAdvice[c.Name]; ok {
			resp.Recommendations = append(resp.Recommendations, advice)
		}
		if c.Severity == string(entity.SeverityCritical) {
			resp.Status = vo.ReportCritical
		} else if resp.Status != vo.ReportCritical {
			resp.Status = vo.ReportWarning
		}
	}
	if resp.Status == vo.ReportHealthy {
		resp.Findings = append(resp.Findings, "各项读数正常")
	}
	return resp, nil
}
