package vo

import (
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
)

type BaseResp struct {
	Success int `json:"success"`
}

// 健康结论
const (
	VerdictHealthy  = "healthy"
	VerdictDegraded = "degraded"
	VerdictCritical = "critical"
)

// CriticalCondition 单条命中的严重状况
type CriticalCondition struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// HealthVerdict 严重状况检测结论
type HealthVerdict struct {
	Status     string              `json:"status"` // healthy / degraded / critical
	Conditions []CriticalCondition `json:"conditions"`
	CheckedAt  time.Time           `json:"checked_at"`
}

// AlertResp 阈值评估返回的告警
type AlertResp struct {
	AlertID       uint64  `json:"alert_id"`
	MetricName    string  `json:"metric_name"`
	ObservedValue float64 `json:"observed_value"`
	BoundValue    float64 `json:"bound_value"`
	Severity      string  `json:"severity"`
	Message       string  `json:"message"`
	AutoActionRun bool    `json:"auto_action_run"`
	AutoActionOK  bool    `json:"auto_action_ok"`
}

// ResponseLog 事件处置过程
type ResponseLog struct {
	IncidentID uint64                  `json:"incident_id"`
	State      string                  `json:"state"`
	ElapsedMS  int64                   `json:"elapsed_ms"`
	Actions    []entity.ResponseAction `json:"actions"`
}

// 回滚结果状态
const (
	RollbackStatusSuccess          = "success"
	RollbackStatusFailed           = "failed"
	RollbackStatusValidationFailed = "validation_failed"
)

// RollbackResult 紧急回滚结果
type RollbackResult struct {
	Status          string  `json:"status"`
	IncidentID      uint64  `json:"incident_id"`
	BackupUsed      string  `json:"backup_used,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	Error           string  `json:"error,omitempty"`
	Recommendation  string  `json:"recommendation,omitempty"`
}

// SessionResp 会话创建返回
type SessionResp struct {
	SessionID string `json:"session_id"`
}

// SessionSummary 会话停止摘要，计数取最后一次心跳快照
type SessionSummary struct {
	SessionID          string    `json:"session_id"`
	Phase              string    `json:"phase"`
	Status             string    `json:"status"`
	StartedAt          time.Time `json:"started_at"`
	StoppedAt          time.Time `json:"stopped_at"`
	ChecksPerformed    int64     `json:"checks_performed"`
	ViolationsFound    int64     `json:"violations_found"`
	CriticalViolations int64     `json:"critical_violations"`
}

// 报告健康级别
const (
	ReportHealthy  = "HEALTHY"
	ReportWarning  = "WARNING"
	ReportCritical = "CRITICAL"
)

// HealthCheckResp 紧急健康检查结论
type HealthCheckResp struct {
	Status          string   `json:"status"` // HEALTHY / WARNING / CRITICAL
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

// ReportResp 人读监控报告
type ReportResp struct {
	HoursBack   int    `json:"hours_back"`
	GeneratedAt string `json:"generated_at"`
	Report      string `json:"report"`
}

// CollectResp 指标采集返回
type CollectResp struct {
	Samples int `json:"samples"`
}
