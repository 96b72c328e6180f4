package dependency

import (
	"context"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
)

// CheckRepo 管理 t_integrity_check
type CheckRepo interface {
	Create(ctx context.Context, check *entity.IntegrityCheck) core.RepoError
	GetByName(ctx context.Context, name string) (*entity.IntegrityCheck, core.RepoError)
	ListEnabled(ctx context.Context) ([]*entity.IntegrityCheck, core.RepoError)
	UpdateLastRun(ctx context.Context, name string, status entity.CheckRunStatus, violationCount int64, at time.Time) core.RepoError
	SetEnabled(ctx context.Context, name string, enabled bool) core.RepoError
}

// ViolationRepo 管理 t_integrity_violation
type ViolationRepo interface {
	Create(ctx context.Context, v *entity.IntegrityViolation) core.RepoError
	UpdateAutoFix(ctx context.Context, id uint64, attempted, succeeded bool, fixErr string) core.RepoError
	ListSince(ctx context.Context, since time.Time) ([]*entity.IntegrityViolation, core.RepoError)
}

// MetricRepo 管理指标采样表，仅追加
type MetricRepo interface {
	InsertSample(ctx context.Context, s *entity.MetricSample) core.RepoError
	InsertEntityMetrics(ctx context.Context, ms []*entity.EntityMetric) core.RepoError
	InsertHotOperations(ctx context.Context, ops []*entity.HotOperation) core.RepoError
	LatestSample(ctx context.Context) (*entity.MetricSample, core.RepoError)
	ListSamplesSince(ctx context.Context, since time.Time) ([]*entity.MetricSample, core.RepoError)
}

// ThresholdRepo 管理 t_alert_threshold
type ThresholdRepo interface {
	Create(ctx context.Context, t *entity.AlertThreshold) core.RepoError
	GetByMetric(ctx context.Context, metric entity.MetricName) (*entity.AlertThreshold, core.RepoError)
	ListEnabled(ctx context.Context) ([]*entity.AlertThreshold, core.RepoError)
	UpdateLastAlert(ctx context.Context, metric entity.MetricName, at time.Time) core.RepoError
}

// AlertRepo 管理 t_alert
type AlertRepo interface {
	Create(ctx context.Context, a *entity.Alert) core.RepoError
	Get(ctx context.Context, id uint64) (*entity.Alert, core.RepoError)
	UpdateState(ctx context.Context, id uint64, state entity.AlertState, at time.Time) core.RepoError
	UpdateAutoAction(ctx context.Context, id uint64, ok bool, actionErr string) core.RepoError
	ListSince(ctx context.Context, since time.Time) ([]*entity.Alert, core.RepoError)
}

// ProcedureRepo 管理 t_emergency_procedure
type ProcedureRepo interface {
	Create(ctx context.Context, p *entity.EmergencyProcedure) core.RepoError
	GetByName(ctx context.Context, name string) (*entity.EmergencyProcedure, core.RepoError)
	ListByIncidentType(ctx context.Context, incidentType string) ([]*entity.EmergencyProcedure, core.RepoError)
	RecordExecution(ctx context.Context, name string, at time.Time) core.RepoError
}

// IncidentRepo 管理 t_incident
type IncidentRepo interface {
	Create(ctx context.Context, inc *entity.Incident) core.RepoError
	Get(ctx context.Context, id uint64) (*entity.Incident, core.RepoError)
	UpdateState(ctx context.Context, id uint64, state entity.IncidentState) core.RepoError
	Finalize(ctx context.Context, inc *entity.Incident) core.RepoError
	ListSince(ctx context.Context, since time.Time) ([]*entity.Incident, core.RepoError)
}

// SessionRepo 管理 t_monitoring_session
type SessionRepo interface {
	Create(ctx context.Context, s *entity.MonitoringSession) core.RepoError
	Get(ctx context.Context, id string) (*entity.MonitoringSession, core.RepoError)
	UpdateHeartbeat(ctx context.Context, id string, checks, violations, criticals int64, at time.Time) core.RepoError
	UpdateStatus(ctx context.Context, id string, status entity.SessionStatus, stoppedAt *time.Time) core.RepoError
}

// AuditRepo 管理 t_audit_log，仅追加
type AuditRepo interface {
	Append(ctx context.Context, rec *entity.AuditRecord) core.RepoError
}
