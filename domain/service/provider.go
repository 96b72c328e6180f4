package service

import (
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewRegistry, NewAuditService, NewCheckService, NewMetricService,
	NewThresholdService, NewDetectorService, NewEmergencyService, NewRollbackService,
	NewSessionService, NewReportService)

func NewAuditService(auditRepo dependency.AuditRepo, producer core.EventProducer, idGen *idgen.Generator) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		producer:  producer,
		idGen:     idGen,
	}
}

func NewCheckService(checkRepo dependency.CheckRepo, violationRepo dependency.ViolationRepo,
	probe dependency.ProbeRepo, registry *Registry, audit AuditService, idGen *idgen.Generator,
	cfg config.MonitorCfg) CheckService {
	return &checkService{
		checkRepo:     checkRepo,
		violationRepo: violationRepo,
		probe:         probe,
		registry:      registry,
		audit:         audit,
		idGen:         idGen,
		cfg:           cfg,
	}
}

func NewMetricService(metricRepo dependency.MetricRepo, stats dependency.StatsReader,
	idGen *idgen.Generator, cfg config.MonitorCfg) MetricService {
	return &metricService{
		metricRepo: metricRepo,
		stats:      stats,
		idGen:      idGen,
		cfg:        cfg,
	}
}

func NewThresholdService(thresholdRepo dependency.ThresholdRepo, alertRepo dependency.AlertRepo,
	metricRepo dependency.MetricRepo, ops dependency.OpsRepo, registry *Registry,
	audit AuditService, idGen *idgen.Generator) ThresholdService {
	return &thresholdService{
		thresholdRepo: thresholdRepo,
		alertRepo:     alertRepo,
		metricRepo:    metricRepo,
		ops:           ops,
		registry:      registry,
		audit:         audit,
		idGen:         idGen,
	}
}

func NewDetectorService(stats dependency.StatsReader) DetectorService {
	return &detectorService{
		stats: stats,
	}
}

func NewEmergencyService(procedureRepo dependency.ProcedureRepo, incidentRepo dependency.IncidentRepo,
	ops dependency.OpsRepo, registry *Registry, audit AuditService, idGen *idgen.Generator,
	cfg config.MonitorCfg) EmergencyService {
	return &emergencyService{
		procedureRepo: procedureRepo,
		incidentRepo:  incidentRepo,
		ops:           ops,
		registry:      registry,
		audit:         audit,
		idGen:         idGen,
		cfg:           cfg,
	}
}

func NewRollbackService(incidentRepo dependency.IncidentRepo, backup dependency.BackupServiceClient,
	lock core.RollbackLock, audit AuditService, idGen *idgen.Generator, cfg config.MonitorCfg) RollbackService {
	return &rollbackService{
		incidentRepo: incidentRepo,
		backup:       backup,
		lock:         lock,
		audit:        audit,
		idGen:        idGen,
		cfg:          cfg,
	}
}

func NewSessionService(sessionRepo dependency.SessionRepo, audit AuditService) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		audit:       audit,
	}
}

func NewReportService(violationRepo dependency.ViolationRepo, alertRepo dependency.AlertRepo,
	incidentRepo dependency.IncidentRepo, metricRepo dependency.MetricRepo,
	stats dependency.StatsReader) ReportService {
	return &reportService{
		violationRepo: violationRepo,
		alertRepo:     alertRepo,
		incidentRepo:  incidentRepo,
		metricRepo:    metricRepo,
		stats:         stats,
	}
}
