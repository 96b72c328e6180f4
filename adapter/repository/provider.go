package repository

import (
	"database/sql"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/infrastructure/db"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(db.NewDBAccess, NewCheckRepo, NewViolationRepo, NewMetricRepo,
	NewThresholdRepo, NewAlertRepo, NewProcedureRepo, NewIncidentRepo, NewSessionRepo,
	NewAuditRepo, NewProbeRepo, NewOpsRepo, NewStatsReader)

func NewCheckRepo(db *sql.DB) dependency.CheckRepo {
	return &checkRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_integrity_check",
	}
}

func NewViolationRepo(db *sql.DB) dependency.ViolationRepo {
	return &violationRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_integrity_violation",
	}
}

func NewMetricRepo(db *sql.DB) dependency.MetricRepo {
	return &metricRepo{
		Repo:        core.Repo{DB: db},
		SampleTable: "t_metric_sample",
		EntityTable: "t_entity_metric",
		HotOpTable:  "t_hot_operation",
	}
}

func NewThresholdRepo(db *sql.DB) dependency.ThresholdRepo {
	return &thresholdRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_alert_threshold",
	}
}

func NewAlertRepo(db *sql.DB) dependency.AlertRepo {
	return &alertRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_alert",
	}
}

func NewProcedureRepo(db *sql.DB) dependency.ProcedureRepo {
	return &procedureRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_emergency_procedure",
	}
}

func NewIncidentRepo(db *sql.DB) dependency.IncidentRepo {
	return &incidentRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_incident",
	}
}

func NewSessionRepo(db *sql.DB) dependency.SessionRepo {
	return &sessionRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_monitoring_session",
	}
}

func NewAuditRepo(db *sql.DB) dependency.AuditRepo {
	return &auditRepo{
		Repo:      core.Repo{DB: db},
		TableName: "t_audit_log",
	}
}

func NewProbeRepo(db *sql.DB) dependency.ProbeRepo {
	return &probeRepo{Repo: core.Repo{DB: db}}
}

func NewOpsRepo(db *sql.DB) dependency.OpsRepo {
	return &opsRepo{Repo: core.Repo{DB: db}}
}

func NewStatsReader(db *sql.DB, cfg config.MonitorCfg) dependency.StatsReader {
	return &dbStatsReader{
		Repo:              core.Repo{DB: db},
		StorageCapacityMB: cfg.StorageCapacityMB,
	}
}
