package __1_0

import (
	"fmt"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/infrastructure/db"
	_ "github.com/kweaver-ai/proton-rds-sdk-go/driver"
)

var tableDDL = []struct {
	name string
	ddl  string
}{
	{"t_integrity_check", `
CREATE TABLE IF NOT EXISTS t_integrity_check (
    f_name VARCHAR(64) NOT NULL PRIMARY KEY,
    f_type VARCHAR(32) NOT NULL,
    f_severity VARCHAR(16) NOT NULL,
    f_params TEXT NOT NULL,
    f_interval_seconds INT NOT NULL DEFAULT 300,
    f_auto_fix TINYINT(1) NOT NULL DEFAULT 0,
    f_enabled TINYINT(1) NOT NULL DEFAULT 1,
    f_last_run_at DATETIME NULL,
    f_last_run_status VARCHAR(16) NULL,
    f_last_violation_count BIGINT NOT NULL DEFAULT 0,
    f_create_time DATETIME NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_integrity_violation", `
CREATE TABLE IF NOT EXISTS t_integrity_violation (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_check_name VARCHAR(64) NOT NULL,
    f_severity VARCHAR(16) NOT NULL,
    f_violation_count BIGINT NOT NULL,
    f_details TEXT NOT NULL,
    f_auto_fix_attempted TINYINT(1) NOT NULL DEFAULT 0,
    f_auto_fix_succeeded TINYINT(1) NOT NULL DEFAULT 0,
    f_auto_fix_error VARCHAR(512) NOT NULL DEFAULT '',
    f_detected_at DATETIME NOT NULL,
    f_resolved_at DATETIME NULL,
    f_resolved_by VARCHAR(64) NULL,
    KEY idx_violation_check (f_check_name),
    KEY idx_violation_detected (f_detected_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_metric_sample", `
CREATE TABLE IF NOT EXISTS t_metric_sample (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_phase VARCHAR(32) NOT NULL,
    f_active_connections INT NOT NULL,
    f_idle_connections INT NOT NULL,
    f_max_connections INT NOT NULL,
    f_longest_operation_secs DOUBLE NOT NULL,
    f_cache_hit_ratio DOUBLE NOT NULL,
    f_lock_waits BIGINT NOT NULL,
    f_deadlocks BIGINT NOT NULL,
    f_storage_used_percent DOUBLE NOT NULL,
    f_temp_resource_mb DOUBLE NOT NULL,
    f_collected_at DATETIME NOT NULL,
    KEY idx_sample_collected (f_collected_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_entity_metric", `
CREATE TABLE IF NOT EXISTS t_entity_metric (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_phase VARCHAR(32) NOT NULL,
    f_table_name VARCHAR(128) NOT NULL,
    f_row_count BIGINT NOT NULL,
    f_data_mb DOUBLE NOT NULL,
    f_index_mb DOUBLE NOT NULL,
    f_read_count BIGINT NOT NULL,
    f_write_count BIGINT NOT NULL,
    f_collected_at DATETIME NOT NULL,
    KEY idx_entity_collected (f_collected_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_hot_operation", `
CREATE TABLE IF NOT EXISTS t_hot_operation (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_phase VARCHAR(32) NOT NULL,
    f_digest VARCHAR(64) NOT NULL,
    f_query_sample TEXT NOT NULL,
    f_call_count BIGINT NOT NULL,
    f_total_latency_ms DOUBLE NOT NULL,
    f_mean_latency_ms DOUBLE NOT NULL,
    f_rows_examined BIGINT NOT NULL,
    f_collected_at DATETIME NOT NULL,
    KEY idx_hot_collected (f_collected_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_alert_threshold", `
CREATE TABLE IF NOT EXISTS t_alert_threshold (
    f_metric_name VARCHAR(64) NOT NULL PRIMARY KEY,
    f_severity VARCHAR(16) NOT NULL,
    f_operator VARCHAR(8) NOT NULL,
    f_bound_value DOUBLE NOT NULL,
    f_enabled TINYINT(1) NOT NULL DEFAULT 1,
    f_cooldown_seconds INT NOT NULL DEFAULT 0,
    f_last_alert_at DATETIME NULL,
    f_auto_action VARCHAR(64) NOT NULL DEFAULT '',
    f_message_template VARCHAR(512) NOT NULL DEFAULT '',
    f_create_time DATETIME NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_alert", `
CREATE TABLE IF NOT EXISTS t_alert (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_metric_name VARCHAR(64) NOT NULL,
    f_severity VARCHAR(16) NOT NULL,
    f_state VARCHAR(16) NOT NULL,
    f_observed_value DOUBLE NOT NULL,
    f_bound_value DOUBLE NOT NULL,
    f_message VARCHAR(512) NOT NULL,
    f_auto_action_run VARCHAR(64) NOT NULL DEFAULT '',
    f_auto_action_ok TINYINT(1) NOT NULL DEFAULT 0,
    f_auto_action_error VARCHAR(512) NOT NULL DEFAULT '',
    f_created_at DATETIME NOT NULL,
    f_acknowledged_at DATETIME NULL,
    f_resolved_at DATETIME NULL,
    KEY idx_alert_metric (f_metric_name),
    KEY idx_alert_created (f_created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_emergency_procedure", `
CREATE TABLE IF NOT EXISTS t_emergency_procedure (
    f_name VARCHAR(64) NOT NULL PRIMARY KEY,
    f_incident_type VARCHAR(32) NOT NULL,
    f_min_severity VARCHAR(16) NOT NULL,
    f_action VARCHAR(64) NOT NULL,
    f_compensation_action VARCHAR(64) NOT NULL DEFAULT '',
    f_params TEXT NOT NULL,
    f_budget_seconds INT NOT NULL DEFAULT 60,
    f_auto_execute TINYINT(1) NOT NULL DEFAULT 0,
    f_execution_count BIGINT NOT NULL DEFAULT 0,
    f_last_executed_at DATETIME NULL,
    f_create_time DATETIME NOT NULL,
    KEY idx_procedure_type (f_incident_type)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_incident", `
CREATE TABLE IF NOT EXISTS t_incident (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_type VARCHAR(32) NOT NULL,
    f_severity VARCHAR(16) NOT NULL,
    f_source VARCHAR(64) NOT NULL,
    f_description TEXT NOT NULL,
    f_state VARCHAR(16) NOT NULL,
    f_actions TEXT NOT NULL,
    f_detected_at DATETIME NOT NULL,
    f_resolved_at DATETIME NULL,
    f_duration_seconds DOUBLE NOT NULL DEFAULT 0,
    f_resolved_by VARCHAR(64) NOT NULL DEFAULT '',
    f_backup_used VARCHAR(128) NOT NULL DEFAULT '',
    KEY idx_incident_detected (f_detected_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_monitoring_session", `
CREATE TABLE IF NOT EXISTS t_monitoring_session (
    f_id VARCHAR(64) NOT NULL PRIMARY KEY,
    f_status VARCHAR(16) NOT NULL,
    f_phase VARCHAR(32) NOT NULL,
    f_config TEXT NOT NULL,
    f_started_at DATETIME NOT NULL,
    f_last_heartbeat DATETIME NOT NULL,
    f_stopped_at DATETIME NULL,
    f_checks_performed BIGINT NOT NULL DEFAULT 0,
    f_violations_found BIGINT NOT NULL DEFAULT 0,
    f_critical_violations BIGINT NOT NULL DEFAULT 0
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
	{"t_audit_log", `
CREATE TABLE IF NOT EXISTS t_audit_log (
    f_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
    f_action VARCHAR(64) NOT NULL,
    f_entity_type VARCHAR(64) NOT NULL,
    f_details TEXT NOT NULL,
    f_created_at DATETIME NOT NULL,
    KEY idx_audit_created (f_created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`},
}

func InitDataBase() {
	conn, err := db.ConnectDB()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect database '%s': %v", db.DataBaseName, err))
	}
	// 1. 创建数据库（如果不存在）
	createDBSQL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;", db.DataBaseName)
	_, err = conn.Exec(createDBSQL)
	if err != nil {
		panic(fmt.Sprintf("Failed to create database '%s': %v", db.DataBaseName, err))
	}
	fmt.Printf("✅ Database '%s' created or already exists.\n", db.DataBaseName)

	// 2. 切换到业务库
	_, err = conn.Exec("USE " + db.DataBaseName)
	if err != nil {
		panic(fmt.Sprintf("Failed to use database '%s': %v", db.DataBaseName, err))
	}

	// 3. 建表（如果不存在）
	for _, t := range tableDDL {
		if _, err = conn.Exec(t.ddl); err != nil {
			panic(fmt.Sprintf("Failed to create table '%s': %v", t.name, err))
		}
		fmt.Printf("✅ Table '%s' created or already exists.\n", t.name)
	}
}
