package vo

// 汇总状态
const (
	SweepStatusOK       = "OK"
	SweepStatusWarning  = "WARNING"
	SweepStatusError    = "ERROR"
	SweepStatusCritical = "CRITICAL"
)

// ViolationResult 单个检查的执行结果
type ViolationResult struct {
	CheckName        string `json:"check_name"`
	Status           string `json:"status"` // completed / failed / skipped
	Severity         string `json:"severity"`
	ViolationCount   int64  `json:"violation_count"`
	ViolationID      uint64 `json:"violation_id,omitempty"`
	AutoFixAttempted bool   `json:"auto_fix_attempted"`
	AutoFixSucceeded bool   `json:"auto_fix_succeeded"`
	Error            string `json:"error,omitempty"`
	ElapsedMS        int64  `json:"elapsed_ms"`
}

// AggregateResult 全量巡检汇总
type AggregateResult struct {
	TotalChecks        int               `json:"total_checks"`
	TotalViolations    int64             `json:"total_violations"`
	CriticalViolations int64             `json:"critical_violations"`
	ElapsedMS          int64             `json:"elapsed_ms"`
	OverallStatus      string            `json:"overall_status"`
	Results            []ViolationResult `json:"results"`
}
