package entity

import "time"

// 事件类型
const (
	IncidentTypeSystemFailure          = "system_failure"
	IncidentTypePerformanceDegradation = "performance_degradation"
	IncidentTypeDataCorruption         = "data_corruption"
	IncidentTypeResourceExhaustion     = "resource_exhaustion"
)

// 事件状态，单向推进
type IncidentState string

const (
	IncidentDetected   IncidentState = "detected"
	IncidentResponding IncidentState = "responding"
	IncidentResolved   IncidentState = "resolved"
	IncidentEscalated  IncidentState = "escalated"
	IncidentFailed     IncidentState = "failed"
)

// 允许的状态迁移，终态不可再变
var incidentTransitions = map[IncidentState][]IncidentState{
	IncidentDetected:   {IncidentResponding, IncidentEscalated},
	IncidentResponding: {IncidentResolved, IncidentEscalated, IncidentFailed},
}

// CanTransition 是否允许迁移到 to
func (s IncidentState) CanTransition(to IncidentState) bool {
	for _, next := range incidentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal 是否为终态
func (s IncidentState) Terminal() bool {
	_, ok := incidentTransitions[s]
	return !ok
}

// ResponseAction 单个处置动作的执行记录
type ResponseAction struct {
	Procedure  string    `json:"procedure"`
	Status     string    `json:"status"` // success / failed
	Error      string    `json:"error,omitempty"`
	ErrorType  string    `json:"error_type,omitempty"` // 失败分类：ExecuteError / BudgetExceeded
	ElapsedMS  int64     `json:"elapsed_ms"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Incident 检出的事件及其处置过程
type Incident struct {
	ID              uint64
	Type            string
	Severity        Severity
	Description     string
	Source          string // 检出来源
	Actions         []ResponseAction
	State           IncidentState
	DetectedAt      time.Time
	ResolvedAt      *time.Time
	DurationSeconds float64
	ResolvedBy      string
	BackupUsed      string // 回滚事件使用的备份名
}
