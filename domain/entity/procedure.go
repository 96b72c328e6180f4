package entity

import "time"

// EmergencyProcedure 预置应急处置流程，名称唯一
type EmergencyProcedure struct {
	Name               string
	IncidentType       string
	MinSeverity        Severity // 达到该级别才参与处置
	Action             string   // 处置动作标识，注册表内解析
	Params             map[string]any
	AutoExecute        bool
	BudgetSeconds      int64 // 执行时间预算，超时按失败记录
	CompensationAction string
	ExecutionCount     int64
	LastExecutedAt     *time.Time
	CreateTime         time.Time
}
