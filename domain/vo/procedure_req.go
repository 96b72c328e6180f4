package vo

// ProcedureReq 应急处置流程注册请求体
type ProcedureReq struct {
	Name               string         `mapstructure:"name" form:"name" json:"name" validate:"required,checkName"`
	IncidentType       string         `mapstructure:"incident_type" form:"incident_type" json:"incident_type" validate:"required"`
	MinSeverity        string         `mapstructure:"min_severity" form:"min_severity" json:"min_severity" validate:"required,oneof=info warning error critical"`
	Action             string         `mapstructure:"action" form:"action" json:"action" validate:"required"`
	Params             map[string]any `mapstructure:"params" form:"params" json:"params"`
	AutoExecute        bool           `mapstructure:"auto_execute" form:"auto_execute" json:"auto_execute"`
	BudgetSeconds      int64          `mapstructure:"budget_seconds" form:"budget_seconds" json:"budget_seconds" validate:"omitempty,gte=1"`
	CompensationAction string         `mapstructure:"compensation_action" form:"compensation_action" json:"compensation_action"`
}

// RespondReq 事件处置请求体
type RespondReq struct {
	IncidentType    string `mapstructure:"incident_type" form:"incident_type" json:"incident_type" validate:"required"`
	Severity        string `mapstructure:"severity" form:"severity" json:"severity" validate:"required,oneof=info warning error critical"`
	Description     string `mapstructure:"description" form:"description" json:"description" validate:"required"`
	AutoExecuteOnly bool   `mapstructure:"auto_execute_only" form:"auto_execute_only" json:"auto_execute_only"`
}

// RollbackReq 紧急回滚请求体
type RollbackReq struct {
	Reason string `mapstructure:"reason" form:"reason" json:"reason" validate:"required"`
	Force  bool   `mapstructure:"force" form:"force" json:"force"`
}
