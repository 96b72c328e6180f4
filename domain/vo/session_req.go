package vo

// SessionStartReq 启动监控会话
type SessionStartReq struct {
	Phase  string         `mapstructure:"phase" form:"phase" json:"phase" validate:"required"`
	Config map[string]any `mapstructure:"config" form:"config" json:"config"`
}

// HeartbeatReq 会话心跳，计数为权威快照而非增量
type HeartbeatReq struct {
	ChecksPerformed    int64 `mapstructure:"checks_performed" form:"checks_performed" json:"checks_performed" validate:"gte=0"`
	ViolationsFound    int64 `mapstructure:"violations_found" form:"violations_found" json:"violations_found" validate:"gte=0"`
	CriticalViolations int64 `mapstructure:"critical_violations" form:"critical_violations" json:"critical_violations" validate:"gte=0"`
}

// SessionStopReq 停止监控会话
type SessionStopReq struct {
	FinalStatus string `mapstructure:"final_status" form:"final_status" json:"final_status" validate:"omitempty,oneof=stopped error"`
}

// CollectReq 指标采集请求，携带当前迁移阶段
type CollectReq struct {
	Phase string `mapstructure:"phase" form:"phase" json:"phase" validate:"required"`
}
