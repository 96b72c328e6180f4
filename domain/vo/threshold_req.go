package vo

// ThresholdReq 告警阈值注册请求体
type ThresholdReq struct {
	MetricName      string  `mapstructure:"metric_name" form:"metric_name" json:"metric_name" validate:"required"`
	Severity        string  `mapstructure:"severity" form:"severity" json:"severity" validate:"required,oneof=info warning error critical"`
	Operator        string  `mapstructure:"operator" form:"operator" json:"operator" validate:"required,oneof=gt gte lt lte eq ne"`
	BoundValue      float64 `mapstructure:"bound_value" form:"bound_value" json:"bound_value"`
	Enabled         *bool   `mapstructure:"enabled" form:"enabled" json:"enabled"`
	CooldownSeconds int64   `mapstructure:"cooldown_seconds" form:"cooldown_seconds" json:"cooldown_seconds" validate:"omitempty,gte=0"`
	AutoAction      string  `mapstructure:"auto_action" form:"auto_action" json:"auto_action"`
	MessageTemplate string  `mapstructure:"message_template" form:"message_template" json:"message_template"`
}
