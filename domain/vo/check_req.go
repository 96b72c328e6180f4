package vo

// CheckReq 完整性检查注册请求体
type CheckReq struct {
	Name            string         `mapstructure:"name" form:"name" json:"name" validate:"required,checkName"`
	Type            string         `mapstructure:"type" form:"type" json:"type" validate:"required,oneof=constraint referential business_rule data_type"`
	Severity        string         `mapstructure:"severity" form:"severity" json:"severity" validate:"required,oneof=info warning error critical"`
	Enabled         *bool          `mapstructure:"enabled" form:"enabled" json:"enabled"`
	AutoFix         bool           `mapstructure:"auto_fix" form:"auto_fix" json:"auto_fix"`
	IntervalSeconds int64          `mapstructure:"interval_seconds" form:"interval_seconds" json:"interval_seconds" validate:"omitempty,gte=1"`
	Params          map[string]any `mapstructure:"params" form:"params" json:"params" validate:"required"`
}

// ReferentialParams referential 检查参数
type ReferentialParams struct {
	ChildTable   string `mapstructure:"child_table"`
	FkColumn     string `mapstructure:"fk_column"`
	ParentTable  string `mapstructure:"parent_table"`
	PkColumn     string `mapstructure:"pk_column"`
	DeleteOrphan bool   `mapstructure:"delete_orphan"` // 自动修复时删除孤儿行
}

// ConstraintParams constraint 检查参数
type ConstraintParams struct {
	Table        string `mapstructure:"table"`
	Column       string `mapstructure:"column"`
	Kind         string `mapstructure:"kind"` // not_null / unique
	DefaultValue string `mapstructure:"default_value"`
}

// RangeParams business_rule 检查参数，数值越界
type RangeParams struct {
	Table  string  `mapstructure:"table"`
	Column string  `mapstructure:"column"`
	Min    float64 `mapstructure:"min"`
	Max    float64 `mapstructure:"max"`
}

// CastParams data_type 检查参数
type CastParams struct {
	Table      string `mapstructure:"table"`
	Column     string `mapstructure:"column"`
	TargetType string `mapstructure:"target_type"` // 目标类型，如 UNSIGNED、DATETIME
}
