package entity

import "time"

// 检查类型
type CheckType string

const (
	CheckTypeConstraint   CheckType = "constraint"
	CheckTypeReferential  CheckType = "referential"
	CheckTypeBusinessRule CheckType = "business_rule"
	CheckTypeDataType     CheckType = "data_type"
)

// 严重级别
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityError:    1,
	SeverityWarning:  2,
	SeverityInfo:     3,
}

// Rank 返回排序权重，critical 最小（最先执行）
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Valid 是否为已知级别
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast 级别是否达到 min
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() <= min.Rank()
}

// 单次检查结果状态
type CheckRunStatus string

const (
	CheckRunCompleted CheckRunStatus = "completed"
	CheckRunFailed    CheckRunStatus = "failed"
	CheckRunSkipped   CheckRunStatus = "skipped"
)

// IntegrityCheck 完整性检查定义，只停用不删除
type IntegrityCheck struct {
	Name               string
	Type               CheckType
	Severity           Severity
	Enabled            bool
	AutoFix            bool
	Params             map[string]any // 检查参数，JSON 存储
	IntervalSeconds    int64
	LastRunAt          *time.Time
	LastRunStatus      CheckRunStatus
	LastViolationCount int64
	CreateTime         time.Time
}
