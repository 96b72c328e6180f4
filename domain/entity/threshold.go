package entity

import "time"

// 阈值比较运算符
type CompareOp string

const (
	OpGT  CompareOp = "gt"
	OpGTE CompareOp = "gte"
	OpLT  CompareOp = "lt"
	OpLTE CompareOp = "lte"
	OpEQ  CompareOp = "eq"
	OpNE  CompareOp = "ne"
)

// Valid 是否为已知运算符
func (op CompareOp) Valid() bool {
	switch op {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpNE:
		return true
	}
	return false
}

// Compare 观测值与界限值比较
func (op CompareOp) Compare(observed, bound float64) bool {
	switch op {
	case OpGT:
		return observed > bound
	case OpGTE:
		return observed >= bound
	case OpLT:
		return observed < bound
	case OpLTE:
		return observed <= bound
	case OpEQ:
		return observed == bound
	case OpNE:
		return observed != bound
	}
	return false
}

// AlertThreshold 指标告警阈值，指标名唯一
type AlertThreshold struct {
	MetricName      MetricName
	Severity        Severity
	Operator        CompareOp
	BoundValue      float64
	Enabled         bool
	CooldownSeconds int64
	LastAlertAt     *time.Time
	AutoAction      string // 可选自动动作，空为无
	MessageTemplate string // 含 %.2f 观测值/界限值占位
	CreateTime      time.Time
}

// InCooldown 冷却期内不允许重复告警
func (t *AlertThreshold) InCooldown(now time.Time) bool {
	if t.LastAlertAt == nil {
		return false
	}
	return now.Sub(*t.LastAlertAt) < time.Duration(t.CooldownSeconds)*time.Second
}
