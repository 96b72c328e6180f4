package entity

import "time"

// 告警生命周期，只进不退
type AlertState string

const (
	AlertStateActive       AlertState = "active"
	AlertStateAcknowledged AlertState = "acknowledged"
	AlertStateResolved     AlertState = "resolved"
)

var alertStateOrder = map[AlertState]int{
	AlertStateActive:       0,
	AlertStateAcknowledged: 1,
	AlertStateResolved:     2,
}

// CanAdvance 状态只允许向前推进
func (s AlertState) CanAdvance(to AlertState) bool {
	from, ok1 := alertStateOrder[s]
	dst, ok2 := alertStateOrder[to]
	if !ok1 || !ok2 {
		return false
	}
	return dst > from
}

// Alert 阈值突破产生的告警
type Alert struct {
	ID              uint64
	MetricName      MetricName
	ObservedValue   float64
	BoundValue      float64
	Severity        Severity
	Message         string
	AutoActionRun   bool
	AutoActionOK    bool
	AutoActionError string
	State           AlertState
	CreatedAt       time.Time
	AcknowledgedAt  *time.Time
	ResolvedAt      *time.Time
}
