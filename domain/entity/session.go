package entity

import "time"

// 会话状态
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionPaused  SessionStatus = "paused"
	SessionStopped SessionStatus = "stopped"
	SessionError   SessionStatus = "error"
)

// Valid 是否为已知状态
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionPaused, SessionStopped, SessionError:
		return true
	}
	return false
}

// MonitoringSession 一个迁移阶段的监控会话。
// 心跳上报的计数是权威快照而非增量，stop 直接读取最后一次写入。
type MonitoringSession struct {
	ID                 string
	Phase              string
	Config             string // 会话配置原文，JSON
	StartedAt          time.Time
	LastHeartbeat      time.Time
	Status             SessionStatus
	ChecksPerformed    int64
	ViolationsFound    int64
	CriticalViolations int64
	StoppedAt          *time.Time
}
