package entity

import "time"

// IntegrityViolation 一次检测事件一行，已解决后不可变
type IntegrityViolation struct {
	ID               uint64
	CheckName        string
	ViolationCount   int64
	Details          string // 结构化详情，JSON
	Severity         Severity
	AutoFixAttempted bool
	AutoFixSucceeded bool
	AutoFixError     string
	DetectedAt       time.Time
	ResolvedAt       *time.Time
	ResolvedBy       string
}
