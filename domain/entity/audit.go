package entity

import "time"

// AuditRecord 审计记录，仅追加，外部看板消费
type AuditRecord struct {
	ID         uint64
	Action     string
	EntityType string
	Details    string // JSON
	CreatedAt  time.Time
}

// BackupRegistryEntry 备份登记信息，来自备份服务，本服务只读
type BackupRegistryEntry struct {
	Name      string
	Completed bool
	Verified  bool
	StartedAt time.Time
}
