package entity

import "time"

// 指标名枚举，阈值按名取数，不做运行时字段拼接
type MetricName string

const (
	MetricActiveConnections  MetricName = "active_connections"
	MetricIdleConnections    MetricName = "idle_connections"
	MetricMaxConnections     MetricName = "max_connections"
	MetricLongestOperation   MetricName = "longest_operation_seconds"
	MetricCacheHitRatio      MetricName = "cache_hit_ratio"
	MetricLockWaits          MetricName = "lock_waits"
	MetricDeadlocks          MetricName = "deadlocks"
	MetricStorageUsedPercent MetricName = "storage_used_percent"
	MetricTempResourceMB     MetricName = "temp_resource_mb"
)

var knownMetrics = map[MetricName]bool{
	MetricActiveConnections:  true,
	MetricIdleConnections:    true,
	MetricMaxConnections:     true,
	MetricLongestOperation:   true,
	MetricCacheHitRatio:      true,
	MetricLockWaits:          true,
	MetricDeadlocks:          true,
	MetricStorageUsedPercent: true,
	MetricTempResourceMB:     true,
}

// Valid 是否为已知指标
func (m MetricName) Valid() bool {
	return knownMetrics[m]
}

// MetricSample 系统健康快照，按迁移阶段打标，仅追加
type MetricSample struct {
	ID                    uint64
	Phase                 string
	ActiveConnections     int64
	IdleConnections       int64
	MaxConnections        int64
	LongestOperationSecs  float64
	CacheHitRatio         float64
	LockWaits             int64
	Deadlocks             int64
	StorageUsedPercent    float64
	TempResourceMB        float64
	CollectedAt           time.Time
}

// Value 按指标名读取快照字段
func (s *MetricSample) Value(name MetricName) (float64, bool) {
	switch name {
	case MetricActiveConnections:
		return float64(s.ActiveConnections), true
	case MetricIdleConnections:
		return float64(s.IdleConnections), true
	case MetricMaxConnections:
		return float64(s.MaxConnections), true
	case MetricLongestOperation:
		return s.LongestOperationSecs, true
	case MetricCacheHitRatio:
		return s.CacheHitRatio, true
	case MetricLockWaits:
		return float64(s.LockWaits), true
	case MetricDeadlocks:
		return float64(s.Deadlocks), true
	case MetricStorageUsedPercent:
		return s.StorageUsedPercent, true
	case MetricTempResourceMB:
		return s.TempResourceMB, true
	}
	return 0, false
}

// EntityMetric 单表（资源）足迹快照
type EntityMetric struct {
	ID          uint64
	Phase       string
	TableName   string
	RowCount    int64
	DataMB      float64
	IndexMB     float64
	ReadCount   int64
	WriteCount  int64
	CollectedAt time.Time
}

// HotOperation 慢/高频操作采样
type HotOperation struct {
	ID             uint64
	Phase          string
	Digest         string
	QuerySample    string
	CallCount      int64
	MeanLatencyMS  float64
	TotalLatencyMS float64
	RowsExamined   int64
	CollectedAt    time.Time
}
