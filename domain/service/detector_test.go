package service

import (
	"context"
	"testing"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	. "github.com/smartystreets/goconvey/convey"
)

func healthySystem() *dependency.SystemStats {
	return &dependency.SystemStats{
		ActiveConnections:    10,
		IdleConnections:      5,
		MaxConnections:       100,
		LongestOperationSecs: 30,
		CacheHitRatio:        99,
		LockWaits:            3,
		Deadlocks:            0,
		StorageUsedPercent:   40,
	}
}

func conditionNames(conditions []vo.CriticalCondition) []string {
	names := make([]string, 0, len(conditions))
	for _, c := range conditions {
		names = append(names, c.Name)
	}
	return names
}

func TestEvaluateConditions(t *testing.T) {
	Convey("TestEvaluateConditions", t, func() {
		Convey("健康读数不命中任何状况", func() {
			So(evaluateConditions(healthySystem()), ShouldBeEmpty)
		})

		Convey("连接占用达到 90% 命中 connection_saturation", func() {
			sys := healthySystem()
			sys.ActiveConnections = 85
			sys.IdleConnections = 5

			names := conditionNames(evaluateConditions(sys))

			So(names, ShouldContain, "connection_saturation")
		})

		Convey("最长操作超过 1800 秒命中 long_running_operation", func() {
			sys := healthySystem()
			sys.LongestOperationSecs = 1801
			sys.LongestOperationInfo = "ALTER TABLE t_order ADD COLUMN"

			conditions := evaluateConditions(sys)

			So(conditionNames(conditions), ShouldContain, "long_running_operation")
			found := false
			for _, c := range conditions {
				if c.Name == "long_running_operation" {
					found = true
					So(c.Detail, ShouldContainSubstring, "ALTER TABLE t_order")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("迁移操作长时间持锁命中 blocking_migration_operation", func() {
			sys := healthySystem()
			sys.BlockingMigrationOps = 2

			So(conditionNames(evaluateConditions(sys)), ShouldContain, "blocking_migration_operation")
		})

		Convey("死锁命中 deadlock_detected", func() {
			sys := healthySystem()
			sys.Deadlocks = 1

			So(conditionNames(evaluateConditions(sys)), ShouldContain, "deadlock_detected")
		})

		Convey("存储使用率 90% 命中 storage_exhaustion", func() {
			sys := healthySystem()
			sys.StorageUsedPercent = 90

			So(conditionNames(evaluateConditions(sys)), ShouldContain, "storage_exhaustion")
		})

		Convey("缓存命中率低于 50% 命中 cache_hit_degraded", func() {
			sys := healthySystem()
			sys.CacheHitRatio = 42

			So(conditionNames(evaluateConditions(sys)), ShouldContain, "cache_hit_degraded")
		})

		Convey("缓存命中率为 0 视为无读数，不命中", func() {
			sys := healthySystem()
			sys.CacheHitRatio = 0

			So(conditionNames(evaluateConditions(sys)), ShouldNotContain, "cache_hit_degraded")
		})

		Convey("锁等待超过 100 命中 lock_wait_surge", func() {
			sys := healthySystem()
			sys.LockWaits = 101

			So(conditionNames(evaluateConditions(sys)), ShouldContain, "lock_wait_surge")
		})
	})
}

func TestDetectorService_Detect(t *testing.T) {
	Convey("TestDetectorService_Detect", t, func() {
		newSvc := func(stats *fakeStats) *detectorService {
			return &detectorService{stats: stats}
		}

		Convey("读数失败返回 InternalError", func() {
			svc := newSvc(&fakeStats{sysErr: sqlErr()})

			_, err := svc.Detect(context.Background())

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "InternalError")
		})

		Convey("零命中为 healthy", func() {
			svc := newSvc(&fakeStats{sys: healthySystem()})

			verdict, err := svc.Detect(context.Background())

			So(err, ShouldBeNil)
			So(verdict.Status, ShouldEqual, vo.VerdictHealthy)
		})

		Convey("1~2 条命中为 degraded，重复检测结论一致", func() {
			sys := healthySystem()
			sys.LockWaits = 200
			svc := newSvc(&fakeStats{sys: sys})

			verdict, err := svc.Detect(context.Background())
			again, errAgain := svc.Detect(context.Background())

			So(err, ShouldBeNil)
			So(verdict.Status, ShouldEqual, vo.VerdictDegraded)
			So(errAgain, ShouldBeNil)
			So(again.Status, ShouldEqual, verdict.Status)
		})

		Convey("超过 2 条命中为 critical", func() {
			sys := healthySystem()
			sys.LockWaits = 200
			sys.Deadlocks = 3
			sys.StorageUsedPercent = 95
			svc := newSvc(&fakeStats{sys: sys})

			verdict, err := svc.Detect(context.Background())

			So(err, ShouldBeNil)
			So(verdict.Status, ShouldEqual, vo.VerdictCritical)
			So(verdict.Conditions, ShouldHaveLength, 3)
		})
	})
}
