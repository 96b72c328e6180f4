package service

import (
	"context"
	"testing"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestMetricService(metricRepo *fakeMetricRepo, stats *fakeStats) *metricService {
	return &metricService{
		metricRepo: metricRepo,
		stats:      stats,
		idGen:      idgen.New(),
		cfg:        config.MonitorCfg{MinCallCount: 10, HotOperationTopN: 20},
	}
}

func TestMetricService_Collect(t *testing.T) {
	req := &vo.CollectReq{Phase: "during_migration"}

	Convey("TestMetricService_Collect", t, func() {
		Convey("系统快照按阶段打标落库", func() {
			metricRepo := &fakeMetricRepo{}
			svc := newTestMetricService(metricRepo, &fakeStats{sys: healthySystem()})

			resp, err := svc.Collect(context.Background(), req)

			So(err, ShouldBeNil)
			So(resp.Samples, ShouldEqual, 1)
			So(metricRepo.samples, ShouldHaveLength, 1)
			So(metricRepo.samples[0].Phase, ShouldEqual, "during_migration")
			So(metricRepo.samples[0].ActiveConnections, ShouldEqual, 10)
			So(metricRepo.samples[0].ID, ShouldNotEqual, 0)
		})

		Convey("表级足迹与热点操作计入采样数", func() {
			metricRepo := &fakeMetricRepo{}
			svc := newTestMetricService(metricRepo, &fakeStats{
				sys:      healthySystem(),
				entities: []*entity.EntityMetric{{TableName: "t_order"}, {TableName: "t_user"}},
				hotOps:   []*entity.HotOperation{{Digest: "abc", CallCount: 50}},
			})

			resp, err := svc.Collect(context.Background(), req)

			So(err, ShouldBeNil)
			So(resp.Samples, ShouldEqual, 4)
			So(metricRepo.entities, ShouldHaveLength, 2)
			So(metricRepo.entities[0].Phase, ShouldEqual, "during_migration")
			So(metricRepo.hotOps, ShouldHaveLength, 1)
		})

		Convey("系统快照不可读时整轮失败", func() {
			svc := newTestMetricService(&fakeMetricRepo{}, &fakeStats{sysErr: sqlErr()})

			_, err := svc.Collect(context.Background(), req)

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "InternalError")
		})

		Convey("表级采集失败不影响系统快照", func() {
			metricRepo := &fakeMetricRepo{}
			svc := newTestMetricService(metricRepo, &fakeStats{
				sys:    healthySystem(),
				entErr: sqlErr(),
				hotErr: sqlErr(),
			})

			resp, err := svc.Collect(context.Background(), req)

			So(err, ShouldBeNil)
			So(resp.Samples, ShouldEqual, 1)
		})

		Convey("快照落库失败返回内部错误", func() {
			svc := newTestMetricService(&fakeMetricRepo{insertErr: sqlErr()}, &fakeStats{sys: healthySystem()})

			_, err := svc.Collect(context.Background(), req)

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "InternalError")
		})
	})
}

func TestMetricService_Latest(t *testing.T) {
	Convey("TestMetricService_Latest", t, func() {
		Convey("返回最近一次快照", func() {
			svc := newTestMetricService(&fakeMetricRepo{
				latest: &entity.MetricSample{CacheHitRatio: 97},
			}, &fakeStats{})

			sample, err := svc.Latest(context.Background())

			So(err, ShouldBeNil)
			So(sample.CacheHitRatio, ShouldEqual, 97)
		})

		Convey("无快照时返回 NotFound", func() {
			svc := newTestMetricService(&fakeMetricRepo{}, &fakeStats{})

			_, err := svc.Latest(context.Background())

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "NotFound")
		})
	})
}
