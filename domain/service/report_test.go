package service

import (
	"context"
	"testing"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestReportService(violationRepo *fakeViolationRepo, alertRepo *fakeAlertRepo,
	incidentRepo *fakeIncidentRepo, metricRepo *fakeMetricRepo, stats *fakeStats) *reportService {
	return &reportService{
		violationRepo: violationRepo,
		alertRepo:     alertRepo,
		incidentRepo:  incidentRepo,
		metricRepo:    metricRepo,
		stats:         stats,
	}
}

func emptyReportService() *reportService {
	return newTestReportService(newFakeViolationRepo(), newFakeAlertRepo(),
		newFakeIncidentRepo(), &fakeMetricRepo{}, &fakeStats{sys: healthySystem()})
}

func TestReportService_GenerateReport(t *testing.T) {
	Convey("TestReportService_GenerateReport", t, func() {
		Convey("无任何记录时级别为 HEALTHY", func() {
			resp, err := emptyReportService().GenerateReport(context.Background(), 24)

			So(err, ShouldBeNil)
			So(resp.HoursBack, ShouldEqual, 24)
			So(resp.Report, ShouldContainSubstring, "健康级别: HEALTHY")
			So(resp.Report, ShouldContainSubstring, "可按计划推进迁移")
		})

		Convey("时间窗非法时回落到 24 小时", func() {
			resp, err := emptyReportService().GenerateReport(context.Background(), 0)

			So(err, ShouldBeNil)
			So(resp.HoursBack, ShouldEqual, 24)
		})

		Convey("存在违规时级别为 WARNING", func() {
			svc := emptyReportService()
			svc.violationRepo.(*fakeViolationRepo).list = []*entity.IntegrityViolation{
				{CheckName: "order_null", Severity: entity.SeverityWarning, ViolationCount: 3, DetectedAt: time.Now()},
			}

			resp, err := svc.GenerateReport(context.Background(), 6)

			So(err, ShouldBeNil)
			So(resp.Report, ShouldContainSubstring, "健康级别: WARNING")
			So(resp.Report, ShouldContainSubstring, "降低迁移速率")
		})

		Convey("存在严重违规时级别为 CRITICAL 并逐条列出", func() {
			svc := emptyReportService()
			svc.violationRepo.(*fakeViolationRepo).list = []*entity.IntegrityViolation{
				{CheckName: "order_fk", Severity: entity.SeverityCritical, ViolationCount: 12, DetectedAt: time.Now(), AutoFixSucceeded: true},
			}

			resp, err := svc.GenerateReport(context.Background(), 6)

			So(err, ShouldBeNil)
			So(resp.Report, ShouldContainSubstring, "健康级别: CRITICAL")
			So(resp.Report, ShouldContainSubstring, "order_fk")
			So(resp.Report, ShouldContainSubstring, "暂停迁移并人工介入")
		})

		Convey("未解决事件同样判为 CRITICAL", func() {
			svc := emptyReportService()
			svc.incidentRepo.(*fakeIncidentRepo).list = []*entity.Incident{
				{Type: entity.IncidentTypeResourceExhaustion, State: entity.IncidentEscalated, Description: "连接耗尽"},
			}

			resp, err := svc.GenerateReport(context.Background(), 6)

			So(err, ShouldBeNil)
			So(resp.Report, ShouldContainSubstring, "健康级别: CRITICAL")
			So(resp.Report, ShouldContainSubstring, "未解决 1 起")
		})

		Convey("有最近快照时附带系统读数", func() {
			svc := emptyReportService()
			svc.metricRepo.(*fakeMetricRepo).latest = &entity.MetricSample{
				ActiveConnections: 20, IdleConnections: 5, MaxConnections: 100,
				CacheHitRatio: 97.5, StorageUsedPercent: 41.2,
			}

			resp, err := svc.GenerateReport(context.Background(), 6)

			So(err, ShouldBeNil)
			So(resp.Report, ShouldContainSubstring, "最近快照")
			So(resp.Report, ShouldContainSubstring, "25/100")
		})

		Convey("违规查询失败时返回内部错误", func() {
			svc := emptyReportService()
			svc.violationRepo.(*fakeViolationRepo).listErr = sqlErr()

			_, err := svc.GenerateReport(context.Background(), 6)

			So(err, ShouldNotBeNil)
			So(err.Type(), ShouldEqual, "InternalError")
		})
	})
}

func TestReportService_EmergencyHealthCheck(t *testing.T) {
	Convey("TestReportService_EmergencyHealthCheck", t, func() {
		Convey("读数正常时为 HEALTHY", func() {
			resp, err := emptyReportService().EmergencyHealthCheck(context.Background())

			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, vo.ReportHealthy)
			So(resp.Findings, ShouldContain, "各项读数正常")
		})

		Convey("系统状态不可读时给 CRITICAL 结论而非报错", func() {
			svc := emptyReportService()
			svc.stats.(*fakeStats).sysErr = sqlErr()
			svc.stats.(*fakeStats).sys = nil

			resp, err := svc.EmergencyHealthCheck(context.Background())

			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, vo.ReportCritical)
			So(resp.Recommendations, ShouldContain, "确认数据库可达后重试")
		})

		Convey("命中严重状况时为 CRITICAL 并给出建议", func() {
			sys := healthySystem()
			sys.StorageUsedPercent = 95
			svc := emptyReportService()
			svc.stats.(*fakeStats).sys = sys

			resp, err := svc.EmergencyHealthCheck(context.Background())

			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, vo.ReportCritical)
			So(resp.Recommendations, ShouldContain, "回收存储空间或扩容")
		})

		Convey("只有告警级状况时为 WARNING", func() {
			sys := healthySystem()
			sys.CacheHitRatio = 42
			svc := emptyReportService()
			svc.stats.(*fakeStats).sys = sys

			resp, err := svc.EmergencyHealthCheck(context.Background())

			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, vo.ReportWarning)
			So(resp.Recommendations, ShouldContain, "检查缓存配置与热点访问模式")
		})
	})
}
