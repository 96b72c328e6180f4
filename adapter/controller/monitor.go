package controller

import (
	"context"
	"net/http"
	"strconv"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/service"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
	"github.com/spf13/cast"
)

type MonitorController interface {
	RegisterCheck(c *gin.Context)
	ExecuteCheck(c *gin.Context)
	ExecuteAllChecks(c *gin.Context)
	Collect(c *gin.Context)
	RegisterThreshold(c *gin.Context)
	EvaluateThresholds(c *gin.Context)
	AcknowledgeAlert(c *gin.Context)
	ResolveAlert(c *gin.Context)
	Detect(c *gin.Context)
	Report(c *gin.Context)
	EmergencyHealthCheck(c *gin.Context)
}

type monitorController struct {
	checkService     service.CheckService
	metricService    service.MetricService
	thresholdService service.ThresholdService
	detectorService  service.DetectorService
	reportService    service.ReportService
	validate         *validator.Validate
}

// RegisterCheck 注册完整性检查
func (mc *monitorController) RegisterCheck(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.CheckReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	log.Debugf("request register check from host:%s ,req:%+v", c.Request.Host, req)
	if err := mc.validate.Struct(&req); err != nil {
		log.Errorf("check register validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	if err := mc.checkService.Register(c, &req); err != nil {
		log.Errorf("check register failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusCreated, vo.BaseResp{Success: 1})
}

// ExecuteCheck 执行单个检查
func (mc *monitorController) ExecuteCheck(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	name := c.Param("check_name")
	result, err := mc.checkService.Execute(c, name)
	if err != nil {
		log.Errorf("check execute failed, name:%s err:%s", name, err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, result)
}

// ExecuteAllChecks 全量巡检
func (mc *monitorController) ExecuteAllChecks(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	result, err := mc.checkService.ExecuteAll(c)
	if err != nil {
		log.Errorf("check sweep failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, result)
}

// Collect 指标采集
func (mc *monitorController) Collect(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.CollectReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	if err := mc.validate.Struct(&req); err != nil {
		log.Errorf("collect validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	result, err := mc.metricService.Collect(c, &req)
	if err != nil {
		log.Errorf("collect failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, result)
}

// RegisterThreshold 注册告警阈值
func (mc *monitorController) RegisterThreshold(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.ThresholdReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	log.Debugf("request register threshold from host:%s ,req:%+v", c.Request.Host, req)
	if err := mc.validate.Struct(&req); err != nil {
		log.Errorf("threshold register validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	if err := mc.thresholdService.Register(c, &req); err != nil {
		log.Errorf("threshold register failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusCreated, vo.BaseResp{Success: 1})
}

// EvaluateThresholds 以最近快照评估全部阈值
func (mc *monitorController) EvaluateThresholds(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	alerts, err := mc.thresholdService.Evaluate(c)
	if err != nil {
		log.Errorf("threshold evaluate failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, alerts)
}

// AcknowledgeAlert 确认告警
func (mc *monitorController) AcknowledgeAlert(c *gin.Context) {
	mc.advanceAlert(c, mc.thresholdService.Acknowledge)
}

// ResolveAlert 解决告警
func (mc *monitorController) ResolveAlert(c *gin.Context) {
	mc.advanceAlert(c, mc.thresholdService.Resolve)
}

func (mc *monitorController) advanceAlert(c *gin.Context, advance func(ctx context.Context, alertID uint64) core.ServiceError) {
	ctx := rest.GetLanguageCtx(c)
	alertID, err := strconv.ParseUint(c.Param("alert_id"), 10, 64)
	if err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	if svcErr := advance(c, alertID); svcErr != nil {
		log.Errorf("alert state change failed, id:%d err:%s", alertID, svcErr.Error())
		httpErr := HandServiceError(ctx, svcErr)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusAccepted, vo.BaseResp{Success: 1})
}

// Detect 严重状况检测
func (mc *monitorController) Detect(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	verdict, err := mc.detectorService.Detect(c)
	if err != nil {
		log.Errorf("detect failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, verdict)
}

// Report 人读监控报告
func (mc *monitorController) Report(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	hoursBack := cast.ToInt(c.DefaultQuery("hours_back", "24"))
	report, err := mc.reportService.GenerateReport(c, hoursBack)
	if err != nil {
		log.Errorf("report failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, report)
}

// EmergencyHealthCheck 切换前快速体检
func (mc *monitorController) EmergencyHealthCheck(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	result, err := mc.reportService.EmergencyHealthCheck(c)
	if err != nil {
		log.Errorf("emergency health check failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, result)
}
