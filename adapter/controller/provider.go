package controller

import (
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/validate"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/service"
	"github.com/go-playground/validator/v10"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewValidator, NewMonitorController, NewIncidentController,
	NewSessionController, NewHandlerRoute, NewRouterQuote)

func NewValidator() *validator.Validate {
	va := validator.New()
	if err := va.RegisterValidation("checkName", validate.NameValidation); err != nil {
		log.Errorf("register checkName validation err:%s", err.Error())
	}
	if err := va.RegisterValidation("identifier", validate.IdentifierValidation); err != nil {
		log.Errorf("register identifier validation err:%s", err.Error())
	}
	return va
}

// NewHandlerRoute 返回模板的路由
func NewHandlerRoute(monitorController MonitorController, incidentController IncidentController,
	sessionController SessionController) core.HttpRouter {
	return &HandlerRoute{
		mc: monitorController,
		ic: incidentController,
		sc: sessionController,
	}
}

// NewRouterQuote 返回路由引用列表
func NewRouterQuote(handlerRoute core.HttpRouter) *core.RouterQuote {
	return &core.RouterQuote{Routes: []core.HttpRouter{
		handlerRoute,
	}}
}

// NewMonitorController 返回监控控制器
func NewMonitorController(validate *validator.Validate, checkService service.CheckService,
	metricService service.MetricService, thresholdService service.ThresholdService,
	detectorService service.DetectorService, reportService service.ReportService) MonitorController {
	return &monitorController{
		checkService:     checkService,
		metricService:    metricService,
		thresholdService: thresholdService,
		detectorService:  detectorService,
		reportService:    reportService,
		validate:         validate,
	}
}

// NewIncidentController 返回事件控制器
func NewIncidentController(validate *validator.Validate, emergencyService service.EmergencyService,
	rollbackService service.RollbackService) IncidentController {
	return &incidentController{
		emergencyService: emergencyService,
		rollbackService:  rollbackService,
		validate:         validate,
	}
}

// NewSessionController 返回会话控制器
func NewSessionController(validate *validator.Validate, sessionService service.SessionService) SessionController {
	return &sessionController{
		sessionService: sessionService,
		validate:       validate,
	}
}
