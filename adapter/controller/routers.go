package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
)

type HandlerRoute struct {
	mc MonitorController
	ic IncidentController
	sc SessionController
}

func (r *HandlerRoute) SetRouter(app *gin.Engine) {
	app.GET("/health", func(c *gin.Context) {
		rest.ReplyOK(c, http.StatusOK, nil)
	})
	group := app.Group("/api/itops_migration_guard/v1/")
	group.POST("checks", r.mc.RegisterCheck)
	group.POST("checks/execute", r.mc.ExecuteAllChecks)
	group.POST("checks/:check_name/execute", r.mc.ExecuteCheck)
	group.POST("metrics/collect", r.mc.Collect)
	group.POST("thresholds", r.mc.RegisterThreshold)
	group.POST("thresholds/evaluate", r.mc.EvaluateThresholds)
	group.PUT("alerts/:alert_id/acknowledge", r.mc.AcknowledgeAlert)
	group.PUT("alerts/:alert_id/resolve", r.mc.ResolveAlert)
	group.GET("conditions", r.mc.Detect)
	group.GET("report", r.mc.Report)
	group.GET("health_check", r.mc.EmergencyHealthCheck)
	group.POST("procedures", r.ic.RegisterProcedure)
	group.POST("incidents/respond", r.ic.Respond)
	group.POST("rollback", r.ic.Rollback)
	group.POST("sessions", r.sc.Start)
	group.PUT("sessions/:session_id/heartbeat", r.sc.Heartbeat)
	group.PUT("sessions/:session_id/stop", r.sc.Stop)
}
