package controller

import (
	"net/http"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/service"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
)

type IncidentController interface {
	RegisterProcedure(c *gin.Context)
	Respond(c *gin.Context)
	Rollback(c *gin.Context)
}

type incidentController struct {
	emergencyService service.EmergencyService
	rollbackService  service.RollbackService
	validate         *validator.Validate
}

// RegisterProcedure 注册应急处置流程
func (ic *incidentController) RegisterProcedure(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.ProcedureReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	log.Debugf("request register procedure from host:%s ,req:%+v", c.Request.Host, req)
	if err := ic.validate.Struct(&req); err != nil {
		log.Errorf("procedure register validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	if err := ic.emergencyService.RegisterProcedure(c, &req); err != nil {
		log.Errorf("procedure register failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusCreated, vo.BaseResp{Success: 1})
}

// Respond 事件处置
func (ic *incidentController) Respond(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.RespondReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	log.Debugf("request respond incident from host:%s ,req:%+v", c.Request.Host, req)
	if err := ic.validate.Struct(&req); err != nil {
		log.Errorf("respond validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	result, err := ic.emergencyService.Respond(c, &req)
	if err != nil {
		log.Errorf("respond failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, result)
}

// Rollback 紧急回滚
func (ic *incidentController) Rollback(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.RollbackReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	log.Debugf("request rollback from host:%s ,reason:%s force:%v", c.Request.Host, req.Reason, req.Force)
	if err := ic.validate.Struct(&req); err != nil {
		log.Errorf("rollback validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	result, err := ic.rollbackService.ExecuteEmergencyRollback(c, &req)
	if err != nil {
		log.Errorf("rollback failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, result)
}
