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

type SessionController interface {
	Start(c *gin.Context)
	Heartbeat(c *gin.Context)
	Stop(c *gin.Context)
}

type sessionController struct {
	sessionService service.SessionService
	validate       *validator.Validate
}

// Start 启动监控会话
func (sc *sessionController) Start(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	req := vo.SessionStartReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	if err := sc.validate.Struct(&req); err != nil {
		log.Errorf("session start validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	result, err := sc.sessionService.Start(c, &req)
	if err != nil {
		log.Errorf("session start failed err:%s", err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusCreated, result)
}

// Heartbeat 会话心跳
func (sc *sessionController) Heartbeat(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	sessionID := c.Param("session_id")
	req := vo.HeartbeatReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	if err := sc.validate.Struct(&req); err != nil {
		log.Errorf("heartbeat validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	if err := sc.sessionService.Heartbeat(c, sessionID, &req); err != nil {
		log.Errorf("heartbeat failed, session:%s err:%s", sessionID, err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusAccepted, vo.BaseResp{Success: 1})
}

// Stop 停止会话并返回摘要
func (sc *sessionController) Stop(c *gin.Context) {
	ctx := rest.GetLanguageCtx(c)
	sessionID := c.Param("session_id")
	req := vo.SessionStopReq{}
	if err := c.ShouldBind(&req); err != nil {
		httpErr := NewRestHTTPError(ctx, InvalidParameter).WithErrorDetails(common.ErrorDetailBind + err.Error())
		rest.ReplyError(c, httpErr)
		return
	}
	if err := sc.validate.Struct(&req); err != nil {
		log.Errorf("session stop validate err:%s", err.Error())
		httpErr := HandleValidateError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	summary, err := sc.sessionService.Stop(c, sessionID, &req)
	if err != nil {
		log.Errorf("session stop failed, session:%s err:%s", sessionID, err.Error())
		httpErr := HandServiceError(ctx, err)
		rest.ReplyError(c, httpErr)
		return
	}
	rest.ReplyOK(c, http.StatusOK, summary)
}
