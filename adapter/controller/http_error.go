package controller

import (
	"context"
	"fmt"
	"net/http"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"github.com/go-playground/validator/v10"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
)

var (
	ModuleName = "AutoMigrationGuard"
	HTTPError  = map[string]ErrorInfo{
		// 500
		"InternalError": {
			httpCode:  http.StatusInternalServerError,
			errorCode: AutoMigrationGuard_InternalError_Error,
		},
		"GenerateIDFailed": {
			httpCode:  http.StatusInternalServerError,
			errorCode: ModuleName + ".InternalError.GenerateIDFailed",
		},
		"DataConvertFailed": {
			httpCode:  http.StatusInternalServerError,
			errorCode: ModuleName + ".InternalError.DataConvertFailed",
		},
		"ExecuteSqlError": {
			httpCode:  http.StatusInternalServerError,
			errorCode: ModuleName + ".InternalError.ExecuteSqlError",
		},
		"ClientRequestError": {
			httpCode:  http.StatusInternalServerError,
			errorCode: ModuleName + ".InternalError.ClientRequestError",
		},
		"ExecuteError": {
			httpCode:  http.StatusInternalServerError,
			errorCode: ModuleName + ".InternalError.ExecuteError",
		},
		// 400
		"ValidateParamError": {
			httpCode:  http.StatusBadRequest,
			errorCode: ModuleName + ".BadRequest.ValidateParamError",
		},
		"NameExisted": {
			httpCode:  http.StatusBadRequest,
			errorCode: ModuleName + ".BadRequest.NameExisted",
		},
		// http错误 404
		"NotFound": {
			httpCode:  http.StatusNotFound,
			errorCode: ModuleName + ".NotFound.Data",
		},
		// 409 回滚互斥
		"RollbackInProgress": {
			httpCode:  http.StatusConflict,
			errorCode: ModuleName + ".Conflict.RollbackInProgress",
		},
		// 412
		"PreconditionFailed": {
			httpCode:  http.StatusPreconditionFailed,
			errorCode: ModuleName + ".PreconditionFailed.PreconditionFailed",
		},
		// 504 超出时间预算
		"BudgetExceeded": {
			httpCode:  http.StatusGatewayTimeout,
			errorCode: ModuleName + ".Timeout.BudgetExceeded",
		},
	}
	InvalidParameter = ErrorInfo{
		httpCode:  http.StatusBadRequest,
		errorCode: AutoMigrationGuard_BadRequest_InvalidParameter,
	}
)

type ErrorInfo struct {
	httpCode  int
	errorCode string
	format    map[string]interface{}
}

func (errInfo *ErrorInfo) WithFormat(format map[string]interface{}) *ErrorInfo {
	errInfo.format = format
	return errInfo
}

func HandleValidateError(ctx context.Context, err error) *rest.HTTPError {
	for _, e := range err.(validator.ValidationErrors) {
		errInfo := HTTPError["ValidateParamError"]
		errInfo.errorCode = fmt.Sprintf("%s.InvalidParameter.%sInvalidParameter", ModuleName, e.StructField())
		return NewRestHTTPError(ctx, errInfo)
	}
	return NewRestHTTPError(ctx, InvalidParameter)
}

func NewRestHTTPError(ctx context.Context, info ErrorInfo) *rest.HTTPError {
	return rest.NewHTTPError(ctx, info.httpCode, info.errorCode)
}

func HandServiceError(ctx context.Context, err core.ServiceError) *rest.HTTPError {
	info, ok := HTTPError[err.Type()]
	if !ok {
		info = HTTPError["InternalError"]
	}
	return NewRestHTTPError(ctx, info)
}
