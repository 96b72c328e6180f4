package controller

import (
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/locale"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
)

const (
	AutoMigrationGuard_InternalError_Error         = "AutoMigrationGuard.InternalError.InternalError"
	AutoMigrationGuard_BadRequest_InvalidParameter = "AutoMigrationGuard.BadRequest.InvalidParameter"
)

const (
	// 400 Validate
	AutoMigrationGuard_InvalidParameter_Name     = "AutoMigrationGuard.InvalidParameter.NameInvalidParameter"
	AutoMigrationGuard_InvalidParameter_Type     = "AutoMigrationGuard.InvalidParameter.TypeInvalidParameter"
	AutoMigrationGuard_InvalidParameter_Severity = "AutoMigrationGuard.InvalidParameter.SeverityInvalidParameter"
	AutoMigrationGuard_InvalidParameter_Params   = "AutoMigrationGuard.InvalidParameter.ParamsInvalidParameter"
	//400 内部校验
	AutoMigrationGuard_BadRequest_NameExisted        = "AutoMigrationGuard.BadRequest.NameExisted"
	AutoMigrationGuard_BadRequest_ValidateParamError = "AutoMigrationGuard.BadRequest.ValidateParamError"
	// 404
	AutoMigrationGuard_NotFound_Data = "AutoMigrationGuard.NotFound.Data"
	// 409
	AutoMigrationGuard_Conflict_RollbackInProgress = "AutoMigrationGuard.Conflict.RollbackInProgress"
	// 412
	AutoMigrationGuard_PreconditionFailed = "AutoMigrationGuard.PreconditionFailed.PreconditionFailed"
	// 500
	AutoMigrationGuard_InternalError_GenerateIDFailed   = "AutoMigrationGuard.InternalError.GenerateIDFailed"
	AutoMigrationGuard_InternalError_DataConvertFailed  = "AutoMigrationGuard.InternalError.DataConvertFailed"
	AutoMigrationGuard_InternalError_ExecuteSqlError    = "AutoMigrationGuard.InternalError.ExecuteSqlError"
	AutoMigrationGuard_InternalError_ClientRequestError = "AutoMigrationGuard.InternalError.ClientRequestError"
	AutoMigrationGuard_InternalError_ExecuteError       = "AutoMigrationGuard.InternalError.ExecuteError"
	// 504
	AutoMigrationGuard_Timeout_BudgetExceeded = "AutoMigrationGuard.Timeout.BudgetExceeded"
)

var (
	errorCodeList = []string{
		AutoMigrationGuard_InternalError_Error,
		AutoMigrationGuard_BadRequest_InvalidParameter,
		AutoMigrationGuard_InvalidParameter_Name,
		AutoMigrationGuard_InvalidParameter_Type,
		AutoMigrationGuard_InvalidParameter_Severity,
		AutoMigrationGuard_InvalidParameter_Params,
		AutoMigrationGuard_BadRequest_NameExisted,
		AutoMigrationGuard_BadRequest_ValidateParamError,
		AutoMigrationGuard_NotFound_Data,
		AutoMigrationGuard_Conflict_RollbackInProgress,
		AutoMigrationGuard_PreconditionFailed,
		AutoMigrationGuard_InternalError_GenerateIDFailed,
		AutoMigrationGuard_InternalError_DataConvertFailed,
		AutoMigrationGuard_InternalError_ExecuteSqlError,
		AutoMigrationGuard_InternalError_ClientRequestError,
		AutoMigrationGuard_InternalError_ExecuteError,
		AutoMigrationGuard_Timeout_BudgetExceeded,
	}
)

func init() {
	locale.Register()
	// 注册
	rest.Register(errorCodeList)
}
