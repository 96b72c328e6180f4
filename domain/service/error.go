package service

import "devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"

type serviceError struct {
	err     core.RepoError
	ErrType string
}

func (e *serviceError) Error() string {
	if e.err != nil {
		return e.err.Type()
	}
	return e.Type()
}

func (e *serviceError) GetError() core.RepoError {
	return e.err
}

func (e *serviceError) Type() string {
	return e.ErrType
}

func NewSvcInternalError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "InternalError",
	}
}

func NewSvcNotFoundError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "NotFound",
	}
}

func NewSvcNameSameError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "NameExisted",
	}
}

func NewSvcValidateError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "ValidateParamError",
	}
}

func NewSvcExecuteError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "ExecuteError",
	}
}

// NewSvcPreconditionError 前置条件未满足，回滚校验失败等场景
func NewSvcPreconditionError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "PreconditionFailed",
	}
}

// NewSvcBudgetExceededError 处置动作超出执行时间预算
func NewSvcBudgetExceededError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "BudgetExceeded",
	}
}

// NewSvcRollbackBusyError 已有回滚在执行，系统级互斥
func NewSvcRollbackBusyError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "RollbackInProgress",
	}
}

func NewSvcGenerateIDFailedError(err core.RepoError) core.ServiceError {
	return &serviceError{
		err:     err,
		ErrType: "GenerateIDFailed",
	}
}
