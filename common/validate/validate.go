package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common"
	"github.com/go-playground/validator/v10"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NameValidation 校验检查/阈值/处置流程名称
func NameValidation(fl validator.FieldLevel) bool {
	fieldValue := fl.Field().Interface().(string)
	if fieldValue == "" {
		return false
	}
	if utf8.RuneCountInString(fieldValue) > 64 {
		return false
	}
	// 不能包含特殊字符
	if bo := strings.ContainsAny(common.SpecialCharacters, fieldValue); bo {
		return false
	}
	return true
}

// IdentifierValidation 校验表名、列名等 SQL 标识符
func IdentifierValidation(fl validator.FieldLevel) bool {
	fieldValue := fl.Field().Interface().(string)
	return IsIdentifier(fieldValue)
}

// IsIdentifier 供服务层复用的标识符校验，检查参数只允许合法标识符
func IsIdentifier(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > 64 {
		return false
	}
	return identifierPattern.MatchString(s)
}
