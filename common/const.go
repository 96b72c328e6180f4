package common

const (
	// SpecialCharacters 名称字段禁止的特殊字符
	SpecialCharacters = `/\:*?"<>|`

	// ErrorDetailBind 请求体解析失败的错误前缀
	ErrorDetailBind = "request body bind failed: "
)
