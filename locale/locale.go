package locale

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/kweaver-ai/kweaver-go-lib/i18n"
)

// Register 注册错误码多语言资源，单测模式跳过
func Register() {
	if os.Getenv("I18N_MODE_UT") == "true" {
		return
	}
	_, file, _, _ := runtime.Caller(0)
	i18n.RegisterI18n(filepath.Dir(file))
}
