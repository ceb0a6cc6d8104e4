package tools

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage 能力不支持该语言
var ErrUnsupportedLanguage = errors.New("unsupported language")

// MissingToolError 外部工具未安装
// 只中止依赖该工具的那一项功能
type MissingToolError struct {
	Tool    string
	Install string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool %q not found in PATH; install it with: %s", e.Tool, e.Install)
}

// IsMissingTool 判断 err 链中是否包含 MissingToolError
func IsMissingTool(err error) (*MissingToolError, bool) {
	var mt *MissingToolError
	if errors.As(err, &mt) {
		return mt, true
	}
	return nil, false
}
