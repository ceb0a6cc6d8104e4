package count

import (
	"fmt"
	"path"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// purposeHints 文件名关键字到用途说明，按顺序匹配第一个
var purposeHints = []struct {
	keys    []string
	purpose string
}{
	{[]string{"test"}, "(testing module)"},
	{[]string{"util", "helper"}, "(utility module)"},
	{[]string{"config"}, "(configuration)"},
	{[]string{"model"}, "(data model)"},
	{[]string{"controller", "route"}, "(request handler)"},
	{[]string{"service"}, "(business logic)"},
}

// Summarize 根据语言、类、函数和文件名生成一句话的文件摘要
func Summarize(rec models.FileRecord) string {
	parts := []string{rec.Language + " file"}
	if len(rec.ClassNames) > 0 {
		parts = append(parts, fmt.Sprintf("defines %d class(es): %s", len(rec.ClassNames), strings.Join(head(rec.ClassNames, 3), ", ")))
	}
	if len(rec.FunctionNames) > 0 {
		parts = append(parts, fmt.Sprintf("contains %d function(s): %s", len(rec.FunctionNames), strings.Join(head(rec.FunctionNames, 3), ", ")))
	}

	name := strings.ToLower(path.Base(rec.Path))
	for _, h := range purposeHints {
		if containsAny(name, h.keys) {
			parts = append(parts, h.purpose)
			break
		}
	}
	return strings.Join(parts, " ")
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
