package count

import (
	"regexp"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

var (
	pyFunc       = regexp.MustCompile(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+(\w+)[ \t]*\(`)
	pyClass      = regexp.MustCompile(`(?m)^[ \t]*class[ \t]+(\w+)[ \t]*(?:\(([^)]*)\))?[ \t]*:`)
	pyImport     = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+([\w.]+(?:[ \t]*,[ \t]*[\w.]+)*)`)
	pyFromImport = regexp.MustCompile(`(?m)^[ \t]*from[ \t]+([\w.]+)[ \t]+import\b`)
	pyTripleStr  = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''`)
)

// pythonStrategy 按行首定义统计 Python 的函数与类，嵌套定义和方法都计入
type pythonStrategy struct{}

func (pythonStrategy) Language() string { return "Python" }

func (pythonStrategy) Extract(content []byte) Structure {
	// 文档字符串中的示例代码不计入
	src := pyTripleStr.ReplaceAllFunc(content, blankOut)

	var st Structure
	for _, m := range pyFunc.FindAllSubmatch(src, -1) {
		st.Functions = append(st.Functions, string(m[1]))
	}
	for _, m := range pyClass.FindAllSubmatch(src, -1) {
		name := string(m[1])
		st.Classes = append(st.Classes, name)
		for _, base := range strings.Split(string(m[2]), ",") {
			base = strings.TrimSpace(base)
			if base == "" || base == "object" || strings.Contains(base, "=") {
				continue
			}
			st.Extends = append(st.Extends, models.ClassRelation{Class: name, Base: base})
		}
	}

	var imports []string
	for _, m := range pyImport.FindAllSubmatch(src, -1) {
		for _, name := range strings.Split(string(m[1]), ",") {
			imports = append(imports, strings.TrimSpace(name))
		}
	}
	for _, m := range pyFromImport.FindAllSubmatch(src, -1) {
		imports = append(imports, string(m[1]))
	}
	st.Imports = uniqueSorted(imports)
	return st
}

// blankOut 保留换行，其余字符替换为空格
func blankOut(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c == '\n' {
			out[i] = '\n'
		} else {
			out[i] = ' '
		}
	}
	return out
}
