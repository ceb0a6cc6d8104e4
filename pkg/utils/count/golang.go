package count

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// goStrategy 使用 go/parser 解析 Go 源文件
// 结构体视为类，嵌入字段视为继承关系
type goStrategy struct{}

func (goStrategy) Language() string { return "Go" }

func (goStrategy) Extract(content []byte) Structure {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", content, parser.SkipObjectResolution)
	if err != nil {
		return goFallback.Extract(content)
	}

	var st Structure
	for _, imp := range f.Imports {
		if imp.Path == nil {
			continue
		}
		if p := strings.Trim(imp.Path.Value, "`\""); p != "" {
			st.Imports = append(st.Imports, p)
		}
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Name == nil || d.Name.Name == "" {
				continue
			}
			name := d.Name.Name
			if recv := receiverName(d); recv != "" {
				name = recv + "." + name
			}
			st.Functions = append(st.Functions, name)
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				s, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				st.Classes = append(st.Classes, ts.Name.Name)
				for _, field := range s.Fields.List {
					if len(field.Names) > 0 {
						continue
					}
					if base := typeName(field.Type); base != "" {
						st.Extends = append(st.Extends, models.ClassRelation{Class: ts.Name.Name, Base: base})
					}
				}
			}
		}
	}
	return st
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	return typeName(fn.Recv.List[0].Type)
}

// typeName 取类型表达式的基础名称，去掉指针、包名与类型参数
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return typeName(t.X)
	case *ast.IndexListExpr:
		return typeName(t.X)
	default:
		return ""
	}
}

// goFallback 语法错误时使用的正则规则
var goFallback = regexStrategy{
	lang:      "Go",
	syntax:    goStyle,
	functions: []*regexp.Regexp{regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s*)?(\w+)`)},
	classes:   []*regexp.Regexp{regexp.MustCompile(`(?m)^type\s+(\w+)\s+struct\b`)},
	imports:   []*regexp.Regexp{regexp.MustCompile(`(?m)^\s*(?:import\s+)?(?:\w+\s+)?"([\w./-]+)"\s*$`)},
}
