package tools

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
)

// GoCycloScorer 在进程内计算 Go 文件的平均圈复杂度
type GoCycloScorer struct{}

// Score 每个函数从 1 开始，遇到分支与短路运算加 1，取平均值；没有函数时返回 1
func (GoCycloScorer) Score(ctx context.Context, path, lang string) (float64, error) {
	if lang != "Go" {
		return 0, ErrUnsupportedLanguage
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return 0, err
	}
	return goComplexity(f), nil
}

func goComplexity(f *ast.File) float64 {
	var sum, n int
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		sum += cyclomatic(fn.Body)
		n++
	}
	if n == 0 {
		return 1
	}
	return float64(sum) / float64(n)
}

func cyclomatic(body ast.Node) int {
	c := 1
	ast.Inspect(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt:
			c++
		case *ast.CaseClause:
			if x.List != nil {
				c++
			}
		case *ast.CommClause:
			if x.Comm != nil {
				c++
			}
		case *ast.BinaryExpr:
			if x.Op == token.LAND || x.Op == token.LOR {
				c++
			}
		}
		return true
	})
	return c
}
