// Package examples 从测试函数和文档注释中收集用法示例
//
// Python：test_ 开头的函数，以及文档字符串中含 example 或 >>> 的函数和类。
// Go：_test.go 中的 ExampleXxx 与 TestXxx，以及文档注释中含 example 的声明。
package examples

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

const (
	KindTest    = "test"
	KindExample = "example"
	KindDoc     = "doc"
)

// Extract 读取失败或无法解析的文件被跳过
func Extract(ctx context.Context, root string, files []models.FileRecord) ([]models.UsageExample, error) {
	var out []models.UsageExample
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var extract func(string, []byte) []models.UsageExample
		switch f.Language {
		case "Python":
			extract = fromPython
		case "Go":
			extract = fromGo
		default:
			continue
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			continue
		}
		out = append(out, extract(f.Path, content)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

func mentionsExample(doc string) bool {
	return strings.Contains(strings.ToLower(doc), "example") || strings.Contains(doc, ">>>")
}

var (
	pyHeader    = regexp.MustCompile(`^\s*(?:async\s+def|def|class)\s+(\w+)`)
	pyDocOpen   = regexp.MustCompile(`^\s*[rRuU]?("""|''')`)
	pyClassHead = regexp.MustCompile(`^\s*class\s`)
)

func fromPython(file string, content []byte) []models.UsageExample {
	lines := strings.Split(string(content), "\n")
	var out []models.UsageExample
	for i := 0; i < len(lines); i++ {
		m := pyHeader.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		name := m[1]
		isClass := pyClassHead.MatchString(lines[i])
		body := headerEnd(lines, i) + 1
		doc := pyDocstring(lines, body)

		switch {
		case !isClass && strings.HasPrefix(name, "test_"):
			out = append(out, models.UsageExample{File: file, Line: i + 1, Name: name, Kind: KindTest, Doc: doc})
		case mentionsExample(doc):
			out = append(out, models.UsageExample{File: file, Line: i + 1, Name: name, Kind: KindDoc, Doc: doc})
		}
	}
	return out
}

// headerEnd 多行签名时返回以 : 结尾的那一行
func headerEnd(lines []string, start int) int {
	for j := start; j < len(lines); j++ {
		text := lines[j]
		if k := strings.IndexByte(text, '#'); k >= 0 {
			text = text[:k]
		}
		if strings.HasSuffix(strings.TrimSpace(text), ":") {
			return j
		}
	}
	return start
}

// pyDocstring 函数体第一条语句为三引号字符串时返回去掉缩进的内容
func pyDocstring(lines []string, from int) string {
	i := from
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return ""
	}
	m := pyDocOpen.FindStringSubmatchIndex(lines[i])
	if m == nil {
		return ""
	}
	quote := lines[i][m[2]:m[3]]
	rest := lines[i][m[3]:]
	if end := strings.Index(rest, quote); end >= 0 {
		return strings.TrimSpace(rest[:end])
	}

	doc := []string{strings.TrimSpace(rest)}
	for j := i + 1; j < len(lines); j++ {
		if end := strings.Index(lines[j], quote); end >= 0 {
			doc = append(doc, strings.TrimSpace(lines[j][:end]))
			break
		}
		doc = append(doc, strings.TrimSpace(lines[j]))
	}
	return strings.TrimSpace(strings.Join(doc, "\n"))
}

func fromGo(file string, content []byte) []models.UsageExample {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, content, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil
	}
	isTest := strings.HasSuffix(file, "_test.go")
	var out []models.UsageExample
	add := func(pos token.Pos, name, kind string, doc *ast.CommentGroup) {
		out = append(out, models.UsageExample{
			File: file,
			Line: fset.Position(pos).Line,
			Name: name,
			Kind: kind,
			Doc:  strings.TrimSpace(doc.Text()),
		})
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			switch {
			case isTest && d.Recv == nil && strings.HasPrefix(name, "Example"):
				add(d.Pos(), name, KindExample, d.Doc)
			case isTest && d.Recv == nil && strings.HasPrefix(name, "Test"):
				add(d.Pos(), name, KindTest, d.Doc)
			case mentionsExample(d.Doc.Text()):
				add(d.Pos(), name, KindDoc, d.Doc)
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				if mentionsExample(doc.Text()) {
					add(ts.Pos(), ts.Name.Name, KindDoc, doc)
				}
			}
		}
	}
	return out
}

// Format usage-examples.txt 中的一行
func Format(e models.UsageExample) string {
	line := e.File + ": " + e.Name
	if e.Kind != KindDoc {
		line += "()"
	}
	line += " [" + e.Kind + "]"
	if e.Doc != "" {
		line += " -> " + strings.ReplaceAll(e.Doc, "\n", " ")
	}
	return line
}
