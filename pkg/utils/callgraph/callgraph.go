// Package callgraph 从 Python 和 Go 源文件中提取项目内的函数调用关系
//
// 节点为 path:function，方法写作 path:Type.method。只保留能解析到项目内定义的调用，
// 标准库、第三方库和无法确定接收者的方法调用被丢弃
package callgraph

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/deps"
)

// call 函数体中的一次调用
type call struct {
	name   string
	method bool // self.name(...) 或 recv.name(...)
}

type funcDef struct {
	file  string
	name  string // 函数名或 Type.method
	owner string // 方法所属的类型
	calls []call
}

func (d funcDef) id() string { return d.file + ":" + d.name }

// Build 读取 root 下的 Python 与 Go 文件构建调用图，读取或解析失败的文件被跳过
func Build(ctx context.Context, root string, files []models.FileRecord) (*deps.Graph, error) {
	var defs []funcDef
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var extract func(string, []byte) []funcDef
		switch f.Language {
		case "Python":
			extract = pythonDefs
		case "Go":
			extract = goDefs
		default:
			continue
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			continue
		}
		defs = append(defs, extract(f.Path, content)...)
	}
	return link(defs), nil
}

// Edges 图中的调用边，按 from、to 排序
func Edges(g *deps.Graph) []models.CallEdge {
	edges := g.Edges()
	out := make([]models.CallEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, models.CallEdge{From: e.From, To: e.To})
	}
	return out
}

// link 解析调用目标：Go 在同一包（目录）内查找；
// Python 方法在同一类内查找，普通调用先查同一文件，再查项目内唯一的同名顶层函数
func link(defs []funcDef) *deps.Graph {
	g := deps.NewGraph(deps.KeepSelfLoops())
	byFile := map[string]map[string]string{}
	goPkg := map[string]map[string][]string{}
	pyGlobal := map[string][]string{}
	for _, d := range defs {
		g.AddNode(d.id())
		if isGo(d.file) {
			dir := path.Dir(d.file)
			if goPkg[dir] == nil {
				goPkg[dir] = map[string][]string{}
			}
			goPkg[dir][d.name] = append(goPkg[dir][d.name], d.id())
			continue
		}
		if byFile[d.file] == nil {
			byFile[d.file] = map[string]string{}
		}
		byFile[d.file][d.name] = d.id()
		if d.owner == "" {
			pyGlobal[d.name] = append(pyGlobal[d.name], d.id())
		}
	}

	for _, d := range defs {
		for _, c := range d.calls {
			name := c.name
			if c.method {
				if d.owner == "" {
					continue
				}
				name = d.owner + "." + c.name
			}
			var target string
			switch {
			case isGo(d.file):
				target = single(goPkg[path.Dir(d.file)][name])
			case c.method:
				target = byFile[d.file][name]
			default:
				if id, ok := byFile[d.file][name]; ok {
					target = id
				} else {
					target = single(pyGlobal[name])
				}
			}
			if target != "" {
				g.AddEdge(d.id(), target)
			}
		}
	}
	return g
}

func isGo(file string) bool { return strings.HasSuffix(file, ".go") }

func single(ids []string) string {
	if len(ids) == 1 {
		return ids[0]
	}
	return ""
}

var (
	pyDef       = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)`)
	pyClass     = regexp.MustCompile(`^(\s*)class\s+(\w+)`)
	pyCall      = regexp.MustCompile(`(?:\b(self|cls)\.|(\.))?\b([A-Za-z_]\w*)\s*\(`)
	pyTriple    = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''`)
	pyStringLit = regexp.MustCompile(`'(?:\\.|[^'\\\n])*'|"(?:\\.|[^"\\\n])*"`)
)

type pyScope struct {
	indent int
	class  bool
	name   string
	def    int // defs 中的下标，类为 -1
}

// pythonDefs 按缩进确定函数体范围，嵌套函数中的调用归属最内层函数
func pythonDefs(file string, content []byte) []funcDef {
	src := pyTriple.ReplaceAllFunc(content, keepNewlines)
	var defs []funcDef
	var stack []pyScope

	for _, line := range strings.Split(string(src), "\n") {
		text := pyStringLit.ReplaceAllString(line, `""`)
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		indent := len(text) - len(strings.TrimLeft(text, " \t"))
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		if m := pyClass.FindStringSubmatch(text); m != nil {
			stack = append(stack, pyScope{indent: indent, class: true, name: m[2], def: -1})
			continue
		}
		if m := pyDef.FindStringSubmatch(text); m != nil {
			d := funcDef{file: file, name: m[2]}
			if len(stack) > 0 && stack[len(stack)-1].class {
				d.owner = stack[len(stack)-1].name
				d.name = d.owner + "." + m[2]
			}
			defs = append(defs, d)
			stack = append(stack, pyScope{indent: indent, name: m[2], def: len(defs) - 1})
			// 同一行的默认参数里也可能有调用，忽略
			continue
		}

		cur := innermostDef(stack)
		if cur < 0 {
			continue
		}
		for _, m := range pyCall.FindAllStringSubmatch(text, -1) {
			switch {
			case m[1] != "":
				defs[cur].calls = append(defs[cur].calls, call{name: m[3], method: true})
			case m[2] != "":
				// 其他对象上的方法调用无法确定类型
			default:
				defs[cur].calls = append(defs[cur].calls, call{name: m[3]})
			}
		}
	}
	return defs
}

func innermostDef(stack []pyScope) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if !stack[i].class {
			return stack[i].def
		}
	}
	return -1
}

func keepNewlines(b []byte) []byte {
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

// goDefs 接收者方法记为 Type.method，通过接收者变量发起的调用视为同类型方法调用
func goDefs(file string, content []byte) []funcDef {
	f, err := parser.ParseFile(token.NewFileSet(), file, content, parser.SkipObjectResolution)
	if err != nil {
		return nil
	}
	var defs []funcDef
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		d := funcDef{file: file, name: fn.Name.Name}
		recvVar := ""
		if fn.Recv != nil && len(fn.Recv.List) > 0 {
			field := fn.Recv.List[0]
			d.owner = receiverType(field.Type)
			d.name = d.owner + "." + fn.Name.Name
			if len(field.Names) > 0 {
				recvVar = field.Names[0].Name
			}
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			ce, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			switch fun := ce.Fun.(type) {
			case *ast.Ident:
				d.calls = append(d.calls, call{name: fun.Name})
			case *ast.SelectorExpr:
				if x, ok := fun.X.(*ast.Ident); ok && recvVar != "" && x.Name == recvVar {
					d.calls = append(d.calls, call{name: fun.Sel.Name, method: true})
				}
			}
			return true
		})
		defs = append(defs, d)
	}
	return defs
}

func receiverType(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	default:
		return ""
	}
}
