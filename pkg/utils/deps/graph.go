package deps

import (
	"path"
	"sort"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// Graph 有向图，用于文件间的导入关系和函数间的调用关系.
// 注意：可能存在环（例如两个模块互相导入），因此它不是 DAG.
type Graph struct {
	// selfLoops 为 true 时保留 a -> a（递归调用）
	selfLoops bool
	// nodes stores all file paths.
	nodes map[string]struct{}
	// edges maps from -> set(to)
	edges map[string]map[string]struct{}
	// revEdges maps to -> set(from)
	revEdges map[string]map[string]struct{}
}

// GraphOption 配置 Graph.
type GraphOption func(*Graph)

// KeepSelfLoops 保留自环，调用图中用来表示直接递归.
func KeepSelfLoops() GraphOption { return func(g *Graph) { g.selfLoops = true } }

// NewGraph 创建一个空图实例，默认忽略自环.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes:    make(map[string]struct{}),
		edges:    make(map[string]map[string]struct{}),
		revEdges: make(map[string]map[string]struct{}),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AddNode 添加一个孤立节点.
func (g *Graph) AddNode(id string) { g.nodes[id] = struct{}{} }

// AddEdge 添加一条边 from -> to，未开启 KeepSelfLoops 时自环被忽略.
func (g *Graph) AddEdge(from, to string) {
	if from == to && !g.selfLoops {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	if _, ok := g.edges[from]; !ok {
		g.edges[from] = make(map[string]struct{})
	}
	g.edges[from][to] = struct{}{}

	if _, ok := g.revEdges[to]; !ok {
		g.revEdges[to] = make(map[string]struct{})
	}
	g.revEdges[to][from] = struct{}{}
}

// Children 返回给定文件直接导入的文件，已排序.
func (g *Graph) Children(id string) []string { return sortedSet(g.edges[id]) }

// Parents 返回直接导入给定文件的文件，已排序.
func (g *Graph) Parents(id string) []string { return sortedSet(g.revEdges[id]) }

// Nodes 返回图中所有文件，已排序.
func (g *Graph) Nodes() []string { return sortedSet(g.nodes) }

// Has 判断图中是否存在指定文件.
func (g *Graph) Has(id string) bool { _, ok := g.nodes[id]; return ok }

// Edges 返回所有边，按 from、to 排序.
func (g *Graph) Edges() []models.ImportEdge {
	out := []models.ImportEdge{}
	for _, from := range sortedSet(g.nodes) {
		for _, to := range g.Children(from) {
			out = append(out, models.ImportEdge{From: from, To: to})
		}
	}
	return out
}

// BuildImportGraph 根据每个文件记录的导入语句匹配项目内的其它文件.
// 匹配规则：导入名等于文件名（去扩展名）、等于点分模块路径、
// 相对导入解析后的路径，或 Go 导入路径以包目录结尾.
func BuildImportGraph(files []models.FileRecord) *Graph {
	g := NewGraph()
	byStem := map[string][]string{}
	byDotted := map[string][]string{}
	byNoExt := map[string][]string{}
	byDir := map[string][]string{}

	for _, f := range files {
		g.AddNode(f.Path)
		noExt := strings.TrimSuffix(f.Path, path.Ext(f.Path))
		byStem[path.Base(noExt)] = append(byStem[path.Base(noExt)], f.Path)
		byDotted[strings.ReplaceAll(noExt, "/", ".")] = append(byDotted[strings.ReplaceAll(noExt, "/", ".")], f.Path)
		byNoExt[noExt] = append(byNoExt[noExt], f.Path)
		if f.Language == "Go" {
			byDir[path.Dir(f.Path)] = append(byDir[path.Dir(f.Path)], f.Path)
		}
	}

	for _, f := range files {
		for _, imp := range f.Imports {
			for _, to := range resolveImport(f, imp, byStem, byDotted, byNoExt, byDir) {
				g.AddEdge(f.Path, to)
			}
		}
	}
	return g
}

func resolveImport(f models.FileRecord, imp string, byStem, byDotted, byNoExt, byDir map[string][]string) []string {
	imp = strings.TrimSpace(imp)
	if imp == "" {
		return nil
	}

	// 相对导入：./utils、../models/user
	if strings.HasPrefix(imp, ".") && strings.Contains(imp, "/") {
		target := path.Clean(path.Join(path.Dir(f.Path), imp))
		target = strings.TrimSuffix(target, path.Ext(target))
		if hits := byNoExt[target]; len(hits) > 0 {
			return hits
		}
		return byNoExt[target+"/index"]
	}

	if f.Language == "Go" && strings.Contains(imp, "/") {
		var out []string
		for dir, files := range byDir {
			if dir != "." && (imp == dir || strings.HasSuffix(imp, "/"+dir)) {
				out = append(out, files...)
			}
		}
		sort.Strings(out)
		return out
	}

	if hits := byDotted[imp]; len(hits) > 0 {
		return hits
	}
	return byStem[imp]
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
