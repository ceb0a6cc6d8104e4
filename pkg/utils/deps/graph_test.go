package deps

import (
	"reflect"
	"testing"

	"github.com/yeisme/smartrepo/pkg/models"
)

func TestGraphEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge("b.py", "c.py")
	g.AddEdge("a.py", "c.py")
	g.AddEdge("a.py", "b.py")
	g.AddEdge("a.py", "a.py") // self loop ignored
	g.AddNode("lonely.py")

	if !g.Has("lonely.py") {
		t.Fatalf("isolated node missing")
	}
	if got := g.Children("a.py"); !reflect.DeepEqual(got, []string{"b.py", "c.py"}) {
		t.Fatalf("children: %v", got)
	}
	if got := g.Parents("c.py"); !reflect.DeepEqual(got, []string{"a.py", "b.py"}) {
		t.Fatalf("parents: %v", got)
	}
	if got := g.Parents("a.py"); got != nil {
		t.Fatalf("expected no parent, got %q", got)
	}

	want := []models.ImportEdge{
		{From: "a.py", To: "b.py"},
		{From: "a.py", To: "c.py"},
		{From: "b.py", To: "c.py"},
	}
	if got := g.Edges(); !reflect.DeepEqual(got, want) {
		t.Fatalf("edges: %v", got)
	}
	if got := g.Nodes(); len(got) != 4 {
		t.Fatalf("nodes: %v", got)
	}
}

func TestBuildImportGraph(t *testing.T) {
	files := []models.FileRecord{
		{Path: "app.py", Language: "Python", Imports: []string{"utils", "pkg.models", "os"}},
		{Path: "utils.py", Language: "Python"},
		{Path: "pkg/models.py", Language: "Python"},
		{Path: "web/index.js", Language: "JavaScript", Imports: []string{"./lib/helper", "../shared", "react"}},
		{Path: "web/lib/helper.js", Language: "JavaScript"},
		{Path: "shared/index.ts", Language: "TypeScript"},
		{Path: "cmd/main.go", Language: "Go", Imports: []string{"github.com/acme/tool/internal/store", "fmt"}},
		{Path: "internal/store/store.go", Language: "Go"},
	}

	g := BuildImportGraph(files)

	cases := map[string][]string{
		"app.py":       {"pkg/models.py", "utils.py"},
		"web/index.js": {"shared/index.ts", "web/lib/helper.js"},
		"cmd/main.go":  {"internal/store/store.go"},
		"utils.py":     nil,
	}
	for from, want := range cases {
		if got := g.Children(from); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s => %v want %v", from, got, want)
		}
	}
	if len(g.Nodes()) != len(files) {
		t.Fatalf("every file should be a node")
	}
}

func TestGraphCycles(t *testing.T) {
	g := NewGraph(KeepSelfLoops())
	// a -> b -> c -> a，另有捷径 b -> a
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	g.AddEdge("b", "a")
	// 直接递归
	g.AddEdge("fact", "fact")
	// 无环部分
	g.AddEdge("main", "a")
	g.AddEdge("main", "util")
	// 第二个分量
	g.AddEdge("x", "y")
	g.AddEdge("y", "z")
	g.AddEdge("z", "x")

	want := [][]string{
		{"a", "b", "a"},
		{"fact", "fact"},
		{"x", "y", "z", "x"},
	}
	if got := g.Cycles(); !reflect.DeepEqual(got, want) {
		t.Fatalf("cycles = %v", got)
	}
	if got := FormatCycle(want[2]); got != "x -> y -> z -> x" {
		t.Fatalf("format = %q", got)
	}

	imports := NewGraph()
	imports.AddEdge("a.py", "a.py")
	imports.AddEdge("a.py", "b.py")
	if got := imports.Cycles(); got != nil {
		t.Fatalf("acyclic graph reported %v", got)
	}
}
