package generator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/tools"
)

func sampleSummary() *models.AnalysisSummary {
	files := []models.FileRecord{
		{Path: "app.py", Language: "Python", Lines: 40, Functions: 2, Classes: 1,
			FunctionNames: []string{"main", "run_server"}, ClassNames: []string{"App"},
			Imports: []string{"services.user_service"}, Summary: "Python file defines 1 class(es): App"},
		{Path: "models/user.py", Language: "Python", Lines: 30, Functions: 1, Classes: 2,
			FunctionNames: []string{"validate"}, ClassNames: []string{"User", "Admin"},
			Extends: []models.ClassRelation{{Class: "Admin", Base: "User"}}, Complexity: models.Scored(2)},
		{Path: "services/user_service.py", Language: "Python", Lines: 25, Functions: 3,
			FunctionNames: []string{"create_user", "delete_user", "create_user"},
			Imports: []string{"models.user"}, Complexity: models.Unavailable("radon not found")},
		{Path: "web/components/button.js", Language: "JavaScript", Lines: 15, Functions: 1,
			FunctionNames: []string{"Button"}},
	}
	s := &models.AnalysisSummary{
		Project: models.ProjectProfile{
			Name: "shop", Type: "Python", Framework: "Flask", PrimaryLanguage: "Python",
			Languages: []string{"JavaScript", "Python"}, EntryPoints: []string{"app.py"},
		},
		Files:           files,
		Dependencies:    models.Dependencies{Runtime: []string{"flask", "requests"}, Development: []string{"pytest"}},
		GeneratedAt:     "2024-01-01T00:00:00Z",
		AnalyzerVersion: models.AnalyzerVersion,
	}
	s.Recompute()
	s.Architecture = Categorize(s.Files)
	s.KeyInsights = KeyInsights(s)
	s.Recommendations = Recommendations(s)
	return s
}

func emptySummary() *models.AnalysisSummary {
	s := &models.AnalysisSummary{
		Project: models.ProjectProfile{Name: "empty", Type: models.UnknownProjectType, Languages: []string{}},
	}
	s.Recompute()
	s.Architecture = Categorize(s.Files)
	return s
}

type stubGen struct {
	name string
	fn   func() error
}

func (g stubGen) Name() string { return g.name }
func (g stubGen) Generate(context.Context, *models.AnalysisSummary, *Output) error {
	return g.fn()
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	out := NewOutput(t.TempDir())
	gens := []Generator{
		stubGen{"broken", func() error { return errors.New("boom") }},
		stubGen{"panicky", func() error { panic("unexpected") }},
		Readme{},
	}

	results, err := RunAll(context.Background(), sampleSummary(), out, nil, gens...)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.EqualError(t, results[0].Err, "boom")
	assert.ErrorContains(t, results[1].Err, "panicked")
	assert.NoError(t, results[2].Err)
	assert.Equal(t, []string{"readme-enhanced.md"}, out.Written())
}

func TestRunAll_WriteFailureIsFatalAfterAllRun(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	ran := false
	gens := append(Core(Options{}), stubGen{"last", func() error { ran = true; return nil }})
	results, err := RunAll(context.Background(), sampleSummary(), NewOutput(blocked), nil, gens...)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutputWrite)
	assert.True(t, ran)
	require.Len(t, results, 5)
	for _, r := range results[:4] {
		assert.True(t, r.Fatal(), r.Generator)
	}
}

func TestCore_EmptyProjectStillProducesAllDocuments(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(dir)
	_, err := RunAll(context.Background(), emptySummary(), out, nil, Core(Options{})...)
	require.NoError(t, err)

	assert.Equal(t, []string{"ai-summary.json", "architecture.mmd", "prompt-ready.md", "readme-enhanced.md"}, out.Written())

	data, err := os.ReadFile(filepath.Join(dir, "ai-summary.json"))
	require.NoError(t, err)
	var got models.AnalysisSummary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, models.UnknownProjectType, got.Project.Type)
	assert.Equal(t, 0, got.Metrics.Files)
	assert.Equal(t, 0, got.Metrics.Lines)
	assert.NotNil(t, got.Files)
	assert.Contains(t, string(data), `"files": []`)

	prompt, err := os.ReadFile(filepath.Join(dir, "prompt-ready.md"))
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "This is a unknown project with 0 files and 0 lines of code across 0 programming languages.")
}

func TestSummaryJSON_RoundTripsTotalsAndIsDeterministic(t *testing.T) {
	s := sampleSummary()
	first, err := MarshalSummary(s)
	require.NoError(t, err)
	second, err := MarshalSummary(sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	var parsed models.AnalysisSummary
	require.NoError(t, json.Unmarshal(first, &parsed))
	want := parsed.Metrics
	parsed.Recompute()
	assert.Equal(t, want, parsed.Metrics)
	assert.Equal(t, s.Metrics, parsed.Metrics)

	assert.Equal(t, 4, parsed.Metrics.Files)
	assert.Equal(t, 110, parsed.Metrics.Lines)
	require.NotNil(t, parsed.Metrics.AverageComplexity)
	assert.InDelta(t, 2.0, *parsed.Metrics.AverageComplexity, 1e-9)

	// 未开启复杂度的文件不出现 complexity 字段，不可用的文件显式标记
	assert.Contains(t, string(first), `"unavailable": true`)
	assert.Equal(t, 2, strings.Count(string(first), `"complexity"`))
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, CategoryTests, CategoryOf("tests/test_models.py"))
	assert.Equal(t, CategoryModels, CategoryOf("app/Models/User.php"))
	assert.Equal(t, CategoryControllers, CategoryOf("api/routes.js"))
	assert.Equal(t, CategoryUtils, CategoryOf("lib/helpers.go"))
	assert.Equal(t, CategoryConfig, CategoryOf("settings.py"))
	assert.Equal(t, CategoryOther, CategoryOf("main.go"))

	cats := Categorize(sampleSummary().Files)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{CategoryModels, CategoryViews, CategoryServices, CategoryOther}, names)
	assert.Equal(t, "Data models, schemas, and database entities", cats[0].Description)

	assert.NotNil(t, Categorize(nil))
}

func TestKeyInsightsAndRecommendations(t *testing.T) {
	s := sampleSummary()
	assert.Contains(t, s.KeyInsights, "Service-oriented architecture detected")
	assert.Contains(t, s.KeyInsights, "Limited test files detected - consider improving test coverage")
	assert.Contains(t, s.KeyInsights, "Compact project - good for quick understanding and maintenance")
	assert.Equal(t, []string{"The code is well organized - keep following the current structure"}, s.Recommendations)

	high := 12.0
	s.Metrics.AverageComplexity = &high
	s.Metrics.Lines = 20000
	assert.Contains(t, KeyInsights(s), "High code complexity detected - consider refactoring for maintainability")
	assert.Contains(t, KeyInsights(s), "Large codebase - consider modularization strategies")
	assert.Len(t, Recommendations(s), 2)
}

func TestReadme(t *testing.T) {
	s := sampleSummary()
	for i := range 12 {
		s.Dependencies.Runtime = append(s.Dependencies.Runtime, "dep"+string(rune('a'+i)))
	}
	md := RenderReadme(s)

	for _, section := range []string{
		"# shop", "## Overview", "## Project Statistics", "## Architecture", "## Project Structure",
		"## Dependencies", "### Prerequisites", "### Installation", "### Usage", "## Code Metrics",
		"## Contributing", "## License",
	} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "A Python application. with main entry point at `app.py`. featuring a well-structured data layer")
	assert.Contains(t, md, "https://img.shields.io/badge/type-Python-blue")
	assert.Contains(t, md, "- ... and 4 more")
	assert.Contains(t, md, "│   └── user.py")
	assert.Contains(t, md, "pip install -r requirements.txt")
	assert.Contains(t, md, "python app.py")
	assert.Contains(t, md, "  - **Python**: 95 lines (86.4%)")
	assert.Contains(t, md, "*This README was auto-generated by SmartRepo*")
	assert.NotContains(t, md, "## Contributors")

	empty := RenderReadme(emptySummary())
	assert.Contains(t, empty, "No dependencies detected.")
	assert.Contains(t, empty, "Check project documentation for specific requirements")
}

func TestBadgeEscape(t *testing.T) {
	assert.Equal(t, "Node.js", badgeEscape("Node.js"))
	assert.Equal(t, "React_TypeScript", badgeEscape("React TypeScript"))
	assert.Equal(t, "a--b__c", badgeEscape("a-b_c"))
}

func TestArchitecture_Mermaid(t *testing.T) {
	mmd := RenderArchitecture(sampleSummary())
	lines := strings.Split(mmd, "\n")
	assert.Equal(t, "graph TD", lines[0])
	assert.Equal(t, `    APP["shop"]`, lines[1])
	assert.Contains(t, mmd, `    CAT0["Models (1)"]:::model`)
	assert.Contains(t, mmd, "    APP --> CAT0")
	assert.Contains(t, mmd, `    subgraph DIR__root_["(root)"]`)
	assert.Contains(t, mmd, `        F_models_user_py["user.py"]`)
	assert.Contains(t, mmd, "    CAT0 --> F_models_user_py")
	assert.Contains(t, mmd, "classDef service fill:#fff3e0")
	// (root) 子图在目录子图之前
	assert.Less(t, strings.Index(mmd, "DIR__root_"), strings.Index(mmd, "DIR_models"))
}

func TestArchitecture_IDsStayUnique(t *testing.T) {
	ids := newIDAllocator()
	a := ids.get("F_", "a-b.py")
	b := ids.get("F_", "a_b.py")
	c := ids.get("F_", "a.b.py")
	assert.Equal(t, "F_a_b_py", a)
	assert.Equal(t, "F_a_b_py_1", b)
	assert.Equal(t, "F_a_b_py_2", c)
	assert.Equal(t, a, ids.get("F_", "a-b.py"))
}

func TestArchitecture_MissingRendererOnlyWarns(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(dir)
	gen := Architecture{Renderer: tools.MermaidRenderer{Bin: "smartrepo-test-no-such-mmdc", Install: "npm install -g @mermaid-js/mermaid-cli"}}

	require.NoError(t, gen.Generate(context.Background(), sampleSummary(), out))
	assert.Equal(t, []string{"architecture.mmd"}, out.Written())
	assert.NoFileExists(t, filepath.Join(dir, "architecture.png"))

	out = NewOutput(t.TempDir())
	require.NoError(t, Architecture{Renderer: tools.NopRenderer{}}.Generate(context.Background(), sampleSummary(), out))
	assert.Equal(t, []string{"architecture.mmd", "architecture.png"}, out.Written())
}

func TestPrompt_ChunksAreSelfContained(t *testing.T) {
	s := sampleSummary()
	chunks := BuildChunks(s, 0, 0)

	titles := make([]string, 0, len(chunks))
	for _, c := range chunks {
		titles = append(titles, c.Title)
		assert.Contains(t, c.Text, "Project: shop (Type: Python (Flask); Languages: JavaScript, Python)", c.Title)
		assert.Contains(t, c.Text, "Keywords: ", c.Title)
		assert.NotEmpty(t, c.Keywords)
	}
	assert.Equal(t, []string{
		"Quick Summary",
		"Directory: (root)",
		"Directory: models/",
		"Directory: services/",
		"Directory: web/",
	}, titles)

	modelsChunk := chunks[2]
	assert.Equal(t, []string{"Python", "Models", "Admin", "User", "validate"}, modelsChunk.Keywords)
	assert.Contains(t, modelsChunk.Text, "- `models/user.py` (30 lines, Python)")
	assert.Contains(t, modelsChunk.Text, "  - Complexity: 2.00 (Low)")

	doc := RenderPrompt(s, chunks)
	assert.True(t, strings.HasPrefix(doc, "# AI-Ready Project Analysis: shop\n\n## Quick Summary"))
	assert.Equal(t, len(chunks)-1, strings.Count(doc, "\n---\n"))
}

func TestPrompt_SplitsOversizedDirectories(t *testing.T) {
	s := &models.AnalysisSummary{Project: models.ProjectProfile{Name: "big", Type: "Go", Languages: []string{"Go"}}}
	for i := range 30 {
		s.Files = append(s.Files, models.FileRecord{
			Path: "pkg/file" + string(rune('a'+i%26)) + strings.Repeat("x", i) + ".go", Language: "Go", Lines: 10,
			FunctionNames: []string{"HandleRequest", "Serve"},
		})
	}
	s.Recompute()

	chunks := BuildChunks(s, 800, 5)
	require.Greater(t, len(chunks), 2)
	for i, c := range chunks[1:] {
		assert.Contains(t, c.Title, "Directory: pkg/ (part ")
		assert.Contains(t, c.Title, "(part "+string(rune('1'+i))+")")
		assert.Contains(t, c.Text, "Project: big (Type: Go; Languages: Go)")
		assert.Contains(t, c.Text, "Directory `pkg/` contains 30 files")
		assert.LessOrEqual(t, len(c.Text), 800)
		assert.Equal(t, []string{"Go", "Other", "HandleRequest", "Serve"}, c.Keywords)
	}
}

func TestPrompt_EnforcesMaxChunkChars(t *testing.T) {
	const limit = 700
	s := &models.AnalysisSummary{Project: models.ProjectProfile{Name: "wide", Type: "Python", Languages: []string{"Python"}}}
	s.Files = []models.FileRecord{
		{Path: "app.py", Language: "Python", Lines: 5},
		{Path: "core/engine.py", Language: "Python", Lines: 900,
			Summary: strings.Repeat("处理订单和库存同步 ", 80), FunctionNames: []string{"run"}},
	}
	s.Recompute()
	for i := range 40 {
		s.Architecture = append(s.Architecture, models.ArchitectureCategory{
			Name: "Component" + strings.Repeat("x", i%7), FileCount: i + 1,
			Description: "handles a slice of the request pipeline for tenant " + strings.Repeat("t", i),
		})
	}
	for i := range 30 {
		s.KeyInsights = append(s.KeyInsights, "insight about module "+strings.Repeat("m", i))
	}

	chunks := BuildChunks(s, limit, 5)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), limit, c.Title)
		assert.True(t, utf8.ValidString(c.Text), c.Title)
	}

	quick := chunks[0].Text
	assert.Contains(t, quick, "### Project Context")
	assert.Contains(t, quick, "### Architecture Overview")
	assert.Regexp(t, `- \.\.\. \(\+\d+ more\)`, quick)

	core := chunks[2]
	assert.Equal(t, "Directory: core/ (part 1)", core.Title)
	assert.Contains(t, core.Text, "- `core/engine.py` (900 lines, Python)")
	assert.True(t, strings.HasSuffix(core.Text, "... (truncated)\n"))
}

func TestUMLAndDependencyGraph(t *testing.T) {
	s := sampleSummary()
	uml := RenderUML(s.Files)
	assert.Equal(t, "classDiagram\n    class Admin\n    class App\n    class User\n    User <|-- Admin\n", uml)
	assert.Contains(t, RenderUML(nil), "no classes detected")

	edges := []models.ImportEdge{{From: "app.py", To: "services/user_service.py"}}
	graph := RenderDependencyGraph(edges)
	assert.Equal(t, "graph TD\n    app_py[\"app.py\"] --> services_user_service_py[\"services/user_service.py\"]\n", graph)
	assert.Contains(t, RenderDependencyGraph(nil), "no internal imports detected")
}

func TestHTML(t *testing.T) {
	data, err := RenderHTML("# Title One\n\n<b>raw</b>\n\n| a | b |\n|---|---|\n| 1 | 2 |\n", "T&T")
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<title>T&amp;T</title>")
	assert.Contains(t, html, `<h1 id="title-one">`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<b>raw</b>")
}

func TestDefault_OptionalGenerators(t *testing.T) {
	names := func(gens []Generator) []string {
		out := make([]string, 0, len(gens))
		for _, g := range gens {
			out = append(out, g.Name())
		}
		return out
	}
	assert.Equal(t, []string{"readme", "architecture", "summary", "prompt"}, names(Default(Options{})))

	opts := Options{Security: true, AI: true}
	opts.Generators.UML = true
	opts.Generators.Contributors = true
	assert.Equal(t, []string{"readme", "architecture", "summary", "prompt", "uml", "contributors", "security", "ai"}, names(Default(opts)))

	quality := Options{Lint: true, Complexity: true}
	quality.Generators.UsageExamples = true
	quality.Generators.CallGraph = true
	assert.Equal(t, []string{"readme", "architecture", "summary", "prompt", "usage-examples", "callgraph", "complexity", "lint"},
		names(Default(quality)))
}

func TestSupplementaryWriters(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(dir)
	s := sampleSummary()
	s.Contributors = []models.Contributor{{Name: "ann", Commits: 3}}
	s.AISummaries = []models.AISummary{{Path: "app.py", Summary: "Entry point.\n"}}
	s.Security = []models.SecurityFinding{{File: "app.py", Line: 3, Severity: "high", Issue: "eval"}}

	_, err := RunAll(context.Background(), s, out, nil, Contributors{}, AISummaries{}, Security{}, Insights{})
	require.NoError(t, err)

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "ann: 3 commits\n", read("contributors.txt"))
	assert.Equal(t, "# app.py\nEntry point.\n\n", read("ai_summaries.txt"))
	assert.Contains(t, read("security_report.json"), `"HIGH": 1`)
	assert.Contains(t, read("recommendations.txt"), "Key Insights:\n- ")

	empty := NewOutput(t.TempDir())
	require.NoError(t, Contributors{}.Generate(context.Background(), emptySummary(), empty))
	assert.Empty(t, empty.Written())
}
