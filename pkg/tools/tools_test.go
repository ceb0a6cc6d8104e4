package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/configs"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMissingToolError(t *testing.T) {
	_, err := Require("definitely-not-installed-smartrepo", "pip install nothing")
	require.Error(t, err)

	mt, ok := IsMissingTool(err)
	require.True(t, ok)
	assert.Equal(t, "definitely-not-installed-smartrepo", mt.Tool)
	assert.Contains(t, err.Error(), "definitely-not-installed-smartrepo")
	assert.Contains(t, err.Error(), "pip install nothing")

	wrapped := errors.Join(errors.New("context"), err)
	_, ok = IsMissingTool(wrapped)
	assert.True(t, ok)
}

func TestRadonScorer_MissingTool(t *testing.T) {
	r := RadonScorer{Bin: "radon-missing-for-test", Install: "pip install radon"}
	_, err := r.Score(context.Background(), "x.py", "Python")
	mt, ok := IsMissingTool(err)
	require.True(t, ok)
	assert.Equal(t, "pip install radon", mt.Install)

	_, err = r.Score(context.Background(), "x.go", "Go")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParseRadon(t *testing.T) {
	out := `{"a.py": [
		{"type": "function", "name": "f", "complexity": 2},
		{"type": "class", "name": "C", "complexity": 4, "methods": [{"type": "method", "name": "m", "complexity": 4}]}
	]}`
	v, err := parseRadon([]byte(out))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)

	v, err = parseRadon([]byte(`{"a.py": []}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = parseRadon([]byte(`{"a.py": {"error": "invalid syntax"}}`))
	assert.ErrorContains(t, err, "invalid syntax")

	_, err = parseRadon([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseBandit(t *testing.T) {
	out := `{"results": [{"filename": "a.py", "line_number": 3, "test_id": "B602",
		"issue_severity": "HIGH", "issue_confidence": "MEDIUM", "issue_text": "subprocess call with shell=True"}]}`
	f, err := parseBandit([]byte(out))
	require.NoError(t, err)
	require.Len(t, f, 1)
	assert.Equal(t, 3, f[0].Line)
	assert.Equal(t, "HIGH", f[0].Severity)
	assert.Equal(t, "B602", f[0].TestID)
}

func TestGoCycloScorer(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", `package a

func simple() {}

func branchy(a, b bool, xs []int) int {
	if a && b {
		return 1
	}
	for _, x := range xs {
		switch x {
		case 1:
		case 2:
		default:
		}
	}
	return 0
}
`)
	v, err := GoCycloScorer{}.Score(context.Background(), path, "Go")
	require.NoError(t, err)
	// simple = 1; branchy = 1 + if + && + range + 2 case = 6
	assert.InDelta(t, 3.5, v, 1e-9)

	_, err = GoCycloScorer{}.Score(context.Background(), path, "Python")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	bad := writeFile(t, dir, "bad.go", "package a\nfunc (")
	_, err = GoCycloScorer{}.Score(context.Background(), bad, "Go")
	assert.Error(t, err)
}

func TestHeuristicScorer(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.rb", "def a\n  if x && y\n  end\nend\ndef b\n  while z\n  end\nend\n")
	v, err := HeuristicScorer{}.Score(context.Background(), path, "Ruby")
	require.NoError(t, err)
	// 3 个分支 / 2 个函数
	assert.InDelta(t, 2.5, v, 1e-9)

	_, err = HeuristicScorer{Languages: map[string]bool{"Rust": true}}.Score(context.Background(), path, "Ruby")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestDispatchScorer(t *testing.T) {
	d := NewDispatchScorer(nil).Handle("Go", StaticScorer(2))
	v, err := d.Score(context.Background(), "x.go", "Go")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = d.Score(context.Background(), "x.rb", "Ruby")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	d = NewDispatchScorer(StaticScorer(7))
	v, err = d.Score(context.Background(), "x.rb", "Ruby")
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestDefaultScorer_MissingRadonOnlyAffectsPython(t *testing.T) {
	cfg := configs.DefaultConfig().Tools
	cfg.Radon.Bin = "radon-missing-for-test"
	s := DefaultScorer(cfg)

	_, err := s.Score(context.Background(), "x.py", "Python")
	_, missing := IsMissingTool(err)
	assert.True(t, missing)

	dir := t.TempDir()
	goFile := writeFile(t, dir, "a.go", "package a\nfunc f() {}\n")
	v, err := s.Score(context.Background(), goFile, "Go")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestMermaidRenderer_MissingTool(t *testing.T) {
	err := MermaidRenderer{Bin: "mmdc-missing-for-test", Install: "npm install -g @mermaid-js/mermaid-cli"}.
		Render(context.Background(), "in.mmd", "out.png")
	mt, ok := IsMissingTool(err)
	require.True(t, ok)
	assert.Contains(t, mt.Install, "mermaid-cli")
}

func TestLookPath_UserBinDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit check is posix only")
	}
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "bin"), 0o755))
	bin := filepath.Join(base, "bin", "smartrepo-fake-tool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PYTHONUSERBASE", base)

	p, err := LookPath("smartrepo-fake-tool")
	require.NoError(t, err)
	assert.Equal(t, bin, p)
}

func TestKnownAndSearch(t *testing.T) {
	ts := Known(configs.DefaultConfig().Tools)
	names := make([]string, 0, len(ts))
	for _, tl := range ts {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{"bandit", "eslint", "flake8", "git", "mermaid-cli", "pylint", "radon"}, names)

	tl, _ := ResolveTool("mmdc", ts)
	require.NotNil(t, tl)
	assert.Equal(t, "mermaid-cli", tl.Name)

	matches := FindToolsFuzzy("python", ts)
	matched := make([]string, 0, len(matches))
	for _, m := range matches {
		matched = append(matched, m.Name)
	}
	assert.Subset(t, matched, []string{"bandit", "flake8", "pylint", "radon"})
	assert.Equal(t, "bandit", matches[0].Name)

	var sb strings.Builder
	require.NoError(t, ExecuteSearchCommand(ts, SearchCommandOptions{Query: "radon", Format: "json"}, &sb))
	assert.Contains(t, sb.String(), "pip install radon")

	assert.Error(t, ExecuteSearchCommand(ts, SearchCommandOptions{Query: "zzzzqqq"}, &sb))
}

func TestParseRadonMI(t *testing.T) {
	m, err := parseRadonMI([]byte(`{"a.py": {"mi": 64.8271, "rank": "A"}}`))
	require.NoError(t, err)
	assert.Equal(t, 64.83, m.Index)
	assert.Equal(t, "A", m.Rank)

	_, err = parseRadonMI([]byte(`{"a.py": {"error": "invalid syntax"}}`))
	assert.ErrorContains(t, err, "invalid syntax")

	_, err = parseRadonMI([]byte(`{}`))
	assert.Error(t, err)

	_, err = RadonScorer{Bin: "radon-missing-for-test"}.Maintainability(context.Background(), "x.js", "JavaScript")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParsePylint(t *testing.T) {
	out := `[
		{"type": "convention", "module": "app", "obj": "", "line": 1, "column": 0, "path": "app.py",
		 "symbol": "missing-module-docstring", "message": "Missing module docstring", "message-id": "C0114"},
		{"type": "fatal", "module": "app", "obj": "", "line": 3, "column": 4, "path": "app.py",
		 "symbol": "syntax-error", "message": "invalid syntax", "message-id": "E0001"}
	]`
	issues, err := parsePylint([]byte(out))
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "C0114 missing-module-docstring", issues[0].Code)
	assert.Equal(t, "convention", issues[0].Severity)
	assert.Equal(t, "error", issues[1].Severity)
	assert.Equal(t, 4, issues[1].Column)

	_, err = parsePylint([]byte("************* Module app"))
	assert.Error(t, err)
}

func TestParseFlake8(t *testing.T) {
	out := "3:1:E302:expected 2 blank lines, found 1\n10:80:W505:doc line too long (88 > 79 characters)\n" +
		"12:5:C901:'handle' is too complex (11)\nnot a flake8 line\n"
	issues := parseFlake8(out, "app.py")
	require.Len(t, issues, 3)
	assert.Equal(t, "E302", issues[0].Code)
	assert.Equal(t, "error", issues[0].Severity)
	assert.Equal(t, "warning", issues[1].Severity)
	assert.Equal(t, "convention", issues[2].Severity)
	assert.Equal(t, "'handle' is too complex (11)", issues[2].Message)
	assert.Equal(t, "app.py", issues[2].File)
}

func TestParseESLint(t *testing.T) {
	out := `[{"filePath": "/src/web/app.js", "messages": [
		{"ruleId": "no-unused-vars", "severity": 2, "message": "'x' is defined but never used.", "line": 4, "column": 7},
		{"ruleId": "semi", "severity": 1, "message": "Missing semicolon.", "line": 9, "column": 2}
	]}, {"filePath": "/src/web/ok.js", "messages": []}]`
	issues, err := parseESLint([]byte(out))
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "error", issues[0].Severity)
	assert.Equal(t, "warning", issues[1].Severity)
	assert.Equal(t, "no-unused-vars", issues[0].Code)
}

func TestLinters_MissingToolAndLanguages(t *testing.T) {
	cfg := configs.DefaultConfig().Tools
	cfg.Pylint.Bin = "pylint-missing-for-test"
	cfg.Flake8.Bin = "flake8-missing-for-test"
	cfg.ESLint.Bin = "eslint-missing-for-test"

	linters := DefaultLinters(cfg)
	require.Len(t, linters, 3)
	for _, l := range linters {
		_, err := l.Lint(context.Background(), "x")
		mt, ok := IsMissingTool(err)
		require.True(t, ok, l.Name())
		assert.NotEmpty(t, mt.Install)
	}
	assert.True(t, linters[0].Accepts("Python"))
	assert.False(t, linters[0].Accepts("Go"))
	assert.True(t, linters[2].Accepts("React TypeScript"))
	assert.False(t, linters[2].Accepts("Python"))
}

func TestFlake8Linter_NonZeroExitWithReport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in is posix only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "flake8")
	script := "#!/bin/sh\necho \"3:1:E302:expected 2 blank lines, found 1\"\nexit 1\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	issues, err := Flake8Linter{Bin: bin}.Lint(context.Background(), "app.py")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Line)

	failing := filepath.Join(dir, "broken")
	require.NoError(t, os.WriteFile(failing, []byte("#!/bin/sh\necho boom >&2\nexit 2\n"), 0o755))
	_, err = Flake8Linter{Bin: failing}.Lint(context.Background(), "app.py")
	assert.ErrorContains(t, err, "boom")
}
