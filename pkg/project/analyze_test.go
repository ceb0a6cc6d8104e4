package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/tools"
	"github.com/yeisme/smartrepo/pkg/utils/log"
)

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(ctx context.Context, inPath, outPath string) error {
	return m.Called(ctx, inPath, outPath).Error(0)
}

type mockScanner struct{ mock.Mock }

func (m *mockScanner) Scan(ctx context.Context, path string) ([]models.SecurityFinding, error) {
	args := m.Called(ctx, path)
	findings, _ := args.Get(0).([]models.SecurityFinding)
	return findings, args.Error(1)
}

type mockScorer struct{ mock.Mock }

func (m *mockScorer) Score(ctx context.Context, path, lang string) (float64, error) {
	args := m.Called(ctx, path, lang)
	return args.Get(0).(float64), args.Error(1)
}

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig() *configs.Config {
	cfg := configs.DefaultConfig()
	cfg.Analyze.Generators.Contributors = false
	return &cfg
}

func newTestAnalyzer(cfg *configs.Config, opts AnalyzeOptions, caps Capabilities) *Analyzer {
	return NewAnalyzer(cfg, opts, caps, log.Nop()).WithClock(fixedNow)
}

// fiftyLinePython 50 行，两个函数，一个没有方法的类
func fiftyLinePython() string {
	lines := []string{
		"import os",
		"",
		"class Config:",
		"    pass",
		"",
		"def load():",
		"    return os.environ",
		"",
		"def save(value):",
		"    return value",
	}
	for i := len(lines); i < 50; i++ {
		lines = append(lines, fmt.Sprintf("value_%d = %d", i, i))
	}
	return strings.Join(lines, "\n") + "\n"
}

func assertCoreFiles(t *testing.T, dir string) {
	t.Helper()
	for _, name := range generator.CoreFiles {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestRun_IgnoredGeneratedFileContributesNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", fiftyLinePython())
	writeFile(t, root, "api.generated.ts", "export const a = 1;\nexport function b() {}\n")

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)

	m := r.Summary.Metrics
	assert.Equal(t, 1, m.Files)
	assert.Equal(t, 50, m.Lines)
	assert.Equal(t, 2, m.Functions)
	assert.Equal(t, 1, m.Classes)
	assert.Nil(t, m.AverageComplexity)
	require.Len(t, r.Summary.Files, 1)
	assert.Equal(t, "app.py", r.Summary.Files[0].Path)

	assert.Equal(t, filepath.Join(root, "smartrepo-analysis"), r.OutputDir)
	assertCoreFiles(t, r.OutputDir)
	assert.Equal(t, "2024-05-01T12:00:00Z", r.Summary.GeneratedAt)
}

func TestRun_EveryDefaultExtension(t *testing.T) {
	root := t.TempDir()
	exts := configs.DefaultExtensions()
	require.Len(t, exts, 15)

	wantLines := map[string]int{}
	wantLang := map[string]string{}
	for i, e := range exts {
		n := i + 3
		name := fmt.Sprintf("sample_%02d%s", i, e.Ext)
		var b strings.Builder
		for j := range n {
			fmt.Fprintf(&b, "line_%d\n", j)
		}
		writeFile(t, root, name, b.String())
		wantLines[name] = n
		wantLang[name] = e.Language
	}

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	require.Len(t, r.Summary.Files, len(exts))

	total := 0
	for _, f := range r.Summary.Files {
		assert.Equal(t, wantLines[f.Path], f.Lines, f.Path)
		assert.Equal(t, wantLang[f.Path], f.Language, f.Path)
		assert.Equal(t, f.Lines, r.Summary.Metrics.LanguageDistribution[f.Language], f.Path)
		total += f.Lines
	}
	assert.Equal(t, total, r.Summary.Metrics.Lines)
	assert.Len(t, r.Summary.Metrics.LanguageDistribution, len(exts))
}

func TestRun_EmptyDirectory(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, out)
	require.NoError(t, err)

	assert.Equal(t, models.UnknownProjectType, r.Summary.Project.Type)
	assert.Zero(t, r.Summary.Metrics.Files)
	assert.Zero(t, r.Summary.Metrics.Lines)
	assert.Zero(t, r.Summary.Metrics.Functions)
	assert.Zero(t, r.Summary.Metrics.Classes)
	assertCoreFiles(t, out)
	for _, name := range generator.CoreFiles {
		assert.Contains(t, r.Written, name)
	}
}

func TestRun_ManifestWinsOverFileMajority(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "web", "dependencies": {"express": "^4.0.0"}}`)
	writeFile(t, root, "tools/report.py", "def main():\n    pass\n")

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)

	p := r.Summary.Project
	assert.Equal(t, "Node.js", p.Type)
	assert.Contains(t, p.Languages, "JavaScript")
	assert.Contains(t, p.Languages, "Python")
	assert.Contains(t, r.Summary.Dependencies.Runtime, "express")
}

func TestRun_OutputDirectoryIsNotAnalyzed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def main():\n    pass\n")
	a := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{})

	_, err := a.Run(context.Background(), root, "")
	require.NoError(t, err)
	// 第二次运行时上一次的输出已经存在
	r, err := a.Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Summary.Metrics.Files)
}

func TestRun_RendererInvokedForArchitecture(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def main():\n    pass\n")
	out := t.TempDir()

	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, filepath.Join(out, generator.ArchitectureFile), filepath.Join(out, "architecture.png")).
		Return(nil).Once()

	_, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{Renderer: renderer}).Run(context.Background(), root, out)
	require.NoError(t, err)
	renderer.AssertExpectations(t)
}

func TestRun_MissingRendererDoesNotFail(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def main():\n    pass\n")

	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).
		Return(&tools.MissingToolError{Tool: "mmdc", Install: "npm install -g @mermaid-js/mermaid-cli"})

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{Renderer: renderer}).Run(context.Background(), root, "")
	require.NoError(t, err)
	assertCoreFiles(t, r.OutputDir)
	assert.NoFileExists(t, filepath.Join(r.OutputDir, "architecture.png"))
}

func TestRun_ComplexityScores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "def a():\n    pass\n")
	writeFile(t, root, "b.py", "def b():\n    pass\n")

	scorer := &mockScorer{}
	scorer.On("Score", mock.Anything, filepath.Join(root, "a.py"), "Python").Return(2.0, nil)
	scorer.On("Score", mock.Anything, filepath.Join(root, "b.py"), "Python").Return(4.0, nil)

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{Complexity: true}, Capabilities{Scorer: scorer}).
		Run(context.Background(), root, "")
	require.NoError(t, err)
	require.NotNil(t, r.Summary.Metrics.AverageComplexity)
	assert.InDelta(t, 3.0, *r.Summary.Metrics.AverageComplexity, 1e-9)
	scorer.AssertExpectations(t)
}

func TestRun_MissingScorerLeavesComplexityUnavailable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "def a():\n    pass\n")

	scorer := tools.FailingScorer{Err: &tools.MissingToolError{Tool: "radon", Install: "pip install radon"}}
	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{Complexity: true}, Capabilities{Scorer: scorer}).
		Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Nil(t, r.Summary.Metrics.AverageComplexity)
	assert.Equal(t, 1, r.Summary.Metrics.Functions)
	assertCoreFiles(t, r.OutputDir)
}

func TestRun_SecurityFindingsUseRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/db.py", "import pickle\n")
	writeFile(t, root, "web.js", "eval(x)\n")

	scanner := &mockScanner{}
	scanner.On("Scan", mock.Anything, filepath.Join(root, "pkg", "db.py")).
		Return([]models.SecurityFinding{{Line: 1, TestID: "B403", Severity: "LOW", Issue: "pickle import"}}, nil).Once()

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{Security: true}, Capabilities{Scanner: scanner}).
		Run(context.Background(), root, "")
	require.NoError(t, err)
	require.Len(t, r.Summary.Security, 1)
	assert.Equal(t, "pkg/db.py", r.Summary.Security[0].File)
	assert.FileExists(t, filepath.Join(r.OutputDir, "security_report.json"))
	scanner.AssertExpectations(t)
}

func TestRun_MissingScannerOnlySkipsSecurity(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "def a():\n    pass\n")
	writeFile(t, root, "b.py", "def b():\n    pass\n")

	scanner := &mockScanner{}
	scanner.On("Scan", mock.Anything, mock.Anything).
		Return(nil, &tools.MissingToolError{Tool: "bandit", Install: "pip install bandit"}).Once()

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{Security: true}, Capabilities{Scanner: scanner}).
		Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Empty(t, r.Summary.Security)
	assert.Equal(t, 2, r.Summary.Metrics.Files)
	assertCoreFiles(t, r.OutputDir)
	// 缺少工具后不再扫描剩余文件
	scanner.AssertNumberOfCalls(t, "Scan", 1)
}

func TestRun_OutputWriteFailureIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\n")
	blocker := writeFile(t, t.TempDir(), "blocker", "not a directory")

	_, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).
		Run(context.Background(), root, filepath.Join(blocker, "out"))
	require.Error(t, err)
	assert.ErrorIs(t, err, generator.ErrOutputWrite)
	assert.True(t, IsFatal(err))
}

func TestRun_RootErrors(t *testing.T) {
	a := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{})

	_, err := a.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	file := writeFile(t, t.TempDir(), "a.py", "x = 1\n")
	_, err = a.Run(context.Background(), file, "")
	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.True(t, IsFatal(err))
}

func TestRun_HTMLFlagAddsReport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def main():\n    pass\n")

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{HTML: true}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.True(t, containsSuffix(r.Written, ".html"), "written: %v", r.Written)
}

func TestRun_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def main():\n    pass\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(ctx, root, "")
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func containsSuffix(names []string, suffix string) bool {
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			return true
		}
	}
	return false
}
