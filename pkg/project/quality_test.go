package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/tools"
)

type mockLinter struct {
	mock.Mock
	name string
	lang string
}

func (m *mockLinter) Name() string { return m.name }

func (m *mockLinter) Accepts(lang string) bool { return lang == m.lang }

func (m *mockLinter) Lint(ctx context.Context, path string) ([]models.LintIssue, error) {
	args := m.Called(ctx, path)
	issues, _ := args.Get(0).([]models.LintIssue)
	return issues, args.Error(1)
}

type mockMaintainability struct{ mock.Mock }

func (m *mockMaintainability) Maintainability(ctx context.Context, path, lang string) (models.Maintainability, error) {
	args := m.Called(ctx, path, lang)
	return args.Get(0).(models.Maintainability), args.Error(1)
}

const coverageReport = `<?xml version="1.0" ?>
<coverage line-rate="0.5">
	<packages>
		<package name="app">
			<classes>
				<class name="app.py" filename="app.py">
					<lines>
						<line number="1" hits="1"/>
						<line number="2" hits="0"/>
					</lines>
				</class>
			</classes>
		</package>
	</packages>
</coverage>
`

func TestRun_CoverageReport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "def main():\n    pass\n")
	writeFile(t, root, "coverage.xml", coverageReport)

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	require.NotNil(t, r.Summary.Coverage)
	assert.Equal(t, 50.0, r.Summary.Coverage.Overall)
	assert.Contains(t, r.Summary.Recommendations, "Test coverage is 50.0% - add tests to reach at least 60%")

	readme, err := os.ReadFile(filepath.Join(r.OutputDir, generator.ReadmeFile))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "- **Coverage**: 50.0% (1 files, from coverage.xml)")

	// 报告损坏只跳过覆盖率
	writeFile(t, root, "coverage.xml", "<coverage><packages>")
	r, err = newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Nil(t, r.Summary.Coverage)
	assertCoreFiles(t, r.OutputDir)
}

func TestRun_CoverageFileFromConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "x = 1\n")
	writeFile(t, root, "reports/cov.xml", coverageReport)

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Nil(t, r.Summary.Coverage)

	cfg := testConfig()
	cfg.Analyze.CoverageFile = "reports/cov.xml"
	r, err = newTestAnalyzer(cfg, AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	require.NotNil(t, r.Summary.Coverage)
	assert.Equal(t, "reports/cov.xml", r.Summary.Coverage.Report)
}

func TestRun_LintIssuesUseRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/db.py", "import os\n")
	writeFile(t, root, "app.py", "x=1\n")
	writeFile(t, root, "web/index.js", "var a = 1\n")

	pylint := &mockLinter{name: "pylint", lang: "Python"}
	pylint.On("Lint", mock.Anything, filepath.Join(root, "app.py")).
		Return([]models.LintIssue{{Tool: "pylint", File: "/abs/app.py", Line: 1, Severity: "convention"}}, nil).Once()
	pylint.On("Lint", mock.Anything, filepath.Join(root, "pkg", "db.py")).
		Return([]models.LintIssue{{Tool: "pylint", File: "pkg/db.py", Line: 1, Severity: "warning"}}, nil).Once()

	// eslint 未安装：只跳过它自己，其余检查照常进行
	eslint := &mockLinter{name: "eslint", lang: "JavaScript"}
	eslint.On("Lint", mock.Anything, mock.Anything).
		Return(nil, &tools.MissingToolError{Tool: "eslint", Install: "npm install -g eslint"}).Once()

	caps := Capabilities{Linters: []tools.Linter{eslint, pylint}}
	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{Lint: true}, caps).Run(context.Background(), root, "")
	require.NoError(t, err)

	require.Len(t, r.Summary.Lint, 2)
	assert.Equal(t, "app.py", r.Summary.Lint[0].File)
	assert.Equal(t, "pkg/db.py", r.Summary.Lint[1].File)
	assert.Contains(t, r.Written, generator.LintReportFile)
	pylint.AssertExpectations(t)
	eslint.AssertExpectations(t)
}

func TestRun_LintDisabledByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "x=1\n")

	pylint := &mockLinter{name: "pylint", lang: "Python"}
	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{Linters: []tools.Linter{pylint}}).
		Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Nil(t, r.Summary.Lint)
	assert.NotContains(t, r.Written, generator.LintReportFile)
	pylint.AssertNotCalled(t, "Lint", mock.Anything, mock.Anything)
}

func TestRun_Maintainability(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "def a():\n    pass\n")
	writeFile(t, root, "b.py", "def b():\n    pass\n")
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")

	scorer := &mockScorer{}
	scorer.On("Score", mock.Anything, mock.Anything, mock.Anything).Return(3.0, nil)
	mi := &mockMaintainability{}
	mi.On("Maintainability", mock.Anything, filepath.Join(root, "a.py"), "Python").
		Return(models.Maintainability{Index: 80, Rank: "A"}, nil).Once()
	mi.On("Maintainability", mock.Anything, filepath.Join(root, "b.py"), "Python").
		Return(models.Maintainability{}, assert.AnError).Once()

	caps := Capabilities{Scorer: scorer, Maintainability: mi}
	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{Complexity: true}, caps).Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, []models.Maintainability{{File: "a.py", Index: 80, Rank: "A"}}, r.Summary.Maintainability)
	assert.Contains(t, r.Written, generator.ComplexityReportFile)
	mi.AssertExpectations(t)

	// 未开启复杂度分析时不计算
	plain, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{Maintainability: mi}).
		Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Nil(t, plain.Summary.Maintainability)
	assert.NotContains(t, plain.Written, generator.ComplexityReportFile)
}

func TestRun_CallGraphAndUsageExamples(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.py", "def fact(n):\n    return n * fact(n - 1) if n else 1\n\n\ndef main():\n    return fact(3)\n")
	writeFile(t, root, "tests/test_calc.py", "def test_fact():\n    \"\"\"fact(3) is 6.\"\"\"\n    assert fact(3) == 6\n")

	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	s := r.Summary

	assert.Contains(t, s.CallGraph, models.CallEdge{From: "calc.py:main", To: "calc.py:fact"})
	assert.Contains(t, s.CallGraph, models.CallEdge{From: "tests/test_calc.py:test_fact", To: "calc.py:fact"})
	assert.Equal(t, [][]string{{"calc.py:fact", "calc.py:fact"}}, s.CallCycles)
	require.Len(t, s.UsageExamples, 1)
	assert.Equal(t, "test_fact", s.UsageExamples[0].Name)

	cycles, err := os.ReadFile(filepath.Join(r.OutputDir, generator.CallCyclesFile))
	require.NoError(t, err)
	assert.Equal(t, "calc.py:fact -> calc.py:fact\n", string(cycles))
	assert.Contains(t, r.Written, generator.CallGraphFile)
	assert.Contains(t, r.Written, generator.UsageExamplesFile)

	cfg := testConfig()
	cfg.Analyze.Generators.CallGraph = false
	cfg.Analyze.Generators.UsageExamples = false
	off, err := newTestAnalyzer(cfg, AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)
	assert.Nil(t, off.Summary.CallGraph)
	assert.Nil(t, off.Summary.UsageExamples)
	assert.NotContains(t, off.Written, generator.CallGraphFile)
}
