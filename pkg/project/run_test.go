package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/models"
)

func monorepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "services/api/package.json", `{"name": "api"}`)
	writeFile(t, root, "services/api/index.js", "function handler() {}\n")
	writeFile(t, root, "services/web/package.json", `{"name": "web"}`)
	writeFile(t, root, "services/web/app.js", "function render() {}\n")
	writeFile(t, root, "scripts/build.py", "def build():\n    pass\n")
	return root
}

func TestFilterSubprojects_RanksByDistance(t *testing.T) {
	got := FilterSubprojects("WEB", []string{"services/api", "services/web", "webapp"})
	assert.Equal(t, []string{"webapp", "services/web"}, got)
	assert.Empty(t, FilterSubprojects("zzz", []string{"services/api"}))
}

func TestSelectSubprojects(t *testing.T) {
	root := monorepo(t)
	cfg := testConfig().Analyze

	subs, err := selectSubprojects(root, cfg, AnalyzeOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"services/api", "services/web"}, subs)

	subs, err = selectSubprojects(root, cfg, AnalyzeOptions{Only: "api"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"services/api"}, subs)

	_, err = selectSubprojects(root, cfg, AnalyzeOptions{Only: "mobile"}, nil)
	assert.Error(t, err)

	var offered []string
	pick := func(s []string) (int, error) {
		offered = s
		return 1, nil
	}
	subs, err = selectSubprojects(root, cfg, AnalyzeOptions{Pick: true}, pick)
	require.NoError(t, err)
	assert.Equal(t, []string{"services/web"}, subs)
	assert.Len(t, offered, 2)

	abort := errors.New("aborted")
	_, err = selectSubprojects(root, cfg, AnalyzeOptions{Pick: true}, func([]string) (int, error) { return 0, abort })
	assert.ErrorIs(t, err, abort)
}

func TestRunAnalysis_MonorepoWritesPerSubproject(t *testing.T) {
	root := monorepo(t)
	cfg := testConfig()
	opts := AnalyzeOptions{Monorepo: true}
	var buf bytes.Buffer

	err := runAnalysis(context.Background(), newTestAnalyzer(cfg, opts, Capabilities{}), cfg, opts, root, &buf, nil)
	require.NoError(t, err)

	for _, sub := range []string{"services/api", "services/web"} {
		assertCoreFiles(t, filepath.Join(root, "smartrepo-analysis", filepath.FromSlash(sub)))
	}
	assert.Contains(t, buf.String(), "Node.js")
}

func TestRunAnalysis_JSONOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def main():\n    pass\n")
	cfg := testConfig()
	opts := AnalyzeOptions{JSON: true}
	var buf bytes.Buffer

	require.NoError(t, runAnalysis(context.Background(), newTestAnalyzer(cfg, opts, Capabilities{}), cfg, opts, root, &buf, nil))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Contains(t, got, "metrics")

	// monorepo 模式输出数组
	root = monorepo(t)
	opts = AnalyzeOptions{JSON: true, Monorepo: true}
	buf.Reset()
	require.NoError(t, runAnalysis(context.Background(), newTestAnalyzer(cfg, opts, Capabilities{}), cfg, opts, root, &buf, nil))
	var list []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestRunAnalysis_QuietPrintsNothing(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig()
	cfg.App.Quiet = true
	var buf bytes.Buffer

	require.NoError(t, runAnalysis(context.Background(), newTestAnalyzer(cfg, AnalyzeOptions{}, Capabilities{}), cfg, AnalyzeOptions{}, root, &buf, nil))
	assert.Empty(t, buf.String())
	assertCoreFiles(t, filepath.Join(root, "smartrepo-analysis"))
}

func TestPrintSummary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", fiftyLinePython())
	r, err := newTestAnalyzer(testConfig(), AnalyzeOptions{}, Capabilities{}).Run(context.Background(), root, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, r, false))
	out := buf.String()
	assert.Contains(t, out, "ANALYSIS COMPLETE")
	assert.Contains(t, out, "Total lines")
	assert.Contains(t, out, "Python")
	for _, name := range generator.CoreFiles {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "All files saved to: "+r.OutputDir)

	buf.Reset()
	r.Summary.Security = []models.SecurityFinding{{File: "app.py", Line: 3, Severity: "HIGH"}, {File: "app.py", Line: 9, Severity: "low"}}
	require.NoError(t, printSummary(&buf, r, true))
	out = buf.String()
	assert.Contains(t, out, "app.py")
	assert.Contains(t, out, "1 high")
	assert.Contains(t, out, "1 low")
}

func TestGroupDigits(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for in, want := range cases {
		assert.Equal(t, want, groupDigits(in), "groupDigits(%d)", in)
	}
}
