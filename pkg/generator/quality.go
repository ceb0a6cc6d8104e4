package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/deps"
	"github.com/yeisme/smartrepo/pkg/utils/examples"
)

const (
	LintReportFile       = "lint-report.json"
	ComplexityReportFile = "complexity_report.json"
	UsageExamplesFile    = "usage-examples.txt"
	CallGraphFile        = "call-graph.mmd"
	CallCyclesFile       = "call-graph-cycles.txt"
)

// LintReport lint-report.json 的内容
type LintReport struct {
	Total      int                `json:"total"`
	ByTool     map[string]int     `json:"by_tool"`
	BySeverity map[string]int     `json:"by_severity"`
	Issues     []models.LintIssue `json:"issues"`
}

// Lint 生成 lint-report.json，只在执行过静态检查时加入
type Lint struct{}

func (Lint) Name() string { return "lint" }

func (Lint) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	report := LintReport{
		Total:      len(s.Lint),
		ByTool:     map[string]int{},
		BySeverity: models.LintCounts(s.Lint),
		Issues:     s.Lint,
	}
	if report.Issues == nil {
		report.Issues = []models.LintIssue{}
	}
	for _, i := range s.Lint {
		report.ByTool[i.Tool]++
	}
	return writeJSON(out, LintReportFile, report)
}

// FileComplexity complexity_report.json 中单个文件的分数
type FileComplexity struct {
	Path   string  `json:"path"`
	Score  float64 `json:"score"`
	Rating string  `json:"rating"`
}

// ComplexityReport complexity_report.json 的内容
type ComplexityReport struct {
	AverageComplexity      *float64                 `json:"average_complexity"`
	ScoredFiles            int                      `json:"scored_files"`
	Unavailable            []string                 `json:"unavailable,omitempty"`
	Files                  []FileComplexity         `json:"files"`
	AverageMaintainability *float64                 `json:"average_maintainability,omitempty"`
	Maintainability        []models.Maintainability `json:"maintainability,omitempty"`
}

// Complexity 生成 complexity_report.json，文件按分数从高到低排列
type Complexity struct{}

func (Complexity) Name() string { return "complexity" }

func (Complexity) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	report := ComplexityReport{
		AverageComplexity: s.Metrics.AverageComplexity,
		ScoredFiles:       s.Metrics.ScoredFiles,
		Files:             []FileComplexity{},
		Maintainability:   s.Maintainability,
	}
	for _, f := range s.Files {
		if f.Complexity == nil {
			continue
		}
		score, ok := f.Complexity.Value()
		if !ok {
			report.Unavailable = append(report.Unavailable, f.Path)
			continue
		}
		report.Files = append(report.Files, FileComplexity{Path: f.Path, Score: score, Rating: complexityRating(score)})
	}
	sort.SliceStable(report.Files, func(i, j int) bool {
		if report.Files[i].Score != report.Files[j].Score {
			return report.Files[i].Score > report.Files[j].Score
		}
		return report.Files[i].Path < report.Files[j].Path
	})
	if avg, ok := models.AverageMaintainability(s.Maintainability); ok {
		avg = math.Round(avg*100) / 100
		report.AverageMaintainability = &avg
	}
	return writeJSON(out, ComplexityReportFile, report)
}

// complexityRating radon 的 A-F 分级
func complexityRating(score float64) string {
	switch {
	case score <= 5:
		return "A"
	case score <= 10:
		return "B"
	case score <= 20:
		return "C"
	case score <= 30:
		return "D"
	case score <= 40:
		return "E"
	default:
		return "F"
	}
}

// UsageExamples 生成 usage-examples.txt，没有示例时不写文件
type UsageExamples struct{}

func (UsageExamples) Name() string { return "usage-examples" }

func (UsageExamples) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	if len(s.UsageExamples) == 0 {
		return nil
	}
	var b strings.Builder
	for _, e := range s.UsageExamples {
		b.WriteString(examples.Format(e))
		b.WriteByte('\n')
	}
	return out.Write(UsageExamplesFile, []byte(b.String()))
}

// CallGraph 生成 call-graph.mmd，存在递归或循环调用时另外写 call-graph-cycles.txt
type CallGraph struct{}

func (CallGraph) Name() string { return "callgraph" }

func (CallGraph) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	if err := out.Write(CallGraphFile, []byte(RenderCallGraph(s.CallGraph))); err != nil {
		return err
	}
	if len(s.CallCycles) == 0 {
		return nil
	}
	var b strings.Builder
	for _, c := range s.CallCycles {
		b.WriteString(deps.FormatCycle(c))
		b.WriteByte('\n')
	}
	return out.Write(CallCyclesFile, []byte(b.String()))
}

// RenderCallGraph 节点文本为 path:function
func RenderCallGraph(edges []models.CallEdge) string {
	var b strings.Builder
	ids := newIDAllocator()
	b.WriteString("graph LR\n")
	if len(edges) == 0 {
		b.WriteString("    %% no internal calls detected\n")
		return b.String()
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "    %s[%s] --> %s[%s]\n",
			ids.get("fn_", e.From), label(e.From), ids.get("fn_", e.To), label(e.To))
	}
	return b.String()
}

func writeJSON(out *Output, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return out.Write(name, append(data, '\n'))
}
