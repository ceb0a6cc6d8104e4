package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// KeyInsights 根据指标和架构分组得出的结论
func KeyInsights(s *models.AnalysisSummary) []string {
	insights := []string{}
	m := s.Metrics

	if avg := m.AverageComplexity; avg != nil {
		switch {
		case *avg > 5:
			insights = append(insights, "High code complexity detected - consider refactoring for maintainability")
		case *avg < 2:
			insights = append(insights, "Low complexity code - well-structured and maintainable")
		}
	}

	if m.Files > 0 {
		tests := 0
		if c, ok := s.Category(CategoryTests); ok {
			tests = c.FileCount
		}
		ratio := float64(tests) / float64(m.Files)
		switch {
		case ratio > 0.3:
			insights = append(insights, "Good test coverage - testing is well-integrated")
		case ratio < 0.1:
			insights = append(insights, "Limited test files detected - consider improving test coverage")
		}
	}

	_, hasModels := s.Category(CategoryModels)
	_, hasControllers := s.Category(CategoryControllers)
	if hasModels && hasControllers {
		insights = append(insights, "Follows MVC-like architecture pattern")
	}
	if _, ok := s.Category(CategoryServices); ok {
		insights = append(insights, "Service-oriented architecture detected")
	}

	if n := len(m.LanguageDistribution); n > 3 {
		insights = append(insights, fmt.Sprintf("Multi-language project (%d languages) - good for diverse functionality", n))
	}

	switch {
	case m.Lines > 10000:
		insights = append(insights, "Large codebase - consider modularization strategies")
	case m.Lines > 0 && m.Lines < 1000:
		insights = append(insights, "Compact project - good for quick understanding and maintenance")
	}

	if s.Coverage != nil && s.Coverage.Overall >= goodCoverage {
		insights = append(insights, fmt.Sprintf("High measured test coverage (%.1f%%)", s.Coverage.Overall))
	}
	if n := len(s.CallCycles); n > 0 {
		insights = append(insights, fmt.Sprintf("%d recursive or cyclic call chain(s) detected - see %s", n, CallCyclesFile))
	}
	return insights
}

const (
	minCoverage        = 60
	goodCoverage       = 80
	maxLintIssues      = 20
	minMaintainability = 20 // radon 的 A 级下限
)

// Recommendations 改进建议，至少返回一条
func Recommendations(s *models.AnalysisSummary) []string {
	var recs []string
	m := s.Metrics
	if avg := m.AverageComplexity; avg != nil && *avg > 10 {
		recs = append(recs, "Split highly complex files into smaller, focused units")
	}
	if m.Lines > 10000 {
		recs = append(recs, "Split the codebase into independent modules or packages")
	}
	if m.Files > 0 && float64(m.Functions)/float64(m.Files) > 10 {
		recs = append(recs, "High function density per file - consider grouping related functions into separate files")
	}
	if s.Coverage != nil && s.Coverage.Overall < minCoverage {
		recs = append(recs, fmt.Sprintf("Test coverage is %.1f%% - add tests to reach at least %d%%", s.Coverage.Overall, minCoverage))
	}
	if n := len(s.Lint); n > maxLintIssues {
		recs = append(recs, fmt.Sprintf("Fix the %d linting issues reported by static analysis", n))
	}
	if avg, ok := models.AverageMaintainability(s.Maintainability); ok && avg < minMaintainability {
		recs = append(recs, fmt.Sprintf("Average maintainability index is %.1f - simplify the lowest ranked files", avg))
	}
	if len(s.Security) > 0 {
		recs = append(recs, fmt.Sprintf("Review %d potential security issue(s) reported by the security scan", len(s.Security)))
	}
	if len(recs) == 0 {
		recs = append(recs, "The code is well organized - keep following the current structure")
	}
	return recs
}

// Insights 生成 recommendations.txt
type Insights struct{}

func (Insights) Name() string { return "insights" }

func (Insights) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	insights := s.KeyInsights
	if insights == nil {
		insights = KeyInsights(s)
	}
	recs := s.Recommendations
	if recs == nil {
		recs = Recommendations(s)
	}

	var b strings.Builder
	b.WriteString("Key Insights:\n")
	if len(insights) == 0 {
		b.WriteString("- No notable patterns detected\n")
	}
	for _, i := range insights {
		fmt.Fprintf(&b, "- %s\n", i)
	}
	b.WriteString("\nRecommendations:\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return out.Write("recommendations.txt", []byte(b.String()))
}
