package tools

import (
	"context"

	"github.com/yeisme/smartrepo/pkg/models"
)

// NopRenderer 不渲染任何图片
type NopRenderer struct{}

func (NopRenderer) Render(context.Context, string, string) error { return nil }

// NopScanner 不报告任何问题
type NopScanner struct{}

func (NopScanner) Scan(context.Context, string) ([]models.SecurityFinding, error) { return nil, nil }

// StaticScorer 对所有文件返回固定分数
type StaticScorer float64

func (s StaticScorer) Score(context.Context, string, string) (float64, error) { return float64(s), nil }

// FailingScorer 对所有文件返回同一个错误
type FailingScorer struct{ Err error }

func (f FailingScorer) Score(context.Context, string, string) (float64, error) { return 0, f.Err }

var (
	_ ComplexityScorer = RadonScorer{}
	_ ComplexityScorer = GoCycloScorer{}
	_ ComplexityScorer = HeuristicScorer{}
	_ ComplexityScorer = (*DispatchScorer)(nil)
	_ ComplexityScorer = StaticScorer(0)
	_ ComplexityScorer = FailingScorer{}
	_ SecurityScanner  = BanditScanner{}
	_ SecurityScanner  = NopScanner{}
	_ DiagramRenderer  = MermaidRenderer{}
	_ DiagramRenderer  = NopRenderer{}
	_ Linter           = PylintLinter{}
	_ Linter           = Flake8Linter{}
	_ Linter           = ESLintLinter{}

	_ MaintainabilityScorer = RadonScorer{}
)
