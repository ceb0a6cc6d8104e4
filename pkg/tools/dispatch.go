package tools

import (
	"context"
	"time"

	"github.com/yeisme/smartrepo/pkg/configs"
)

// DispatchScorer 按语言选择具体的评分实现
type DispatchScorer struct {
	byLang   map[string]ComplexityScorer
	fallback ComplexityScorer
}

// NewDispatchScorer fallback 可以为 nil，此时未注册的语言返回 ErrUnsupportedLanguage
func NewDispatchScorer(fallback ComplexityScorer) *DispatchScorer {
	return &DispatchScorer{byLang: map[string]ComplexityScorer{}, fallback: fallback}
}

// Handle 注册语言对应的评分器
func (d *DispatchScorer) Handle(lang string, s ComplexityScorer) *DispatchScorer {
	d.byLang[lang] = s
	return d
}

func (d *DispatchScorer) Score(ctx context.Context, path, lang string) (float64, error) {
	if s, ok := d.byLang[lang]; ok {
		return s.Score(ctx, path, lang)
	}
	if d.fallback != nil {
		return d.fallback.Score(ctx, path, lang)
	}
	return 0, ErrUnsupportedLanguage
}

// DefaultScorer Python 使用 radon，Go 在进程内计算，其余语言使用关键字估算
func DefaultScorer(cfg configs.ToolsConfig) *DispatchScorer {
	return NewDispatchScorer(HeuristicScorer{}).
		Handle("Python", RadonScorer{
			Bin:     cfg.Radon.Bin,
			Install: cfg.Radon.Install,
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}).
		Handle("Go", GoCycloScorer{})
}
