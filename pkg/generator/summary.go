package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yeisme/smartrepo/pkg/models"
)

// SummaryJSON 生成 ai-summary.json
// 结构体字段顺序固定、map 键由 encoding/json 排序，因此输出稳定
type SummaryJSON struct{}

func (SummaryJSON) Name() string { return "summary" }

func (SummaryJSON) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	data, err := MarshalSummary(s)
	if err != nil {
		return err
	}
	return out.Write(SummaryFile, data)
}

// MarshalSummary 序列化分析结果，nil 切片输出为 []
func MarshalSummary(s *models.AnalysisSummary) ([]byte, error) {
	c := *s
	if c.Files == nil {
		c.Files = []models.FileRecord{}
	}
	if c.Architecture == nil {
		c.Architecture = []models.ArchitectureCategory{}
	}
	if c.KeyInsights == nil {
		c.KeyInsights = []string{}
	}
	if c.Project.Languages == nil {
		c.Project.Languages = []string{}
	}
	if c.Dependencies.Runtime == nil {
		c.Dependencies.Runtime = []string{}
	}
	if c.Dependencies.Development == nil {
		c.Dependencies.Development = []string{}
	}
	if c.Metrics.LanguageDistribution == nil {
		c.Metrics.LanguageDistribution = map[string]int{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return append(data, '\n'), nil
}
