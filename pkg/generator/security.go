package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// SecurityReport security_report.json 的内容
type SecurityReport struct {
	Total      int                      `json:"total"`
	BySeverity map[string]int           `json:"by_severity"`
	Findings   []models.SecurityFinding `json:"findings"`
}

// Security 生成 security_report.json，只在执行过安全扫描时加入
type Security struct{}

func (Security) Name() string { return "security" }

func (Security) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	report := SecurityReport{
		Total:      len(s.Security),
		BySeverity: map[string]int{},
		Findings:   s.Security,
	}
	if report.Findings == nil {
		report.Findings = []models.SecurityFinding{}
	}
	for _, f := range s.Security {
		report.BySeverity[strings.ToUpper(f.Severity)]++
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal security report: %w", err)
	}
	return out.Write("security_report.json", append(data, '\n'))
}
