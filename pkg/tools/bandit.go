package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/executor"
)

// BanditScanner 通过 bandit 扫描 Python 文件
type BanditScanner struct {
	Bin     string
	Install string
	Timeout time.Duration
}

type banditReport struct {
	Results []struct {
		Filename   string `json:"filename"`
		LineNumber int    `json:"line_number"`
		TestID     string `json:"test_id"`
		Severity   string `json:"issue_severity"`
		Confidence string `json:"issue_confidence"`
		Text       string `json:"issue_text"`
	} `json:"results"`
}

// Scan 发现问题时 bandit 以非零状态退出，此时仍解析 stdout
func (b BanditScanner) Scan(ctx context.Context, path string) ([]models.SecurityFinding, error) {
	bin, err := Require(b.Bin, b.Install)
	if err != nil {
		return nil, err
	}
	stdout, _, runErr := executor.Tool(ctx, b.Timeout, bin, "-f", "json", "-q", path).Run()
	if strings.TrimSpace(stdout) == "" {
		if runErr != nil {
			return nil, fmt.Errorf("bandit: %w", runErr)
		}
		return nil, nil
	}
	findings, err := parseBandit([]byte(stdout))
	if err != nil {
		return nil, errors.Join(err, runErr)
	}
	return findings, nil
}

func parseBandit(data []byte) ([]models.SecurityFinding, error) {
	var rep banditReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("bandit: decode output: %w", err)
	}
	out := make([]models.SecurityFinding, 0, len(rep.Results))
	for _, r := range rep.Results {
		out = append(out, models.SecurityFinding{
			File:       r.Filename,
			Line:       r.LineNumber,
			TestID:     r.TestID,
			Severity:   r.Severity,
			Confidence: r.Confidence,
			Issue:      r.Text,
		})
	}
	return out, nil
}
