package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// AISummaries 生成 ai_summaries.txt，没有摘要时不写文件
type AISummaries struct{}

func (AISummaries) Name() string { return "ai" }

func (AISummaries) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	if len(s.AISummaries) == 0 {
		return nil
	}
	var b strings.Builder
	for _, a := range s.AISummaries {
		fmt.Fprintf(&b, "# %s\n%s\n\n", a.Path, strings.TrimSpace(a.Summary))
	}
	return out.Write("ai_summaries.txt", []byte(b.String()))
}
