package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// Contributors 生成 contributors.txt，没有 git 历史时不写文件
type Contributors struct{}

func (Contributors) Name() string { return "contributors" }

func (Contributors) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	if len(s.Contributors) == 0 {
		return nil
	}
	var b strings.Builder
	for _, c := range s.Contributors {
		fmt.Fprintf(&b, "%s: %d commits\n", c.Name, c.Commits)
	}
	return out.Write("contributors.txt", []byte(b.String()))
}
