package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/deps"
)

// DependencyGraph 生成 file-dependency-graph.mmd，展示项目内文件之间的导入关系
type DependencyGraph struct{}

func (DependencyGraph) Name() string { return "depgraph" }

func (DependencyGraph) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	edges := s.DependencyGraph
	if edges == nil {
		edges = deps.BuildImportGraph(s.Files).Edges()
	}
	return out.Write("file-dependency-graph.mmd", []byte(RenderDependencyGraph(edges)))
}

// RenderDependencyGraph 渲染导入关系图
func RenderDependencyGraph(edges []models.ImportEdge) string {
	var b strings.Builder
	ids := newIDAllocator()
	b.WriteString("graph TD\n")
	if len(edges) == 0 {
		b.WriteString("    %% no internal imports detected\n")
		return b.String()
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "    %s[%s] --> %s[%s]\n",
			ids.get("", e.From), label(e.From), ids.get("", e.To), label(e.To))
	}
	return b.String()
}
