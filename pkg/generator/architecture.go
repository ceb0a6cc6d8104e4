package generator

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/tools"
)

const (
	architecturePNG = "architecture.png"
	rootGroup       = "(root)"
)

var categoryClass = map[string]string{
	CategoryControllers: "controller",
	CategoryModels:      "model",
	CategoryViews:       "view",
	CategoryServices:    "service",
}

// Architecture 生成 architecture.mmd，注入 Renderer 时额外渲染 architecture.png
// 渲染失败（包括 mmdc 不存在）只记录警告
type Architecture struct {
	Renderer tools.DiagramRenderer
	Logger   *zerolog.Logger
}

func (Architecture) Name() string { return "architecture" }

func (a Architecture) Generate(ctx context.Context, s *models.AnalysisSummary, out *Output) error {
	if err := out.Write(ArchitectureFile, []byte(RenderArchitecture(s))); err != nil {
		return err
	}
	if a.Renderer == nil {
		return nil
	}
	logger := a.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := a.Renderer.Render(ctx, out.Path(ArchitectureFile), out.Path(architecturePNG)); err != nil {
		if mt, ok := tools.IsMissingTool(err); ok {
			logger.Warn().Str("tool", mt.Tool).Str("install", mt.Install).
				Msgf("%s not found, skipping %s; install with: %s", mt.Tool, architecturePNG, mt.Install)
			return nil
		}
		logger.Warn().Err(err).Msgf("cannot render %s", architecturePNG)
		return nil
	}
	out.Record(architecturePNG)
	return nil
}

// RenderArchitecture 渲染 mermaid 架构图
// 分组节点挂在 APP 下，文件按顶层目录放入 subgraph，再由分组指向文件
func RenderArchitecture(s *models.AnalysisSummary) string {
	var b strings.Builder
	ids := newIDAllocator()

	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "    APP[%s]\n", label(s.Project.Name))

	fileCategory := map[string]string{}
	for i, c := range s.Architecture {
		catID := fmt.Sprintf("CAT%d", i)
		node := fmt.Sprintf("    %s[%s]", catID, label(fmt.Sprintf("%s (%d)", c.Name, c.FileCount)))
		if cls, ok := categoryClass[c.Name]; ok {
			node += ":::" + cls
		}
		b.WriteString(node + "\n")
		fmt.Fprintf(&b, "    APP --> %s\n", catID)
		for _, f := range c.Files {
			fileCategory[f] = catID
		}
	}

	for _, g := range groupByTopDir(s.Files) {
		fmt.Fprintf(&b, "    subgraph %s[%s]\n", ids.get("DIR_", g.dir), label(g.dir))
		for _, f := range g.files {
			fmt.Fprintf(&b, "        %s[%s]\n", ids.get("F_", f.Path), label(path.Base(f.Path)))
		}
		b.WriteString("    end\n")
	}

	for _, f := range s.Files {
		if catID, ok := fileCategory[f.Path]; ok {
			fmt.Fprintf(&b, "    %s --> %s\n", catID, ids.get("F_", f.Path))
		}
	}

	b.WriteString("    classDef controller fill:#e1f5fe\n")
	b.WriteString("    classDef model fill:#f3e5f5\n")
	b.WriteString("    classDef view fill:#e8f5e8\n")
	b.WriteString("    classDef service fill:#fff3e0\n")
	return b.String()
}

type dirGroup struct {
	dir   string
	files []models.FileRecord
}

// topDir 顶层目录名，根目录下的文件归入 (root)
func topDir(p string) string {
	if i := strings.IndexByte(p, '/'); i > 0 {
		return p[:i]
	}
	return rootGroup
}

// groupByTopDir 按顶层目录分组，(root) 在前，其余按名称排序
func groupByTopDir(files []models.FileRecord) []dirGroup {
	idx := map[string]int{}
	var groups []dirGroup
	for _, f := range files {
		d := topDir(f.Path)
		i, ok := idx[d]
		if !ok {
			i = len(groups)
			idx[d] = i
			groups = append(groups, dirGroup{dir: d})
		}
		groups[i].files = append(groups[i].files, f)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if (groups[i].dir == rootGroup) != (groups[j].dir == rootGroup) {
			return groups[i].dir == rootGroup
		}
		return groups[i].dir < groups[j].dir
	})
	return groups
}
