package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// UML 生成 uml-class-diagram.mmd
type UML struct{}

func (UML) Name() string { return "uml" }

func (UML) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	return out.Write("uml-class-diagram.mmd", []byte(RenderUML(s.Files)))
}

// RenderUML 渲染类及继承关系，同名类只输出一次
func RenderUML(files []models.FileRecord) string {
	classes := map[string]struct{}{}
	relations := map[models.ClassRelation]struct{}{}
	for _, f := range files {
		for _, c := range f.ClassNames {
			classes[c] = struct{}{}
		}
		for _, r := range f.Extends {
			relations[r] = struct{}{}
		}
	}

	var b strings.Builder
	b.WriteString("classDiagram\n")
	if len(classes) == 0 {
		b.WriteString("    %% no classes detected\n")
		return b.String()
	}
	names := make([]string, 0, len(classes))
	for c := range classes {
		names = append(names, c)
	}
	sort.Strings(names)
	for _, c := range names {
		fmt.Fprintf(&b, "    class %s\n", nodeID("", c))
	}

	rels := make([]models.ClassRelation, 0, len(relations))
	for r := range relations {
		rels = append(rels, r)
	}
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Base != rels[j].Base {
			return rels[i].Base < rels[j].Base
		}
		return rels[i].Class < rels[j].Class
	})
	for _, r := range rels {
		fmt.Fprintf(&b, "    %s <|-- %s\n", nodeID("", r.Base), nodeID("", r.Class))
	}
	return b.String()
}
