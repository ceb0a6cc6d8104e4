package generator

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/examples"
)

const (
	readmeDepsLimit     = 10
	readmeExamplesLimit = 5
)

// Readme 生成 readme-enhanced.md
type Readme struct{}

func (Readme) Name() string { return "readme" }

func (Readme) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	return out.Write(ReadmeFile, []byte(RenderReadme(s)))
}

// RenderReadme 渲染增强版 README 的 markdown
func RenderReadme(s *models.AnalysisSummary) string {
	var b strings.Builder
	p := s.Project
	m := s.Metrics

	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	b.WriteString(badges(s))
	b.WriteString("\n\n")

	b.WriteString("## Overview\n\n")
	b.WriteString(overview(s))
	b.WriteString("\n\n")

	b.WriteString("## Project Statistics\n\n")
	fmt.Fprintf(&b, "- **Type**: %s\n", projectTypeLabel(p))
	fmt.Fprintf(&b, "- **Languages**: %s\n", orNone(strings.Join(p.Languages, ", ")))
	fmt.Fprintf(&b, "- **Total Files**: %d\n", m.Files)
	fmt.Fprintf(&b, "- **Total Lines**: %d\n", m.Lines)
	fmt.Fprintf(&b, "- **Functions**: %d\n", m.Functions)
	fmt.Fprintf(&b, "- **Classes**: %d\n\n", m.Classes)

	b.WriteString("## Architecture\n\n")
	if len(s.Architecture) == 0 {
		b.WriteString("No source files detected.\n\n")
	} else {
		b.WriteString("```\n")
		b.WriteString(asciiTree(s.Architecture))
		b.WriteString("```\n\n")
	}

	b.WriteString("## Project Structure\n\n")
	for _, c := range s.Architecture {
		fmt.Fprintf(&b, "- **%s** (%d files): %s\n", c.Name, c.FileCount, c.Description)
	}
	if len(s.Architecture) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Dependencies\n\n")
	if s.Dependencies.Total() == 0 {
		b.WriteString("No dependencies detected.\n\n")
	} else {
		writeDeps(&b, "Runtime Dependencies", s.Dependencies.Runtime)
		writeDeps(&b, "Development Dependencies", s.Dependencies.Development)
	}

	b.WriteString("## Getting Started\n\n")
	b.WriteString("### Prerequisites\n\n")
	for _, req := range prerequisites(p.Type) {
		fmt.Fprintf(&b, "- %s\n", req)
	}
	b.WriteString("\n### Installation\n\n```bash\n")
	fmt.Fprintf(&b, "git clone <repository-url>\ncd %s\n", p.Name)
	if cmd := installCommand(p.Type); cmd != "" {
		b.WriteString(cmd + "\n")
	}
	b.WriteString("```\n\n")
	if usage := usageCommand(p); usage != "" {
		b.WriteString("### Usage\n\n```bash\n")
		b.WriteString(usage + "\n")
		b.WriteString("```\n\n")
	}
	if n := len(s.UsageExamples); n > 0 {
		b.WriteString("### Usage Examples\n\n")
		for i, e := range s.UsageExamples {
			if i == readmeExamplesLimit {
				fmt.Fprintf(&b, "- ... and %d more in %s\n", n-readmeExamplesLimit, UsageExamplesFile)
				break
			}
			fmt.Fprintf(&b, "- %s\n", examples.Format(e))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Code Metrics\n\n")
	if avg := m.AverageComplexity; avg != nil {
		fmt.Fprintf(&b, "- **Average Complexity**: %.2f (%d files scored)\n", *avg, m.ScoredFiles)
	}
	if m.Lines > 0 {
		b.WriteString("- **Language Distribution**:\n")
		for _, lang := range m.LanguagesByLines() {
			lines := m.LanguageDistribution[lang]
			fmt.Fprintf(&b, "  - **%s**: %d lines (%.1f%%)\n", lang, lines, float64(lines)*100/float64(m.Lines))
		}
	} else {
		b.WriteString("- No lines of code analyzed\n")
	}
	b.WriteString("\n")

	b.WriteString("## Code Quality\n\n")
	if s.Coverage != nil {
		fmt.Fprintf(&b, "- **Coverage**: %.1f%% (%d files, from %s)\n", s.Coverage.Overall, len(s.Coverage.Files), s.Coverage.Report)
	} else {
		b.WriteString("- **Coverage**: Not available\n")
	}
	fmt.Fprintf(&b, "- **Linting Issues**: %d\n", len(s.Lint))
	if avg, ok := models.AverageMaintainability(s.Maintainability); ok {
		fmt.Fprintf(&b, "- **Maintainability Index**: %.1f (%d files)\n", avg, len(s.Maintainability))
	}
	if n := len(s.CallCycles); n > 0 {
		fmt.Fprintf(&b, "- **Call Cycles**: %d (see %s)\n", n, CallCyclesFile)
	}
	b.WriteString("\n")

	if len(s.Contributors) > 0 {
		b.WriteString("## Contributors\n\n")
		for _, c := range s.Contributors {
			fmt.Fprintf(&b, "- %s (%d commits)\n", c.Name, c.Commits)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Contributing\n\n")
	b.WriteString("1. Fork the repository\n")
	b.WriteString("2. Create a feature branch (`git checkout -b feature/amazing-feature`)\n")
	b.WriteString("3. Commit your changes (`git commit -m 'Add some amazing feature'`)\n")
	b.WriteString("4. Push to the branch (`git push origin feature/amazing-feature`)\n")
	b.WriteString("5. Open a Pull Request\n\n")

	b.WriteString("## License\n\n")
	b.WriteString("This project is licensed under the MIT License - see the LICENSE file for details.\n\n")
	b.WriteString("---\n\n*This README was auto-generated by SmartRepo*\n")
	return b.String()
}

func projectTypeLabel(p models.ProjectProfile) string {
	if p.Framework != "" && p.Framework != p.Type {
		return fmt.Sprintf("%s (%s)", p.Type, p.Framework)
	}
	return p.Type
}

func overview(s *models.AnalysisSummary) string {
	var parts []string
	switch s.Project.Type {
	case "Node.js":
		parts = append(parts, "A Node.js application")
	case "Python":
		parts = append(parts, "A Python application")
	case "Flutter":
		parts = append(parts, "A Flutter mobile application")
	default:
		parts = append(parts, fmt.Sprintf("A %s application", s.Project.Type))
	}
	if s.Project.Description != "" {
		parts[0] += ": " + s.Project.Description
	}
	if len(s.Project.EntryPoints) > 0 {
		parts = append(parts, fmt.Sprintf("with main entry point at `%s`", s.Project.EntryPoints[0]))
	}
	if _, ok := s.Category(CategoryModels); ok {
		parts = append(parts, "featuring a well-structured data layer")
	}
	if _, ok := s.Category(CategoryServices); ok {
		parts = append(parts, "with dedicated business logic services")
	}
	return strings.Join(parts, ". ") + "."
}

// badges shields.io 静态徽章
func badges(s *models.AnalysisSummary) string {
	items := [][3]string{
		{"type", s.Project.Type, "blue"},
		{"files", fmt.Sprint(s.Metrics.Files), "green"},
		{"lines", fmt.Sprint(s.Metrics.Lines), "green"},
		{"languages", fmt.Sprint(len(s.Project.Languages)), "orange"},
	}
	if s.Project.Framework != "" {
		items = append(items, [3]string{"framework", s.Project.Framework, "purple"})
	}
	if avg := s.Metrics.AverageComplexity; avg != nil {
		items = append(items, [3]string{"complexity", fmt.Sprintf("%.2f", *avg), "yellow"})
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprintf("![%s](https://img.shields.io/badge/%s-%s-%s)",
			it[0], badgeEscape(it[0]), badgeEscape(it[1]), it[2]))
	}
	return strings.Join(out, " ")
}

// badgeEscape shields.io 中 - 和 _ 需要双写，空格写作 _
func badgeEscape(s string) string {
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, " ", "_")
	return url.PathEscape(s)
}

func asciiTree(cats []models.ArchitectureCategory) string {
	var b strings.Builder
	for _, c := range cats {
		fmt.Fprintf(&b, "├── %s/\n", c.Name)
		for i, f := range c.Files {
			branch := "├──"
			if i == len(c.Files)-1 {
				branch = "└──"
			}
			fmt.Fprintf(&b, "│   %s %s\n", branch, path.Base(f))
		}
	}
	return b.String()
}

func writeDeps(b *strings.Builder, title string, deps []string) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for i, d := range deps {
		if i == readmeDepsLimit {
			fmt.Fprintf(b, "- ... and %d more\n", len(deps)-readmeDepsLimit)
			break
		}
		fmt.Fprintf(b, "- %s\n", d)
	}
	b.WriteString("\n")
}

func prerequisites(projectType string) []string {
	switch projectType {
	case "Node.js":
		return []string{"Node.js (v14 or higher)", "npm or yarn"}
	case "Python":
		return []string{"Python 3.7+", "pip"}
	case "Flutter", "Dart":
		return []string{"Flutter SDK", "Dart SDK"}
	case "Rust":
		return []string{"Rust toolchain", "Cargo"}
	case "Go":
		return []string{"Go 1.16+"}
	default:
		return []string{"Check project documentation for specific requirements"}
	}
}

func installCommand(projectType string) string {
	switch projectType {
	case "Node.js":
		return "npm install"
	case "Python":
		return "pip install -r requirements.txt"
	case "Flutter", "Dart":
		return "flutter pub get"
	case "Rust":
		return "cargo build"
	case "Go":
		return "go mod download"
	default:
		return ""
	}
}

func usageCommand(p models.ProjectProfile) string {
	entry := ""
	if len(p.EntryPoints) > 0 {
		entry = p.EntryPoints[0]
	}
	switch p.Type {
	case "Node.js":
		if entry != "" {
			return "npm start\n# or\nnode " + entry
		}
		return "npm start"
	case "Python":
		if entry != "" {
			return "python " + entry
		}
	case "Flutter":
		return "flutter run"
	case "Rust":
		return "cargo run"
	case "Go":
		if entry != "" {
			return "go run " + entry
		}
		return "go run ."
	}
	return ""
}

func orNone(s string) string {
	if s == "" {
		return "none detected"
	}
	return s
}
