package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yeisme/smartrepo/pkg/models"
)

const (
	defaultMaxChunkChars = 6000
	defaultMaxKeywords   = 12
	promptNameLimit      = 10
	minIdentifierLen     = 3
	truncatedMarker      = "\n... (truncated)\n"
)

// Prompt 生成 prompt-ready.md
// 每个顶层目录一个块，块内重述项目名称和类型，不引用其他块
type Prompt struct {
	MaxChunkChars int
	MaxKeywords   int
}

func (Prompt) Name() string { return "prompt" }

func (p Prompt) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	return out.Write(PromptFile, []byte(RenderPrompt(s, BuildChunks(s, p.MaxChunkChars, p.MaxKeywords))))
}

// Chunk 面向 LLM 的独立文本块
type Chunk struct {
	Title    string
	Keywords []string
	Text     string
}

// RenderPrompt 拼接所有块
func RenderPrompt(s *models.AnalysisSummary, chunks []Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# AI-Ready Project Analysis: %s\n\n", s.Project.Name)
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// BuildChunks 生成概览块和按目录划分的块，每块不超过 maxChars 字节
// 超出的目录拆分为多个 part；概览块按架构、洞察的顺序丢弃列表尾部；单个文件条目过长时截断
func BuildChunks(s *models.AnalysisSummary, maxChars, maxKeywords int) []Chunk {
	if maxChars <= 0 {
		maxChars = defaultMaxChunkChars
	}
	if maxKeywords <= 0 {
		maxKeywords = defaultMaxKeywords
	}
	chunks := []Chunk{quickSummary(s, maxChars, maxKeywords)}
	for _, g := range groupByTopDir(s.Files) {
		chunks = append(chunks, directoryChunks(s, g, maxChars, maxKeywords)...)
	}
	return chunks
}

func contextLine(s *models.AnalysisSummary) string {
	p := s.Project
	langs := "none detected"
	if len(p.Languages) > 0 {
		langs = strings.Join(p.Languages, ", ")
	}
	return fmt.Sprintf("Project: %s (Type: %s; Languages: %s)", p.Name, projectTypeLabel(p), langs)
}

func complexityLevel(avg float64) string {
	switch {
	case avg > 5:
		return "High"
	case avg > 3:
		return "Medium"
	default:
		return "Low"
	}
}

func quickSummary(s *models.AnalysisSummary, maxChars, maxKeywords int) Chunk {
	p := s.Project
	m := s.Metrics
	var b strings.Builder

	b.WriteString("## Quick Summary\n\n")
	b.WriteString(contextLine(s) + "\n\n")
	fmt.Fprintf(&b, "This is a %s project with %d files and %d lines of code across %d programming languages.\n\n",
		p.Type, m.Files, m.Lines, len(m.LanguageDistribution))

	var kw []string
	kw = append(kw, p.Type)
	if p.Framework != "" {
		kw = append(kw, p.Framework)
	}
	kw = append(kw, m.LanguagesByLines()...)
	for _, c := range s.Architecture {
		kw = append(kw, c.Name)
	}
	kw = capKeywords(kw, maxKeywords)
	fmt.Fprintf(&b, "Keywords: %s\n\n", strings.Join(kw, ", "))

	b.WriteString("### Project Context\n\n")
	fmt.Fprintf(&b, "- **Type**: %s\n", projectTypeLabel(p))
	fmt.Fprintf(&b, "- **Languages**: %s\n", orNone(strings.Join(p.Languages, ", ")))
	if len(p.EntryPoints) > 0 {
		fmt.Fprintf(&b, "- **Entry Points**: %s\n", strings.Join(p.EntryPoints, ", "))
	} else {
		b.WriteString("- **Entry Points**: Not specified\n")
	}
	fmt.Fprintf(&b, "- **Totals**: %d files, %d lines, %d functions, %d classes\n", m.Files, m.Lines, m.Functions, m.Classes)
	if avg := m.AverageComplexity; avg != nil {
		fmt.Fprintf(&b, "- **Complexity**: %s (average %.2f over %d files)\n", complexityLevel(*avg), *avg, m.ScoredFiles)
	}
	if len(s.Dependencies.Runtime) > 0 {
		fmt.Fprintf(&b, "- **Runtime Dependencies**: %s\n", limitList(s.Dependencies.Runtime, 8))
	}
	if len(s.Dependencies.Development) > 0 {
		fmt.Fprintf(&b, "- **Development Dependencies**: %s\n", limitList(s.Dependencies.Development, 5))
	}

	if m.Files == 0 {
		b.WriteString("\nNo supported source files were found in this project.\n")
	}

	var dist, arch, insights []string
	if m.Lines > 0 {
		for _, lang := range m.LanguagesByLines() {
			lines := m.LanguageDistribution[lang]
			dist = append(dist, fmt.Sprintf("- %s: %d lines (%.1f%%)\n", lang, lines, float64(lines)*100/float64(m.Lines)))
		}
	}
	for _, c := range s.Architecture {
		arch = append(arch, fmt.Sprintf("- **%s** (%d files): %s\n", c.Name, c.FileCount, c.Description))
	}
	for _, i := range s.KeyInsights {
		insights = append(insights, fmt.Sprintf("- %s\n", i))
	}

	text := b.String()
	text = appendSection(text, "\n### Language Distribution\n\n", dist, maxChars)
	text = appendSection(text, "\n### Architecture Overview\n\n", arch, maxChars)
	text = appendSection(text, "\n### Development Insights\n\n", insights, maxChars)
	return Chunk{Title: "Quick Summary", Keywords: kw, Text: clip(text, maxChars)}
}

// appendSection 在 maxChars 内尽量多地追加列表项，放不下的项折叠为一行计数
func appendSection(text, heading string, items []string, maxChars int) string {
	if len(items) == 0 || len(text)+len(heading)+len(items[0]) > maxChars {
		return text
	}
	text += heading
	for i, item := range items {
		if len(text)+len(item) > maxChars {
			if more := fmt.Sprintf("- ... (+%d more)\n", len(items)-i); len(text)+len(more) <= maxChars {
				text += more
			}
			break
		}
		text += item
	}
	return text
}

// clip 超过 maxChars 时在字符边界截断并以标记结尾，结果不超过 maxChars
func clip(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	marker := truncatedMarker
	cut := maxChars - len(marker)
	if cut < 0 {
		marker, cut = "", maxChars
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + marker
}

func directoryChunks(s *models.AnalysisSummary, g dirGroup, maxChars, maxKeywords int) []Chunk {
	kw := directoryKeywords(g.files, maxKeywords)
	var lines, funcs, classes int
	for _, f := range g.files {
		lines += f.Lines
		funcs += f.Functions
		classes += f.Classes
	}
	dirLabel := g.dir
	if g.dir != rootGroup {
		dirLabel = g.dir + "/"
	}

	header := func(part int) (string, string) {
		title := "Directory: " + dirLabel
		if part > 0 {
			title = fmt.Sprintf("%s (part %d)", title, part)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n", title)
		b.WriteString(contextLine(s) + "\n")
		fmt.Fprintf(&b, "Directory `%s` contains %d files, %d lines, %d functions and %d classes.\n",
			dirLabel, len(g.files), lines, funcs, classes)
		fmt.Fprintf(&b, "Keywords: %s\n\n", strings.Join(kw, ", "))
		return title, b.String()
	}

	entries := make([]string, 0, len(g.files))
	for _, f := range g.files {
		entries = append(entries, fileEntry(f))
	}

	// 先按单块尝试，放不下再拆分
	title, head := header(0)
	total := len(head)
	for _, e := range entries {
		total += len(e)
	}
	if total <= maxChars {
		return []Chunk{{Title: title, Keywords: kw, Text: head + strings.Join(entries, "")}}
	}

	var chunks []Chunk
	part := 1
	title, head = header(part)
	var body strings.Builder
	for _, e := range entries {
		if body.Len() > 0 && len(head)+body.Len()+len(e) > maxChars {
			chunks = append(chunks, Chunk{Title: title, Keywords: kw, Text: clip(head+body.String(), maxChars)})
			part++
			title, head = header(part)
			body.Reset()
		}
		// 单个条目独占一块仍放不下时截断
		body.WriteString(clip(e, max(maxChars-len(head), 0)))
	}
	if body.Len() > 0 {
		chunks = append(chunks, Chunk{Title: title, Keywords: kw, Text: clip(head+body.String(), maxChars)})
	}
	return chunks
}

func fileEntry(f models.FileRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- `%s` (%d lines, %s)", f.Path, f.Lines, f.Language)
	if f.Summary != "" {
		fmt.Fprintf(&b, ": %s", f.Summary)
	}
	b.WriteString("\n")
	if len(f.ClassNames) > 0 {
		fmt.Fprintf(&b, "  - Classes: %s\n", limitList(f.ClassNames, promptNameLimit))
	}
	if len(f.FunctionNames) > 0 {
		fmt.Fprintf(&b, "  - Functions: %s\n", limitList(f.FunctionNames, promptNameLimit))
	}
	if v, ok := f.Complexity.Value(); ok {
		fmt.Fprintf(&b, "  - Complexity: %.2f (%s)\n", v, complexityLevel(v))
	}
	return b.String()
}

// directoryKeywords 语言（按行数）、分组名，再用出现次数最多的标识符补足
func directoryKeywords(files []models.FileRecord, maxKeywords int) []string {
	langLines := map[string]int{}
	cats := map[string]struct{}{}
	idents := map[string]int{}
	for _, f := range files {
		langLines[f.Language] += f.Lines
		cats[CategoryOf(f.Path)] = struct{}{}
		for _, n := range f.ClassNames {
			idents[n] += 2
		}
		for _, n := range f.FunctionNames {
			if i := strings.LastIndexByte(n, '.'); i >= 0 {
				n = n[i+1:]
			}
			if len(n) < minIdentifierLen || strings.HasPrefix(n, "_") {
				continue
			}
			idents[n]++
		}
	}

	kw := models.Metrics{LanguageDistribution: langLines}.LanguagesByLines()
	for _, name := range categoryOrder {
		if _, ok := cats[name]; ok {
			kw = append(kw, name)
		}
	}
	names := make([]string, 0, len(idents))
	for n := range idents {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if idents[names[i]] != idents[names[j]] {
			return idents[names[i]] > idents[names[j]]
		}
		return names[i] < names[j]
	})
	kw = append(kw, names...)
	return capKeywords(kw, maxKeywords)
}

func capKeywords(kw []string, limit int) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, limit)
	for _, k := range kw {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
		if len(out) == limit {
			break
		}
	}
	return out
}

func limitList(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:n], ", "), len(items)-n)
}
