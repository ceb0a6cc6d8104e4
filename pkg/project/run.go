package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/lithammer/fuzzysearch/fuzzy"
	gctx "github.com/yeisme/smartrepo/pkg/context"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/style"
	"github.com/yeisme/smartrepo/pkg/utils/fsop"
	"github.com/yeisme/smartrepo/pkg/utils/hotload"
)

// PickFunc 从多个子项目中交互选择一个，返回下标
type PickFunc func(subprojects []string) (int, error)

// FuzzyPick 使用 fuzzyfinder 交互选择
func FuzzyPick(subprojects []string) (int, error) {
	return fuzzyfinder.Find(subprojects, func(i int) string { return subprojects[i] })
}

// ExecuteAnalyzeCommand 执行 analyze 命令
//
//	args: 可能包含项目路径，为空时使用当前目录
//	w: 摘要输出目标（通常为 cmd.OutOrStdout()）
func ExecuteAnalyzeCommand(ctx *gctx.SmartRepoContext, opts AnalyzeOptions, args []string, w io.Writer) error {
	logger := loggerOf(ctx)
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}

	caps := DefaultCapabilities(ctx, ctx.Config, opts, logger)
	a := NewAnalyzer(ctx.Config, opts, caps, logger).WithProgress(os.Stderr)
	run := func() error {
		return runAnalysis(ctx, a, ctx.Config, opts, root, w, FuzzyPick)
	}

	if err := run(); err != nil && (!opts.Watch || IsFatal(err)) {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return watchAndRerun(ctx, ctx.Config, opts, root, run)
}

// runAnalysis 单项目或 monorepo 模式执行一次分析并打印结果
func runAnalysis(ctx context.Context, a *Analyzer, cfg *configs.Config, opts AnalyzeOptions, root string, w io.Writer, pick PickFunc) error {
	abs, err := resolveRoot(root)
	if err != nil {
		return err
	}
	outBase := opts.Output
	if outBase == "" {
		outBase = filepath.Join(abs, cfg.Analyze.OutputDir)
	}

	var subs []string
	if opts.Monorepo || cfg.Analyze.Monorepo {
		if subs, err = selectSubprojects(abs, cfg.Analyze, opts, pick); err != nil {
			return err
		}
	}

	var reports []*Report
	var errs []error
	if len(subs) == 0 {
		r, err := a.Run(ctx, abs, outBase)
		if r != nil {
			reports = append(reports, r)
		}
		errs = append(errs, err)
	} else {
		a.logger.Info().Int("subprojects", len(subs)).Msg("monorepo mode")
		for _, sub := range subs {
			r, err := a.Run(ctx, filepath.Join(abs, filepath.FromSlash(sub)), filepath.Join(outBase, filepath.FromSlash(sub)))
			if r != nil {
				reports = append(reports, r)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("subproject %s: %w", sub, err))
			}
		}
	}

	if perr := printReports(w, reports, opts, cfg.App.Quiet); perr != nil {
		errs = append(errs, perr)
	}
	return errors.Join(errs...)
}

// selectSubprojects 找出包含清单文件的子目录，再按 --only 和 --pick 筛选
func selectSubprojects(root string, cfg configs.AnalyzeConfig, opts AnalyzeOptions, pick PickFunc) ([]string, error) {
	ignore := append(slices.Clone(cfg.IgnorePatterns), cfg.OutputDir)
	subs, err := fsop.FindSubprojects(root, cfg.MonorepoDepth, ignore)
	if err != nil {
		return nil, fmt.Errorf("find subprojects: %w", err)
	}
	if opts.Only != "" {
		subs = FilterSubprojects(opts.Only, subs)
		if len(subs) == 0 {
			return nil, fmt.Errorf("no subproject matches %q", opts.Only)
		}
	}
	if opts.Pick && len(subs) > 1 && pick != nil {
		idx, err := pick(subs)
		if err != nil {
			return nil, fmt.Errorf("pick subproject: %w", err)
		}
		subs = []string{subs[idx]}
	}
	return subs, nil
}

// FilterSubprojects 按不区分大小写的模糊匹配筛选，按匹配距离排序
func FilterSubprojects(query string, subs []string) []string {
	ranks := fuzzy.RankFindFold(query, subs)
	sort.Sort(ranks)
	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return out
}

// watchAndRerun 监听项目目录，变化后重新分析直到 ctx 结束
func watchAndRerun(ctx *gctx.SmartRepoContext, cfg *configs.Config, opts AnalyzeOptions, root string, run func() error) error {
	logger := loggerOf(ctx)
	abs, err := resolveRoot(root)
	if err != nil {
		return err
	}
	hcfg := cfg.App.Hotload
	hcfg.IgnorePatterns = slices.Clone(hcfg.IgnorePatterns)
	if opts.Output != "" {
		if outAbs, err := filepath.Abs(opts.Output); err == nil {
			if rel, err := filepath.Rel(abs, outAbs); err == nil && !strings.HasPrefix(rel, "..") {
				hcfg.IgnorePatterns = append(hcfg.IgnorePatterns, filepath.ToSlash(rel)+"/*")
			}
		}
	}
	hcfg.IgnorePatterns = append(hcfg.IgnorePatterns, cfg.Analyze.OutputDir+"/*")

	return hotload.Watch(ctx, hotload.Options{
		Root:       abs,
		Config:     hcfg,
		Extensions: cfg.Analyze.ExtensionMap(),
		Logger:     logger,
	}, func(changed []string) {
		logger.Debug().Strs("changed", changed).Msg("re-running analysis")
		if err := run(); err != nil {
			logger.Error().Err(err).Msg("analysis failed")
		}
	})
}

// printReports 按选项输出 JSON、摘要或 README 预览
func printReports(w io.Writer, reports []*Report, opts AnalyzeOptions, quiet bool) error {
	if opts.JSON {
		return printJSON(w, reports)
	}
	if quiet {
		return nil
	}
	for i, r := range reports {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		if err := printSummary(w, r, opts.Verbose); err != nil {
			return err
		}
		if opts.Preview {
			md, err := os.ReadFile(filepath.Join(r.OutputDir, generator.ReadmeFile))
			if err != nil {
				return fmt.Errorf("read README for preview: %w", err)
			}
			_, _ = fmt.Fprintln(w)
			if err := style.RenderMarkdown(w, string(md), "dark"); err != nil {
				return err
			}
		}
	}
	return nil
}

// printJSON 单个项目输出对象，monorepo 输出数组
func printJSON(w io.Writer, reports []*Report) error {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		b, err := generator.MarshalSummary(r.Summary)
		if err != nil {
			return err
		}
		parts = append(parts, strings.TrimSpace(string(b)))
	}
	data := []byte("[" + strings.Join(parts, ",") + "]")
	if len(parts) == 1 {
		data = []byte(parts[0])
	}
	if style.IsTerminal(w) {
		return style.PrintJSON(w, data)
	}
	formatted, err := style.FormatJSON(data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, formatted)
	return err
}

// printSummary 输出标题、指标、语言表、架构树、关键结论和生成的文件
func printSummary(w io.Writer, r *Report, verbose bool) error {
	s := r.Summary
	if err := style.PrintHeading(w, "analysis complete"); err != nil {
		return err
	}
	typ := s.Project.Type
	if s.Project.Framework != "" {
		typ += " (" + s.Project.Framework + ")"
	}
	pairs := []style.KeyValue{
		{Key: "Project", Value: s.Project.Name},
		{Key: "Type", Value: typ},
		{Key: "Languages", Value: orDash(strings.Join(s.Project.Languages, ", "))},
		{Key: "Files analyzed", Value: groupDigits(int64(s.Metrics.Files))},
		{Key: "Total lines", Value: groupDigits(int64(s.Metrics.Lines))},
		{Key: "Functions", Value: groupDigits(int64(s.Metrics.Functions))},
		{Key: "Classes", Value: groupDigits(int64(s.Metrics.Classes))},
	}
	if avg := s.Metrics.AverageComplexity; avg != nil {
		pairs = append(pairs, style.KeyValue{Key: "Average complexity", Value: fmt.Sprintf("%.2f", *avg)})
	}
	if s.Coverage != nil {
		pairs = append(pairs, style.KeyValue{Key: "Test coverage", Value: fmt.Sprintf("%.1f%%", s.Coverage.Overall)})
	}
	if n := len(s.Lint); n > 0 {
		pairs = append(pairs, style.KeyValue{Key: "Lint issues", Value: groupDigits(int64(n))})
	}
	if n := len(s.CallCycles); n > 0 {
		pairs = append(pairs, style.KeyValue{Key: "Call cycles", Value: groupDigits(int64(n))})
	}
	if n := len(r.Skipped); n > 0 && !verbose {
		pairs = append(pairs, style.KeyValue{Key: "Skipped files", Value: fmt.Sprintf("%d (use --verbose for details)", n)})
	}
	if err := style.PrintKeyValues(w, pairs); err != nil {
		return err
	}

	if rows := languageRows(s); len(rows) > 0 {
		_, _ = fmt.Fprintln(w)
		if err := style.PrintTable(w, []string{"language", "files", "lines", "share"}, rows, 0); err != nil {
			return err
		}
	}

	if len(s.Architecture) > 0 {
		_, _ = fmt.Fprintln(w)
		if err := style.PrintTree(w, architectureTree(s)); err != nil {
			return err
		}
	}

	if len(s.Security) > 0 {
		_, _ = fmt.Fprintln(w)
		if err := printSecurity(w, s.Security); err != nil {
			return err
		}
	}

	if len(s.KeyInsights) > 0 {
		_, _ = fmt.Fprintln(w)
		if err := style.PrintBullets(w, "Key insights", s.KeyInsights); err != nil {
			return err
		}
	}

	if verbose {
		if err := printDetails(w, r); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Generated files:")
	sizes := map[string]int64{}
	if infos, err := fsop.ListFiles(r.OutputDir); err == nil {
		for _, fi := range infos {
			sizes[fi.Name] = fi.Size
		}
	}
	for _, name := range r.Written {
		if err := style.PrintStatus(w, true, name, groupDigits(sizes[name])+" bytes"); err != nil {
			return err
		}
	}
	for _, name := range generator.CoreFiles {
		if !slices.Contains(r.Written, name) {
			_ = style.PrintStatus(w, false, name, "not generated")
		}
	}
	_, err := fmt.Fprintf(w, "\nAll files saved to: %s\n", r.OutputDir)
	return err
}

// printSecurity 按严重度统计安全问题
func printSecurity(w io.Writer, findings []models.SecurityFinding) error {
	counts := map[string]int{}
	for _, f := range findings {
		counts[strings.ToUpper(f.Severity)]++
	}
	parts := make([]string, 0, len(counts))
	for _, sev := range []string{"HIGH", "MEDIUM", "LOW"} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.SeverityColor(sev)).Render(fmt.Sprintf("%d %s", n, strings.ToLower(sev))))
			delete(counts, sev)
		}
	}
	other := 0
	for _, n := range counts {
		other += n
	}
	if other > 0 {
		parts = append(parts, fmt.Sprintf("%d other", other))
	}
	_, err := fmt.Fprintf(w, "Security findings: %s (see security_report.json)\n", strings.Join(parts, ", "))
	return err
}

// printDetails verbose 模式下输出项目结构和被跳过的文件
func printDetails(w io.Writer, r *Report) error {
	const structureDepth = 3
	if len(r.Summary.Files) > 0 {
		paths := make([]string, 0, len(r.Summary.Files))
		for _, f := range r.Summary.Files {
			paths = append(paths, f.Path)
		}
		_, _ = fmt.Fprintln(w)
		if err := style.PrintTree(w, style.PathTree(r.Summary.Project.Name, paths, structureDepth)); err != nil {
			return err
		}
	}
	if len(r.Skipped) > 0 {
		items := make([]string, 0, len(r.Skipped))
		for _, sk := range r.Skipped {
			items = append(items, fmt.Sprintf("%s: %v", sk.Path, sk.Err))
		}
		_, _ = fmt.Fprintln(w)
		return style.PrintBullets(w, "Skipped files", items)
	}
	return nil
}

func languageRows(s *models.AnalysisSummary) [][]string {
	files := map[string]int{}
	for _, f := range s.Files {
		files[f.Language]++
	}
	var rows [][]string
	for _, lang := range s.Metrics.LanguagesByLines() {
		lines := s.Metrics.LanguageDistribution[lang]
		share := 0.0
		if s.Metrics.Lines > 0 {
			share = float64(lines) * 100 / float64(s.Metrics.Lines)
		}
		rows = append(rows, []string{lang, fmt.Sprint(files[lang]), groupDigits(int64(lines)), fmt.Sprintf("%.1f%%", share)})
	}
	return rows
}

// architectureTree 每个分组最多展示 5 个文件
func architectureTree(s *models.AnalysisSummary) style.TreeNode {
	const perCategory = 5
	root := style.TreeNode{Text: s.Project.Name}
	for _, c := range s.Architecture {
		node := style.TreeNode{Text: fmt.Sprintf("%s (%d)", c.Name, c.FileCount)}
		for i, f := range c.Files {
			if i == perCategory {
				node.Children = append(node.Children, style.TreeNode{Text: fmt.Sprintf("... and %d more", len(c.Files)-perCategory)})
				break
			}
			node.Children = append(node.Children, style.TreeNode{Text: f})
		}
		root.Children = append(root.Children, node)
	}
	return root
}

// groupDigits 千分位分隔
func groupDigits(n int64) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
