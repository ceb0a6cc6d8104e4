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
	"time"

	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/style"
	"github.com/yeisme/smartrepo/pkg/tools"
	"github.com/yeisme/smartrepo/pkg/utils/callgraph"
	"github.com/yeisme/smartrepo/pkg/utils/classify"
	"github.com/yeisme/smartrepo/pkg/utils/count"
	"github.com/yeisme/smartrepo/pkg/utils/coverage"
	"github.com/yeisme/smartrepo/pkg/utils/deps"
	"github.com/yeisme/smartrepo/pkg/utils/examples"
	"github.com/yeisme/smartrepo/pkg/utils/fsop"
	"github.com/yeisme/smartrepo/pkg/utils/gitinfo"
	"github.com/yeisme/smartrepo/pkg/utils/llm"
	"github.com/yeisme/smartrepo/pkg/utils/log"
	"github.com/yeisme/smartrepo/pkg/utils/walker"
)

const maxContributors = 20

// AnalyzeOptions analyze 命令的选项
type AnalyzeOptions struct {
	Output     string // 输出目录，默认 <project>/smartrepo-analysis
	Verbose    bool
	Complexity bool
	Security   bool
	Lint       bool
	AIKey      string
	Monorepo   bool
	Only       string // 按模糊匹配筛选子项目
	Pick       bool   // 交互选择一个子项目
	HTML       bool
	JSON       bool
	Preview    bool
	Watch      bool
	NoProgress bool
}

// Capabilities 分析用到的外部能力，nil 表示关闭对应的增强步骤
type Capabilities struct {
	Scorer          tools.ComplexityScorer
	Maintainability tools.MaintainabilityScorer
	Scanner         tools.SecurityScanner
	Linters         []tools.Linter
	Renderer        tools.DiagramRenderer
	LLM             llm.Client
}

// Report 一次分析的结果
type Report struct {
	Summary   *models.AnalysisSummary
	OutputDir string
	Written   []string
	Results   []generator.Result
	Skipped   []count.Skip
}

// Analyzer 分析流水线：遍历、分类、统计、增强、生成文档
// watch 模式下同一个 Analyzer 重复运行，复用文件指标缓存
type Analyzer struct {
	cfg      configs.AnalyzeConfig
	ai       configs.AIConfig
	opts     AnalyzeOptions
	caps     Capabilities
	logger   log.Logger
	agg      *count.Aggregator
	progress io.Writer
	bar      *style.Progress
	now      func() time.Time
}

// NewAnalyzer 创建分析器
func NewAnalyzer(cfg *configs.Config, opts AnalyzeOptions, caps Capabilities, logger log.Logger) *Analyzer {
	if logger == nil {
		logger = log.GetLogger()
	}
	a := &Analyzer{
		cfg:    cfg.Analyze,
		ai:     cfg.AI,
		opts:   opts,
		caps:   caps,
		logger: logger,
		now:    time.Now,
	}
	cacheSize := 0
	if opts.Watch {
		cacheSize = cfg.Analyze.CacheSize
	}
	a.agg = count.NewAggregator(count.DefaultRegistry(), caps.Scorer, count.Options{
		Concurrency: cfg.Analyze.Concurrency,
		Complexity:  a.complexityEnabled(),
		CacheSize:   cacheSize,
		Logger:      logger,
		OnFile:      func(string) { a.bar.Add(1) },
	})
	return a
}

// WithProgress 在 w 上显示进度条，w 不是终端时不显示
func (a *Analyzer) WithProgress(w io.Writer) *Analyzer {
	a.progress = w
	return a
}

// WithClock 替换生成时间的时钟
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

func (a *Analyzer) complexityEnabled() bool {
	return (a.opts.Complexity || a.cfg.Complexity) && a.caps.Scorer != nil
}

func (a *Analyzer) lintEnabled() bool {
	return (a.opts.Lint || a.cfg.Lint) && len(a.caps.Linters) > 0
}

func (a *Analyzer) showProgress() bool {
	return a.progress != nil && !a.opts.NoProgress && !a.opts.Verbose
}

// Run 分析 root 并把文档写入 outDir，outDir 为空时使用 <root>/<output_dir>
// 根目录错误和输出写入失败是致命错误，其余失败只跳过对应步骤
func (a *Analyzer) Run(ctx context.Context, root, outDir string) (*Report, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	if outDir == "" {
		outDir = filepath.Join(root, a.cfg.OutputDir)
	}
	if outDir, err = filepath.Abs(outDir); err != nil {
		return nil, fmt.Errorf("%w: resolve output directory: %w", generator.ErrOutputWrite, err)
	}
	if err := fsop.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("%w: create output directory %s: %w", generator.ErrOutputWrite, outDir, err)
	}

	start := time.Now()
	files, err := a.walk(ctx, root, outDir)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Int("candidates", len(files)).Dur("took", time.Since(start)).Msg("walk finished")

	profile := classify.New(classify.Config{ContentHints: true, Logger: a.logger}).Classify(root, files)
	a.logger.Debug().Str("type", profile.Type).Str("framework", profile.Framework).Msg("project classified")

	res, err := a.aggregate(ctx, files)
	if err != nil {
		return nil, err
	}

	s := &models.AnalysisSummary{
		Project:         profile,
		Metrics:         res.Metrics,
		Files:           res.Files,
		GeneratedAt:     a.now().UTC().Format(time.RFC3339),
		AnalyzerVersion: models.AnalyzerVersion,
	}
	a.enrich(ctx, root, s)

	out := generator.NewOutput(outDir)
	results, err := generator.RunAll(ctx, s, out, a.logger, generator.Default(a.generatorOptions())...)
	report := &Report{
		Summary:   s,
		OutputDir: outDir,
		Written:   out.Written(),
		Results:   results,
		Skipped:   res.Skipped,
	}
	a.logger.Info().Str("project", profile.Name).Int("files", s.Metrics.Files).
		Dur("took", time.Since(start)).Msg("analysis finished")
	return report, err
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project path %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrProjectNotFound, abs)
		}
		return "", fmt.Errorf("stat project path %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return abs, nil
}

// walk 收集候选文件；输出目录位于项目内时不参与统计
func (a *Analyzer) walk(ctx context.Context, root, outDir string) ([]walker.Candidate, error) {
	wcfg := walker.FromAnalyzeConfig(a.cfg)
	if rel, err := filepath.Rel(root, outDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		wcfg.IgnorePatterns = append(wcfg.IgnorePatterns, filepath.ToSlash(rel)+"/")
	}
	wcfg.OnSkip = func(path string, reason error) {
		a.logger.Debug().Err(reason).Str("file", path).Msg("skip file")
	}
	w := walker.New(wcfg)
	files := slices.Collect(w.Walk(ctx, root))
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("walk project: %w", err)
	}
	return files, nil
}

func (a *Analyzer) aggregate(ctx context.Context, files []walker.Candidate) (*count.Result, error) {
	if a.showProgress() {
		a.bar = style.NewProgress(a.progress, len(files), "analyzing")
	}
	defer func() {
		a.bar.Finish()
		a.bar = nil
	}()

	res, err := a.agg.Aggregate(ctx, slices.Values(files))
	if err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}
	for _, e := range res.ScoreErrors {
		logEnrichmentError(a.logger, "complexity", e)
	}
	if n := len(res.Skipped); n > 0 {
		a.logger.Debug().Int("skipped", n).Msg("unreadable files skipped")
	}
	return res, nil
}

// enrich 依次执行各增强步骤，单步失败只记录日志
func (a *Analyzer) enrich(ctx context.Context, root string, s *models.AnalysisSummary) {
	if d, err := deps.Extract(root); err != nil {
		logEnrichmentError(a.logger, "dependencies", err)
	} else {
		s.Dependencies = d
	}

	s.Architecture = generator.Categorize(s.Files)
	s.DependencyGraph = deps.BuildImportGraph(s.Files).Edges()

	if a.cfg.Generators.Contributors {
		c, err := gitinfo.Contributors(ctx, root, maxContributors)
		switch {
		case errors.Is(err, gitinfo.ErrNotRepository):
			a.logger.Debug().Str("root", root).Msg("no git history, contributors skipped")
		case err != nil:
			logEnrichmentError(a.logger, "contributors", err)
		default:
			s.Contributors = c
		}
	}

	if cov, err := coverage.Load(root, a.cfg.CoverageFile); err != nil {
		if errors.Is(err, coverage.ErrNoReport) {
			a.logger.Debug().Str("root", root).Msg("no coverage report, coverage skipped")
		} else {
			logEnrichmentError(a.logger, "coverage", err)
		}
	} else {
		s.Coverage = cov
	}

	if a.lintEnabled() {
		s.Lint = a.lint(ctx, root, s.Files)
	}

	if a.complexityEnabled() && a.caps.Maintainability != nil {
		m, err := a.maintainability(ctx, root, s.Files)
		if err != nil {
			logEnrichmentError(a.logger, "maintainability", err)
		} else {
			s.Maintainability = m
		}
	}

	if a.cfg.Generators.UsageExamples {
		if ex, err := examples.Extract(ctx, root, s.Files); err != nil {
			logEnrichmentError(a.logger, "usage examples", err)
		} else {
			s.UsageExamples = ex
		}
	}

	if a.cfg.Generators.CallGraph {
		if g, err := callgraph.Build(ctx, root, s.Files); err != nil {
			logEnrichmentError(a.logger, "call graph", err)
		} else {
			s.CallGraph = callgraph.Edges(g)
			s.CallCycles = g.Cycles()
		}
	}

	if a.opts.Security && a.caps.Scanner != nil {
		findings, err := a.scan(ctx, root, s.Files)
		if err != nil {
			logEnrichmentError(a.logger, "security scan", err)
		} else {
			s.Security = findings
		}
	}

	if a.caps.LLM != nil {
		sum := llm.Summarizer{Client: a.caps.LLM, MaxFiles: a.ai.MaxFiles, MaxChars: a.ai.MaxChars, Logger: a.logger}
		summaries, err := sum.Summarize(ctx, root, s.Files)
		if err != nil {
			logEnrichmentError(a.logger, "ai summaries", err)
		} else {
			s.AISummaries = summaries
		}
	}

	s.KeyInsights = generator.KeyInsights(s)
	s.Recommendations = generator.Recommendations(s)
}

// scan 对 Python 文件做安全扫描；缺少扫描工具时整个步骤失败
func (a *Analyzer) scan(ctx context.Context, root string, files []models.FileRecord) ([]models.SecurityFinding, error) {
	var python []models.FileRecord
	for _, f := range files {
		if f.Language == "Python" {
			python = append(python, f)
		}
	}
	var bar *style.Progress
	if a.showProgress() {
		bar = style.NewProgress(a.progress, len(python), "security scan")
		defer bar.Finish()
	}
	findings := []models.SecurityFinding{}
	for _, f := range python {
		got, err := a.caps.Scanner.Scan(ctx, filepath.Join(root, filepath.FromSlash(f.Path)))
		bar.Add(1)
		if err != nil {
			if _, missing := tools.IsMissingTool(err); missing || ctx.Err() != nil {
				return nil, err
			}
			a.logger.Debug().Err(err).Str("file", f.Path).Msg("security scan failed for file")
			continue
		}
		for _, finding := range got {
			finding.File = f.Path
			findings = append(findings, finding)
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
	return findings, nil
}

// lint 依次运行各检查工具，缺少的工具只跳过它自己
func (a *Analyzer) lint(ctx context.Context, root string, files []models.FileRecord) []models.LintIssue {
	type job struct {
		linter tools.Linter
		files  []models.FileRecord
	}
	var jobs []job
	total := 0
	for _, l := range a.caps.Linters {
		j := job{linter: l}
		for _, f := range files {
			if l.Accepts(f.Language) {
				j.files = append(j.files, f)
			}
		}
		if len(j.files) > 0 {
			jobs = append(jobs, j)
			total += len(j.files)
		}
	}
	var bar *style.Progress
	if a.showProgress() && total > 0 {
		bar = style.NewProgress(a.progress, total, "linting")
		defer bar.Finish()
	}

	issues := []models.LintIssue{}
	for _, j := range jobs {
		for i, f := range j.files {
			got, err := j.linter.Lint(ctx, filepath.Join(root, filepath.FromSlash(f.Path)))
			bar.Add(1)
			if err != nil {
				if _, missing := tools.IsMissingTool(err); missing {
					logEnrichmentError(a.logger, j.linter.Name(), err)
					bar.Add(len(j.files) - i - 1)
					break
				}
				if ctx.Err() != nil {
					return issues
				}
				a.logger.Debug().Err(err).Str("tool", j.linter.Name()).Str("file", f.Path).Msg("lint failed for file")
				continue
			}
			for _, issue := range got {
				issue.File = f.Path
				issues = append(issues, issue)
			}
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Tool < issues[j].Tool
	})
	return issues
}

// maintainability 对 Python 文件计算可维护性指数；缺少 radon 时整个步骤失败
func (a *Analyzer) maintainability(ctx context.Context, root string, files []models.FileRecord) ([]models.Maintainability, error) {
	var out []models.Maintainability
	for _, f := range files {
		if f.Language != "Python" {
			continue
		}
		m, err := a.caps.Maintainability.Maintainability(ctx, filepath.Join(root, filepath.FromSlash(f.Path)), f.Language)
		if err != nil {
			if _, missing := tools.IsMissingTool(err); missing || ctx.Err() != nil {
				return nil, err
			}
			a.logger.Debug().Err(err).Str("file", f.Path).Msg("maintainability failed for file")
			continue
		}
		m.File = f.Path
		out = append(out, m)
	}
	return out, nil
}

func (a *Analyzer) generatorOptions() generator.Options {
	gens := a.cfg.Generators
	gens.HTML = gens.HTML || a.opts.HTML
	return generator.Options{
		Prompt:     a.cfg.Prompt,
		Generators: gens,
		Renderer:   a.caps.Renderer,
		Security:   a.opts.Security && a.caps.Scanner != nil,
		AI:         a.caps.LLM != nil,
		Lint:       a.lintEnabled(),
		Complexity: a.complexityEnabled(),
		Logger:     a.logger,
	}
}

// DefaultCapabilities 根据配置和命令行选项构造外部能力
// AI key 依次取 --ai-key、ai.api_key（SMARTREPO_AI_API_KEY）和 SMARTREPO_AI_KEY
func DefaultCapabilities(ctx context.Context, cfg *configs.Config, opts AnalyzeOptions, logger log.Logger) Capabilities {
	timeout := time.Duration(cfg.Tools.Timeout) * time.Second
	caps := Capabilities{
		Renderer: tools.MermaidRenderer{Bin: cfg.Tools.Mermaid.Bin, Install: cfg.Tools.Mermaid.Install, Timeout: timeout},
	}
	if opts.Complexity || cfg.Analyze.Complexity {
		caps.Scorer = tools.DefaultScorer(cfg.Tools)
		caps.Maintainability = tools.RadonScorer{Bin: cfg.Tools.Radon.Bin, Install: cfg.Tools.Radon.Install, Timeout: timeout}
	}
	if opts.Lint || cfg.Analyze.Lint {
		caps.Linters = tools.DefaultLinters(cfg.Tools)
	}
	if opts.Security {
		caps.Scanner = tools.BanditScanner{Bin: cfg.Tools.Bandit.Bin, Install: cfg.Tools.Bandit.Install, Timeout: timeout}
	}

	key := firstNonEmpty(opts.AIKey, cfg.AI.APIKey, os.Getenv(configs.EnvPrefix+"_AI_KEY"))
	if key != "" {
		client, err := llm.NewGeminiClient(ctx, key, cfg.AI.Model)
		if err != nil {
			logger.Warn().Err(err).Msg("AI summaries disabled")
		} else {
			caps.LLM = client
		}
	}
	return caps
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
