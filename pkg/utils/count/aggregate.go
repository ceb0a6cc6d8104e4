package count

import (
	"context"
	"iter"
	"os"
	"runtime"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/walker"
)

// ComplexityScorer 计算单个文件的复杂度
// 返回错误时该文件的复杂度标记为不可用，错误信息作为原因
type ComplexityScorer interface {
	Score(ctx context.Context, path, lang string) (float64, error)
}

// Options 聚合器选项，零值可用
type Options struct {
	// Concurrency 并发处理的文件数，<=0 时使用 CPU 核数
	Concurrency int
	// Complexity 是否计算复杂度；关闭时 FileRecord.Complexity 为 nil
	Complexity bool
	// CacheSize 跨次运行复用结果的缓存条目数，0 表示不缓存
	CacheSize int
	Logger    *zerolog.Logger
	// OnFile 每处理完一个文件回调一次（在同一个 goroutine 中调用）
	OnFile func(path string)
}

// Skip 读取失败被跳过的文件
type Skip struct {
	Path string
	Err  error
}

// Result 一次聚合的结果
type Result struct {
	Metrics models.Metrics
	Files   []models.FileRecord // 按路径排序
	Skipped []Skip
	// ScoreErrors 复杂度计算错误，按错误信息去重
	ScoreErrors []error
}

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

// Aggregator 并发统计候选文件并汇总
type Aggregator struct {
	registry *Registry
	scorer   ComplexityScorer
	opts     Options
	cache    *lru.Cache[cacheKey, models.FileRecord]
}

// NewAggregator 创建聚合器；registry 为 nil 时使用 DefaultRegistry
func NewAggregator(registry *Registry, scorer ComplexityScorer, opts Options) *Aggregator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	a := &Aggregator{registry: registry, scorer: scorer, opts: opts}
	if opts.CacheSize > 0 {
		if c, err := lru.New[cacheKey, models.FileRecord](opts.CacheSize); err == nil {
			a.cache = c
		}
	}
	return a
}

type outcome struct {
	rec      models.FileRecord
	path     string
	err      error
	scoreErr error
}

// Aggregate 使用 worker pool 处理 files
// 单个文件失败只会被跳过；只有 ctx 取消时返回错误
func (a *Aggregator) Aggregate(ctx context.Context, files iter.Seq[walker.Candidate]) (*Result, error) {
	conc := prepareConcurrency(a.opts.Concurrency)

	inCh := make(chan walker.Candidate)
	outCh := make(chan outcome)
	var wg sync.WaitGroup

	wg.Add(conc)
	for range conc {
		go func() {
			defer wg.Done()
			for c := range inCh {
				outCh <- a.process(ctx, c)
			}
		}()
	}

	go func() {
		defer close(outCh)
		for c := range files {
			if ctx.Err() != nil {
				break
			}
			inCh <- c
		}
		close(inCh)
		wg.Wait()
	}()

	res := &Result{Files: []models.FileRecord{}}
	seen := map[string]bool{}
	for o := range outCh {
		if a.opts.OnFile != nil {
			a.opts.OnFile(o.path)
		}
		if o.err != nil {
			a.opts.Logger.Debug().Err(o.err).Str("file", o.path).Msg("skip file")
			res.Skipped = append(res.Skipped, Skip{Path: o.path, Err: o.err})
			continue
		}
		if o.scoreErr != nil && !seen[o.scoreErr.Error()] {
			seen[o.scoreErr.Error()] = true
			res.ScoreErrors = append(res.ScoreErrors, o.scoreErr)
		}
		res.Files = append(res.Files, o.rec)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	sort.Slice(res.Skipped, func(i, j int) bool { return res.Skipped[i].Path < res.Skipped[j].Path })
	res.Metrics = models.ComputeMetrics(res.Files)
	return res, nil
}

func (a *Aggregator) process(ctx context.Context, c walker.Candidate) outcome {
	out := outcome{path: c.RelPath}
	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	key := cacheKey{path: c.Path, size: c.Size, modTime: c.ModTime.UnixNano()}
	if a.cache != nil {
		if rec, ok := a.cache.Get(key); ok {
			out.rec = rec
			return out
		}
	}

	rec, err := a.AnalyzeFile(c)
	if err != nil {
		out.err = err
		return out
	}

	if a.opts.Complexity {
		rec.Complexity, out.scoreErr = a.score(ctx, c)
	}
	// 不可用的复杂度不缓存，工具安装后下次运行可以得到分数
	if a.cache != nil && (rec.Complexity == nil || !rec.Complexity.Unavailable) {
		a.cache.Add(key, rec)
	}
	out.rec = rec
	return out
}

// AnalyzeFile 读取并统计单个文件，不计算复杂度
func (a *Aggregator) AnalyzeFile(c walker.Candidate) (models.FileRecord, error) {
	content, err := os.ReadFile(c.Path)
	if err != nil {
		return models.FileRecord{}, err
	}

	stats := CountLines(content, c.Language)
	rec := models.FileRecord{
		Path:         c.RelPath,
		Language:     c.Language,
		Lines:        stats.Total,
		CodeLines:    stats.Code,
		CommentLines: stats.Comments,
		BlankLines:   stats.Blanks,
		Size:         int64(len(content)),
	}
	if s, ok := a.registry.Lookup(c.Language); ok {
		st := s.Extract(content)
		rec.FunctionNames = st.Functions
		rec.ClassNames = st.Classes
		rec.Imports = st.Imports
		rec.Extends = st.Extends
		rec.Functions = len(st.Functions)
		rec.Classes = len(st.Classes)
	}
	rec.Summary = Summarize(rec)
	return rec, nil
}

func (a *Aggregator) score(ctx context.Context, c walker.Candidate) (*models.Complexity, error) {
	if a.scorer == nil {
		return models.Unavailable("no complexity scorer configured"), nil
	}
	v, err := a.scorer.Score(ctx, c.Path, c.Language)
	if err != nil {
		return models.Unavailable(err.Error()), err
	}
	return models.Scored(v), nil
}

// prepareConcurrency 用户指定正数时使用该值，否则使用 CPU 核数
func prepareConcurrency(c int) int {
	if c > 0 {
		return c
	}
	return max(runtime.NumCPU(), 1)
}
