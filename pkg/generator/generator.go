// Package generator 将 AnalysisSummary 渲染为分析目录下的各类文档
package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/fsop"
)

// ErrOutputWrite 输出文件写入失败，对整次运行是致命错误
var ErrOutputWrite = errors.New("output write failed")

// 四个核心文档
const (
	ReadmeFile       = "readme-enhanced.md"
	ArchitectureFile = "architecture.mmd"
	SummaryFile      = "ai-summary.json"
	PromptFile       = "prompt-ready.md"
)

// CoreFiles 每次分析都会生成的文档
var CoreFiles = []string{ReadmeFile, ArchitectureFile, SummaryFile, PromptFile}

// Generator 文档生成器，每个生成器只负责自己的文件，彼此独立
type Generator interface {
	Name() string
	Generate(ctx context.Context, s *models.AnalysisSummary, out *Output) error
}

// Output 分析输出目录，记录已写入的文件
type Output struct {
	Dir string

	mu      sync.Mutex
	written []string
}

// NewOutput 创建输出目录句柄，不会创建目录
func NewOutput(dir string) *Output {
	return &Output{Dir: dir}
}

// Path 输出目录下文件的完整路径
func (o *Output) Path(name string) string {
	return filepath.Join(o.Dir, filepath.FromSlash(name))
}

// Write 写入文件，失败时包装为 ErrOutputWrite
func (o *Output) Write(name string, data []byte) error {
	if err := fsop.WriteFile(o.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, name, err)
	}
	o.Record(name)
	return nil
}

// Record 记录由外部程序（例如 mmdc）写入的文件
func (o *Output) Record(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.written = append(o.written, name)
}

// Written 已写入的文件名，按名称排序
func (o *Output) Written() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := append([]string(nil), o.written...)
	sort.Strings(out)
	return out
}

// Result 单个生成器的执行结果
type Result struct {
	Generator string
	Err       error
}

// Fatal 该结果是否为输出写入失败
func (r Result) Fatal() bool { return errors.Is(r.Err, ErrOutputWrite) }

// RunAll 依次执行所有生成器，单个失败不影响其他生成器
// 全部执行完后，若存在写入失败则返回合并后的致命错误
func RunAll(ctx context.Context, s *models.AnalysisSummary, out *Output, logger *zerolog.Logger, gens ...Generator) ([]Result, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	results := make([]Result, 0, len(gens))
	var fatal []error
	for _, g := range gens {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		err := runOne(ctx, g, s, out)
		res := Result{Generator: g.Name(), Err: err}
		results = append(results, res)
		switch {
		case err == nil:
			logger.Debug().Str("generator", g.Name()).Msg("document generated")
		case res.Fatal():
			logger.Error().Err(err).Str("generator", g.Name()).Msg("cannot write output")
			fatal = append(fatal, err)
		default:
			logger.Warn().Err(err).Str("generator", g.Name()).Msg("generator failed, skipped")
		}
	}
	return results, errors.Join(fatal...)
}

// runOne 执行单个生成器，panic 转为普通错误
func runOne(ctx context.Context, g Generator, s *models.AnalysisSummary, out *Output) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator %s panicked: %v", g.Name(), r)
		}
	}()
	return g.Generate(ctx, s, out)
}
