// Package walker 提供惰性的目录遍历，按扩展名白名单和忽略规则产出候选源文件
package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-enry/go-enry/v2"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/utils/gitignore"
)

// 跳过原因
var (
	ErrTooLarge  = errors.New("file exceeds size limit")
	ErrVendored  = errors.New("vendored file")
	ErrGenerated = errors.New("generated file")
	ErrBinary    = errors.New("binary content")
	ErrSymlink   = errors.New("symlink not followed")
)

// errStop 消费方提前停止迭代
var errStop = errors.New("walk stopped")

// headSize 生成文件与二进制判断时读取的文件头大小
const headSize = 8 * 1024

// Candidate 通过过滤的源文件
type Candidate struct {
	Path     string // 绝对路径
	RelPath  string // 相对根目录，使用 / 分隔
	Language string
	Size     int64
	ModTime  time.Time
}

// SkipFunc 在某个条目被跳过时回调，reason 为读取错误或跳过原因
type SkipFunc func(path string, reason error)

// Config 遍历配置，New 时复制，之后不可变
type Config struct {
	Extensions       map[string]string // 小写扩展名（含点）到语言
	IgnorePatterns   []string          // 相对路径子串
	SkipHidden       bool
	RespectGitignore bool
	SkipVendor       bool
	SkipGenerated    bool
	MaxFileSizeBytes int64
	FollowSymlinks   bool
	OnSkip           SkipFunc
}

// FromAnalyzeConfig 由应用配置构造遍历配置
func FromAnalyzeConfig(c configs.AnalyzeConfig) Config {
	patterns := append([]string(nil), c.IgnorePatterns...)
	if c.OutputDir != "" {
		patterns = append(patterns, c.OutputDir)
	}
	return Config{
		Extensions:       c.ExtensionMap(),
		IgnorePatterns:   patterns,
		SkipHidden:       c.SkipHidden,
		RespectGitignore: c.RespectGitignore,
		SkipVendor:       c.SkipVendor,
		SkipGenerated:    c.SkipGenerated,
		MaxFileSizeBytes: c.MaxFileSize,
	}
}

// Walker 目录遍历器
type Walker struct {
	cfg Config
	err error
}

// New 创建遍历器
func New(cfg Config) *Walker {
	cp := cfg
	cp.Extensions = make(map[string]string, len(cfg.Extensions))
	for ext, lang := range cfg.Extensions {
		cp.Extensions[strings.ToLower(ext)] = lang
	}
	cp.IgnorePatterns = nil
	for _, p := range cfg.IgnorePatterns {
		if p = strings.TrimSpace(filepath.ToSlash(p)); p != "" {
			cp.IgnorePatterns = append(cp.IgnorePatterns, p)
		}
	}
	if cp.OnSkip == nil {
		cp.OnSkip = func(string, error) {}
	}
	return &Walker{cfg: cp}
}

// Extensions 返回扩展名映射的副本
func (w *Walker) Extensions() map[string]string {
	return maps.Clone(w.cfg.Extensions)
}

// Err 返回最近一次遍历的致命错误（根目录不可读或 context 取消）
func (w *Walker) Err() error { return w.err }

// Walk 返回惰性候选序列；每次迭代都会重新遍历
// 不可读的条目交给 OnSkip 后继续，只有根目录不可读是致命错误
func (w *Walker) Walk(ctx context.Context, root string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		w.err = nil
		info, err := os.Stat(root)
		if err != nil {
			w.err = fmt.Errorf("read root %s: %w", root, err)
			return
		}
		if !info.IsDir() {
			w.err = fmt.Errorf("root %s is not a directory", root)
			return
		}

		gi := w.loadGitIgnore(root)

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == root {
					return walkErr
				}
				w.cfg.OnSkip(path, walkErr)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if path == root {
				return nil
			}

			rel := toRelSlash(root, path)
			if d.IsDir() {
				if w.skipDir(rel, d.Name(), gi) {
					return filepath.SkipDir
				}
				if err := gi.AddDir(rel); err != nil {
					w.cfg.OnSkip(filepath.Join(path, ".gitignore"), err)
				}
				return nil
			}

			c, ok := w.candidate(path, rel, d, gi)
			if !ok {
				return nil
			}
			if !yield(c) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.err = err
			} else {
				w.err = fmt.Errorf("read root %s: %w", root, err)
			}
		}
	}
}

// Match 判断单个相对路径是否会被遍历产出，返回其语言
func (w *Walker) Match(rel string) (string, bool) {
	rel = filepath.ToSlash(rel)
	lang, ok := w.cfg.Extensions[strings.ToLower(filepath.Ext(rel))]
	if !ok || w.ignored(rel) {
		return "", false
	}
	if w.cfg.SkipHidden {
		for _, seg := range strings.Split(rel, "/") {
			if isHidden(seg) {
				return "", false
			}
		}
	}
	return lang, true
}

func (w *Walker) loadGitIgnore(root string) *gitignore.Matcher {
	if !w.cfg.RespectGitignore {
		return nil
	}
	gi, err := gitignore.Load(root)
	if err != nil {
		w.cfg.OnSkip(filepath.Join(root, ".gitignore"), err)
		return nil
	}
	return gi
}

func (w *Walker) skipDir(rel, name string, gi *gitignore.Matcher) bool {
	if w.cfg.SkipHidden && isHidden(name) {
		return true
	}
	if w.ignored(rel) || w.ignored(rel+"/") {
		return true
	}
	if gi.Match(rel, true) {
		return true
	}
	return w.cfg.SkipVendor && enry.IsVendor(rel+"/")
}

func (w *Walker) candidate(path, rel string, d fs.DirEntry, gi *gitignore.Matcher) (Candidate, bool) {
	lang, ok := w.cfg.Extensions[strings.ToLower(filepath.Ext(d.Name()))]
	if !ok {
		return Candidate{}, false
	}
	if w.cfg.SkipHidden && isHidden(d.Name()) {
		return Candidate{}, false
	}
	if w.ignored(rel) || gi.Match(rel, false) {
		return Candidate{}, false
	}
	if w.cfg.SkipVendor && enry.IsVendor(rel) {
		w.cfg.OnSkip(path, ErrVendored)
		return Candidate{}, false
	}

	var info fs.FileInfo
	var err error
	if d.Type()&fs.ModeSymlink != 0 {
		if !w.cfg.FollowSymlinks {
			w.cfg.OnSkip(path, ErrSymlink)
			return Candidate{}, false
		}
		info, err = os.Stat(path)
		if err == nil && info.IsDir() {
			return Candidate{}, false
		}
	} else {
		info, err = d.Info()
	}
	if err != nil {
		w.cfg.OnSkip(path, err)
		return Candidate{}, false
	}
	if w.cfg.MaxFileSizeBytes > 0 && info.Size() > w.cfg.MaxFileSizeBytes {
		w.cfg.OnSkip(path, ErrTooLarge)
		return Candidate{}, false
	}

	if w.cfg.SkipGenerated {
		head, err := readHead(path)
		if err != nil {
			w.cfg.OnSkip(path, err)
			return Candidate{}, false
		}
		if enry.IsBinary(head) {
			w.cfg.OnSkip(path, ErrBinary)
			return Candidate{}, false
		}
		if enry.IsGenerated(rel, head) {
			w.cfg.OnSkip(path, ErrGenerated)
			return Candidate{}, false
		}
	}

	return Candidate{
		Path:     path,
		RelPath:  rel,
		Language: lang,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, true
}

// ignored 忽略规则按子串匹配相对路径
func (w *Walker) ignored(rel string) bool {
	for _, p := range w.cfg.IgnorePatterns {
		if strings.Contains(rel, p) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	buf := make([]byte, headSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// toRelSlash 将绝对路径转换为相对 root 且使用 / 的路径
func toRelSlash(root, path string) string {
	rel, _ := filepath.Rel(root, path)
	return filepath.ToSlash(rel)
}
