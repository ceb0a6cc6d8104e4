// Package hotload watches a project directory and re-runs a hook after debounced changes.
package hotload

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/utils/fsop"
	"github.com/yeisme/smartrepo/pkg/utils/gitignore"
	"github.com/yeisme/smartrepo/pkg/utils/log"
)

const defaultDebounce = 300 * time.Millisecond

// Func 防抖结束后调用，changed 为发生变化的文件（已排序）
type Func func(changed []string)

// Options watcher 配置
type Options struct {
	Root   string
	Config configs.HotloadConfig
	// Extensions 非空时只关注这些扩展名（小写，带点）
	Extensions map[string]string
	Logger     log.Logger
}

// fileState stores the essential metadata and content hash of a file to detect real changes.
type fileState struct {
	modTime time.Time
	size    int64
	hash    string
}

// stateCache is a map from file path to its last known state.
type stateCache map[string]fileState

// Watcher 监听目录变化；所有状态只在 Run 所在的 goroutine 中访问
type Watcher struct {
	root       string
	cfg        configs.HotloadConfig
	extensions map[string]string
	logger     *zerolog.Logger
	gi         *gitignore.Matcher
	fw         *fsnotify.Watcher

	cache       stateCache
	changed     map[string]struct{}
	saves       map[string]time.Time
	eventCounts map[string]int
	debounce    *debouncer
}

// New 创建 watcher，建立初始文件状态并注册目录
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	d := time.Duration(opts.Config.Debounce) * time.Millisecond
	if d <= 0 {
		d = defaultDebounce
	}

	w := &Watcher{
		root:        root,
		cfg:         opts.Config,
		extensions:  opts.Extensions,
		logger:      logger,
		changed:     map[string]struct{}{},
		saves:       map[string]time.Time{},
		eventCounts: map[string]int{},
		debounce:    newDebouncer(d),
	}
	w.gi = w.loadGitIgnore()

	if w.cache, err = w.scan(); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w.fw = fw
	if err := w.addDirectories(); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Watch 创建 watcher 并阻塞运行，直到 ctx 结束
func Watch(ctx context.Context, opts Options, hook Func) error {
	w, err := New(opts)
	if err != nil {
		return err
	}
	return w.Run(ctx, hook)
}

// Run 处理文件事件，变化稳定 debounce 时长后调用 hook；ctx 结束时返回 nil
func (w *Watcher) Run(ctx context.Context, hook Func) error {
	defer func() {
		w.debounce.stop()
		if err := w.fw.Close(); err != nil {
			w.logger.Error().Err(err).Msg("close watcher failed")
		}
	}()
	w.logger.Info().Str("root", w.root).Int("files", len(w.cache)).
		Dur("debounce", w.debounce.d).Msg("watching for changes, press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				w.debounce.arm()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		case <-w.debounce.C():
			w.fire(hook)
		}
	}
}

// fire 防抖结束：刷新状态缓存并调用 hook
func (w *Watcher) fire(hook Func) {
	w.debounce.reset()
	if len(w.changed) == 0 {
		return
	}
	changed := make([]string, 0, len(w.changed))
	for p := range w.changed {
		changed = append(changed, p)
	}
	sort.Strings(changed)
	clear(w.changed)

	for key, n := range w.eventCounts {
		if n > 100 {
			w.eventCounts[key] = 0
		}
	}
	if cache, err := w.scan(); err != nil {
		w.logger.Error().Err(err).Msg("rescan after change failed")
	} else {
		w.cache = cache
	}
	w.logger.Info().Int("changed", len(changed)).Msg("change detected, re-running")
	hook(changed)
}

// scan walks the root and records the state of every watched file.
func (w *Watcher) scan() (stateCache, error) {
	cache := make(stateCache)
	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != w.root && (!w.cfg.Recursive || w.ignoreDir(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignoreFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		cache[path] = stateOf(path, info)
		return nil
	}
	if err := filepath.WalkDir(w.root, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to build initial state cache for %s: %w", w.root, err)
	}
	return cache, nil
}

func (w *Watcher) loadGitIgnore() *gitignore.Matcher {
	if !w.cfg.GitIgnore {
		return nil
	}
	gi, err := gitignore.Load(w.root)
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to load .gitignore")
		return nil
	}
	return gi
}

func (w *Watcher) addDirectories() error {
	paths := []string{w.root}
	if w.cfg.Recursive {
		subdirs, err := fsop.ListAllSubdirectories(w.root, nil)
		if err != nil {
			return fmt.Errorf("failed to list subdirectories: %w", err)
		}
		for _, rel := range subdirs {
			dir := filepath.Join(w.root, filepath.FromSlash(rel))
			if !w.ignoreDir(dir) {
				paths = append(paths, dir)
			}
		}
	}
	w.logger.Debug().Int("dirs", len(paths)).Msg("adding directories to watcher")
	for _, p := range paths {
		if err := w.fw.Add(p); err != nil {
			w.logger.Warn().Err(err).Str("path", p).Msg("failed to watch directory, skipping")
		}
	}
	return nil
}

func stateOf(path string, info fs.FileInfo) fileState {
	st := fileState{modTime: info.ModTime(), size: info.Size()}
	if isSignificantFile(path) {
		st.hash = fileHash(path, info.Size())
	}
	return st
}

// fileHash 计算小文件（< 1MB）的 MD5，大文件只用大小
func fileHash(filePath string, size int64) string {
	const maxHashSize = 1024 * 1024
	if size > maxHashSize {
		return fmt.Sprintf("large:%d", size)
	}
	file, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer func() { _ = file.Close() }()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return ""
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

var significantFiles = []string{
	"package.json", "requirements.txt", "pipfile", "pyproject.toml", "pubspec.yaml",
	"cargo.toml", "go.mod", "pom.xml", "build.gradle", "composer.json",
}

// isSignificantFile 源码和清单文件使用内容哈希判断变化
func isSignificantFile(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".go", ".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".c", ".cpp", ".h", ".hpp",
		".rs", ".php", ".rb", ".swift", ".kt", ".dart", ".json", ".toml", ".yaml", ".yml":
		return true
	}
	return slices.Contains(significantFiles, strings.ToLower(filepath.Base(filePath)))
}
