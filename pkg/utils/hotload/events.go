package hotload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// handleEvent 处理单个事件，返回是否发生了真实变化
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	w.logThrottled("event:"+event.Op.String()+":"+event.Name, 3, 10,
		func(n int) { w.logger.Debug().Str("op", event.Op.String()).Str("name", event.Name).Int("count", n).Msg("event") })

	var changed bool
	switch {
	case event.Has(fsnotify.Create):
		changed = w.onCreate(event.Name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changed = w.onRemoveOrRename(event.Name)
	case event.Has(fsnotify.Write):
		changed = w.onWrite(event.Name)
	}
	if changed {
		w.changed[event.Name] = struct{}{}
	}
	return changed
}

// onCreate 新目录自动加入监听，新文件记录状态
func (w *Watcher) onCreate(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if w.cfg.Recursive && !w.ignoreDir(name) {
			if err := w.fw.Add(name); err != nil {
				w.logger.Warn().Err(err).Str("dir", name).Msg("failed to watch new directory")
			} else {
				w.logger.Debug().Str("dir", name).Msg("watching new directory")
			}
		}
		return false
	}
	if w.ignoreFile(name) {
		return false
	}
	w.cache[name] = stateOf(name, info)
	w.logger.Debug().Str("file", name).Msg("file created")
	return true
}

func (w *Watcher) onRemoveOrRename(name string) bool {
	if _, tracked := w.cache[name]; tracked {
		delete(w.cache, name)
		return true
	}
	return false
}

// onWrite 通过内容哈希或大小/修改时间判断是否为真实修改
func (w *Watcher) onWrite(name string) bool {
	if w.ignoreFile(name) {
		return false
	}
	old, tracked := w.cache[name]
	info, err := os.Stat(name)
	if err != nil {
		if tracked {
			delete(w.cache, name)
			return true
		}
		return false
	}
	cur := stateOf(name, info)
	if !tracked {
		w.cache[name] = cur
		return true
	}

	if old.hash != "" && cur.hash != "" {
		if old.hash == cur.hash {
			return false
		}
	} else {
		const timeTolerance = 100 * time.Millisecond
		if cur.size == old.size && cur.modTime.Sub(old.modTime).Abs() <= timeTolerance {
			return false
		}
	}

	w.cache[name] = cur
	// 编辑器保存时常先截断为 0 字节再写入内容，截断这一步不算变化
	if w.editorSave(name, cur.size) && cur.size == 0 {
		w.logger.Debug().Str("file", name).Msg("editor save truncation, waiting for content")
		return false
	}
	return true
}

// editorSave 识别“截断为 0 后一秒内写入内容”的保存模式
func (w *Watcher) editorSave(path string, size int64) bool {
	now := time.Now()
	if size == 0 {
		w.saves[path] = now
		return true
	}
	start, ok := w.saves[path]
	if !ok {
		return false
	}
	delete(w.saves, path)
	return now.Sub(start) <= time.Second
}

// logThrottled 前 first 次都记录，之后每 every 次记录一次
func (w *Watcher) logThrottled(key string, first, every int, emit func(count int)) {
	n := w.eventCounts[key]
	w.eventCounts[key] = n + 1
	if n < first || n%every == 0 {
		emit(n + 1)
	}
}

// rel 相对 root 的 / 分隔路径
func (w *Watcher) rel(path string) string {
	r, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

var commonIgnoreFiles = []string{"*.tmp", "*.swp", "*.log", "~*", ".DS_Store", "Thumbs.db", "*.lock", "*.pid", "*.temp"}

var commonIgnoreDirs = []string{"node_modules", "vendor", ".git", ".idea", ".vscode", "__pycache__", ".cache", ".next"}

// ignoreFile 内置模式、用户模式、.gitignore、过滤器和扩展名依次判断
func (w *Watcher) ignoreFile(path string) bool {
	rel := w.rel(path)
	name := filepath.Base(path)
	if strings.HasPrefix(rel, ".git/") || strings.Contains(rel, "/.git/") {
		return true
	}
	for _, pattern := range append(append([]string(nil), commonIgnoreFiles...), w.cfg.IgnorePatterns...) {
		if matchPattern(pattern, name, rel) {
			w.logIgnored("patterns", rel)
			return true
		}
	}
	if w.gi.Ignored(rel) {
		w.logIgnored(".gitignore", rel)
		return true
	}
	if len(w.cfg.Filter) > 0 {
		matched := false
		for _, f := range w.cfg.Filter {
			if ok, _ := filepath.Match(filepath.ToSlash(f), name); ok {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
	}
	if len(w.extensions) > 0 {
		if _, ok := w.extensions[strings.ToLower(filepath.Ext(name))]; !ok && !isSignificantFile(name) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignoreDir(path string) bool {
	rel := w.rel(path)
	name := filepath.Base(path)
	for _, d := range commonIgnoreDirs {
		if name == d {
			return true
		}
	}
	for _, pattern := range w.cfg.IgnorePatterns {
		if matchPattern(pattern, name, rel) || matchPattern(strings.TrimSuffix(pattern, "/*"), name, rel) {
			return true
		}
	}
	return w.gi.Match(rel, true)
}

func (w *Watcher) logIgnored(reason, rel string) {
	w.logThrottled(fmt.Sprintf("ignore:%s:%s", reason, rel), 1, 20,
		func(n int) { w.logger.Trace().Str("file", rel).Str("reason", reason).Int("count", n).Msg("ignored") })
}

// matchPattern 不含 / 的模式匹配文件名，含 / 的模式匹配相对路径，以 /* 结尾时按前缀匹配
func matchPattern(pattern, name, rel string) bool {
	p := filepath.ToSlash(strings.TrimPrefix(pattern, "./"))
	if p == "" {
		return false
	}
	if !strings.Contains(p, "/") {
		ok, _ := filepath.Match(p, name)
		return ok
	}
	if ok, _ := filepath.Match(p, rel); ok {
		return true
	}
	if prefix, found := strings.CutSuffix(p, "*"); found && strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(rel, prefix)
	}
	return false
}
