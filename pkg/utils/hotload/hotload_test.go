package hotload

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/utils/log"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func testConfig() configs.HotloadConfig {
	return configs.HotloadConfig{
		Recursive:      true,
		Debounce:       50,
		IgnorePatterns: []string{"smartrepo-analysis/*"},
		GitIgnore:      true,
	}
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern, name, rel string
		want               bool
	}{
		{"*.tmp", "a.tmp", "x/a.tmp", true},
		{"*.tmp", "a.go", "x/a.go", false},
		{"smartrepo-analysis/*", "readme.md", "smartrepo-analysis/readme.md", true},
		{"smartrepo-analysis/*", "readme.md", "src/readme.md", false},
		{"./build/*", "out.js", "build/out.js", true},
		{"", "a", "a", false},
	}
	for _, c := range cases {
		if got := matchPattern(c.pattern, c.name, c.rel); got != c.want {
			t.Errorf("matchPattern(%q, %q, %q) = %v, want %v", c.pattern, c.name, c.rel, got, c.want)
		}
	}
}

func TestNew_InitialStateRespectsIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print(1)\n")
	writeFile(t, root, "pkg/util.py", "x = 1\n")
	writeFile(t, root, "notes.txt", "hi\n")
	writeFile(t, root, "smartrepo-analysis/readme-enhanced.md", "# r\n")
	writeFile(t, root, "node_modules/lib/index.js", "")
	writeFile(t, root, "secret/key.py", "")
	writeFile(t, root, ".gitignore", "secret/\n")

	w, err := New(Options{Root: root, Config: testConfig(), Extensions: map[string]string{".py": "Python"}, Logger: log.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.fw.Close() }()

	var got []string
	for p := range w.cache {
		got = append(got, w.rel(p))
	}
	want := map[string]bool{"main.py": true, "pkg/util.py": true}
	if len(got) != len(want) {
		t.Fatalf("cached files = %v, want %v", got, want)
	}
	for _, g := range got {
		if !want[g] {
			t.Errorf("unexpected cached file %s", g)
		}
	}
}

func TestOnWrite_ContentHash(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.py", "x = 1\n")
	w, err := New(Options{Root: root, Config: testConfig(), Logger: log.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.fw.Close() }()

	// 内容不变只更新时间不算变化
	now := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if w.onWrite(path) {
		t.Error("touch without content change must not count")
	}

	writeFile(t, root, "a.py", "x = 2\n")
	if !w.onWrite(path) {
		t.Error("content change must count")
	}

	// 截断为 0 不算变化，随后写入内容算变化
	writeFile(t, root, "a.py", "")
	if w.onWrite(path) {
		t.Error("truncation step of an editor save must not count")
	}
	writeFile(t, root, "a.py", "x = 3\n")
	if !w.onWrite(path) {
		t.Error("content after truncation must count")
	}
}

func TestWatch_FiresHookAfterDebounce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := New(Options{Root: root, Config: testConfig(), Logger: log.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fired := make(chan []string, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(changed []string) { fired <- changed }) }()

	// 输出目录中的变化不会触发
	writeFile(t, root, "smartrepo-analysis/ai-summary.json", "{}")
	writeFile(t, root, "app.py", "x = 2\n")
	writeFile(t, root, "app.py", "x = 3\n")

	select {
	case changed := <-fired:
		want := []string{filepath.Join(w.root, "app.py")}
		if !reflect.DeepEqual(changed, want) {
			t.Errorf("changed = %v, want %v", changed, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("hook was not called")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
