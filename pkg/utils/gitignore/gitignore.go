// Package gitignore 在 go-git 的 gitignore 模式之上按目录加载忽略规则
//
// 根目录的 .gitignore 和 .git/info/exclude 在 Load 时读取；
// 子目录中的 .gitignore 由遍历方在进入目录时通过 AddDir 追加，规则只作用于该目录之下
package gitignore

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gogi "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const fileName = ".gitignore"

// Matcher 有序的忽略规则，后加入的规则优先；nil Matcher 不忽略任何路径
type Matcher struct {
	root     string
	patterns []gogi.Pattern
	raw      []string
	m        gogi.Matcher
}

// Load 读取 root 下的 .gitignore 和 .git/info/exclude，文件不存在不是错误
func Load(root string) (*Matcher, error) {
	gm := &Matcher{root: root}
	// 工作树和子模块中 .git 是文件，读取 exclude 失败时忽略
	_ = gm.readFile(filepath.Join(root, ".git", "info", "exclude"), nil)
	if err := gm.readFile(filepath.Join(root, fileName), nil); err != nil {
		return nil, err
	}
	return gm, nil
}

// New 由给定的模式行构造，作用于根目录
func New(lines ...string) *Matcher {
	gm := &Matcher{}
	gm.add(lines, nil)
	return gm
}

// AddDir 追加 rel 目录下 .gitignore 中的规则，rel 为相对 root 的 / 分隔路径
func (gm *Matcher) AddDir(rel string) error {
	if gm == nil || gm.root == "" {
		return nil
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return nil
	}
	return gm.readFile(filepath.Join(gm.root, filepath.FromSlash(rel), fileName), strings.Split(rel, "/"))
}

func (gm *Matcher) readFile(path string, domain []string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	lines, err := readLines(f)
	if err != nil {
		return err
	}
	gm.add(lines, domain)
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (gm *Matcher) add(lines []string, domain []string) {
	prefix := strings.Join(domain, "/")
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gm.patterns = append(gm.patterns, gogi.ParsePattern(line, domain))
		if prefix != "" {
			line = prefix + ": " + line
		}
		gm.raw = append(gm.raw, line)
	}
	gm.m = gogi.NewMatcher(gm.patterns)
}

// Patterns 已加载的规则，子目录规则带 "dir: " 前缀
func (gm *Matcher) Patterns() []string {
	if gm == nil {
		return nil
	}
	return append([]string(nil), gm.raw...)
}

// Match rel 为相对 root 的路径；父目录被忽略时子路径同样被忽略
func (gm *Matcher) Match(rel string, isDir bool) bool {
	if gm == nil || gm.m == nil {
		return false
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return false
	}
	return gm.m.Match(strings.Split(rel, "/"), isDir)
}

// Ignored 按文件判断
func (gm *Matcher) Ignored(rel string) bool {
	return gm.Match(rel, false)
}
