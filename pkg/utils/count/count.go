// Package count 统计源文件的行数、函数和类，并按语言分派结构提取策略
package count

import (
	"sort"
	"sync"

	"github.com/yeisme/smartrepo/pkg/models"
)

// Structure 单个文件中提取到的结构信息
type Structure struct {
	Functions []string
	Classes   []string
	Imports   []string
	Extends   []models.ClassRelation
}

// Strategy 某种语言的结构提取策略
// Extract 不返回错误：无法解析的内容返回尽可能多的结果或零值
type Strategy interface {
	Language() string
	Extract(content []byte) Structure
}

// Registry 语言到提取策略的注册表，可并发读取
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry 创建注册表并注册给定策略
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// DefaultRegistry 内置全部语言的注册表
func DefaultRegistry() *Registry {
	r := NewRegistry(
		pythonStrategy{},
		goStrategy{},
	)
	for _, lang := range []string{"JavaScript", "TypeScript", "React", "React TypeScript"} {
		r.Register(jsStrategy{lang: lang})
	}
	for _, s := range regexStrategies() {
		r.Register(s)
	}
	return r
}

// Register 注册策略，同一语言后注册的覆盖先注册的
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Language()] = s
}

// Lookup 查找语言对应的策略
func (r *Registry) Lookup(lang string) (Strategy, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[lang]
	return s, ok
}

// Languages 已注册的语言，按名称排序
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.strategies))
	for l := range r.strategies {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

type commentStyle struct {
	single     []string
	blockStart string
	blockEnd   string
}

func (c commentStyle) isNone() bool {
	return len(c.single) == 0 && c.blockStart == "" && c.blockEnd == ""
}

var cCommentStyle = commentStyle{single: []string{"//"}, blockStart: "/*", blockEnd: "*/"}

// langToComment 语言到注释风格的映射
var langToComment = map[string]commentStyle{
	"Go":               cCommentStyle,
	"Java":             cCommentStyle,
	"JavaScript":       cCommentStyle,
	"TypeScript":       cCommentStyle,
	"React":            cCommentStyle,
	"React TypeScript": cCommentStyle,
	"Rust":             cCommentStyle,
	"Swift":            cCommentStyle,
	"Kotlin":           cCommentStyle,
	"Dart":             cCommentStyle,
	"C":                cCommentStyle,
	"C++":              cCommentStyle,
	"PHP":              {single: []string{"//", "#"}, blockStart: "/*", blockEnd: "*/"},
	"Python":           {single: []string{"#"}},
	"Ruby":             {single: []string{"#"}, blockStart: "=begin", blockEnd: "=end"},
}
