package count

import (
	"regexp"
	"sort"

	"github.com/yeisme/smartrepo/pkg/models"
)

// regexStrategy 基于正则的通用提取
// classes 的第二个捕获组（若有）为父类
type regexStrategy struct {
	lang      string
	syntax    lexical
	functions []*regexp.Regexp
	classes   []*regexp.Regexp
	imports   []*regexp.Regexp
}

func (r regexStrategy) Language() string { return r.lang }

// Extract 注释和字符串中的内容不计入；每个定义都计数，同名定义不合并
func (r regexStrategy) Extract(content []byte) Structure {
	code, bare := r.syntax.strip(content)

	var st Structure
	for _, m := range matchAll(bare, r.functions, func(name string) bool { return !controlKeywords[name] }) {
		st.Functions = append(st.Functions, m.name)
	}
	for _, m := range matchAll(bare, r.classes, nil) {
		st.Classes = append(st.Classes, m.name)
		if m.base != "" {
			st.Extends = append(st.Extends, models.ClassRelation{Class: m.name, Base: m.base})
		}
	}
	var imports []string
	for _, m := range matchAll(code, r.imports, nil) {
		imports = append(imports, m.name)
	}
	st.Imports = uniqueSorted(imports)
	return st
}

type match struct {
	start, end int
	name, base string
}

// matchAll 按出现位置返回所有模式的匹配；与更早的匹配重叠的结果被丢弃，
// 例如 const f = function g() 只算一个函数
func matchAll(src []byte, patterns []*regexp.Regexp, keep func(string) bool) []match {
	var all []match
	for _, re := range patterns {
		for _, loc := range re.FindAllSubmatchIndex(src, -1) {
			if loc[2] < 0 {
				continue
			}
			m := match{start: loc[0], end: loc[1], name: string(src[loc[2]:loc[3]])}
			if m.name == "" || (keep != nil && !keep(m.name)) {
				continue
			}
			if len(loc) > 5 && loc[4] >= 0 {
				m.base = string(src[loc[4]:loc[5]])
			}
			all = append(all, m)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].start < all[j].start })

	out := all[:0]
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue
		}
		out = append(out, m)
		lastEnd = m.end
	}
	return out
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// controlKeywords 形如函数调用的关键字
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "else": true, "sizeof": true, "new": true, "do": true,
	"foreach": true, "elseif": true, "when": true, "guard": true,
}

func re(s string) *regexp.Regexp { return regexp.MustCompile(s) }

func regexStrategies() []regexStrategy {
	cFunc := re(`(?m)^[\w \t\*&:<>,]*?\b(\w+)[ \t]*\([^;{)]*\)[ \t]*(?:const[ \t]*)?\{`)
	cInclude := re(`(?m)^[ \t]*#[ \t]*include[ \t]*[<"]([^>"]+)[>"]`)
	return []regexStrategy{
		{
			lang:      "Rust",
			syntax:    rustStyle,
			functions: []*regexp.Regexp{re(`\bfn\s+(\w+)`)},
			classes:   []*regexp.Regexp{re(`\b(?:struct|enum|trait)\s+(\w+)`)},
			imports:   []*regexp.Regexp{re(`(?m)^\s*(?:pub\s+)?use\s+([\w:]+)`)},
		},
		{
			lang:   "Java",
			syntax: cStyle,
			functions: []*regexp.Regexp{
				re(`(?m)^[ \t]*(?:(?:public|private|protected|static|final|abstract|synchronized|native|default)\s+)*[\w<>\[\],.? ]+\s+(\w+)\s*\([^;{)]*\)\s*(?:throws\s+[\w.,\s]+)?\{`),
			},
			classes: []*regexp.Regexp{re(`\b(?:class|interface|enum|record)\s+(\w+)(?:<[^>]*>)?(?:\s+extends\s+([\w.]+))?`)},
			imports: []*regexp.Regexp{re(`(?m)^\s*import\s+(?:static\s+)?([\w.]+)`)},
		},
		{
			lang:      "Kotlin",
			syntax:    cStyle,
			functions: []*regexp.Regexp{re(`\bfun\s+(?:<[^>]*>\s*)?(?:[\w.]+\.)?(\w+)\s*\(`)},
			classes:   []*regexp.Regexp{re(`\b(?:class|interface|object)\s+(\w+)(?:\([^)]*\))?(?:\s*:\s*(\w+))?`)},
			imports:   []*regexp.Regexp{re(`(?m)^\s*import\s+([\w.]+)`)},
		},
		{
			lang:      "Swift",
			syntax:    cStyle,
			functions: []*regexp.Regexp{re(`\bfunc\s+(\w+)`)},
			classes:   []*regexp.Regexp{re(`\b(?:class|struct|protocol|enum)\s+(\w+)(?:\s*:\s*(\w+))?`)},
			imports:   []*regexp.Regexp{re(`(?m)^\s*import\s+(\w+)`)},
		},
		{
			lang:      "Dart",
			syntax:    cStyle,
			functions: []*regexp.Regexp{re(`(?m)^[ \t]*(?:[\w<>?,]+[ \t]+)*?(\w+)[ \t]*\([^;{)]*\)[ \t]*(?:async[ \t]*)?(?:\{|=>)`)},
			classes:   []*regexp.Regexp{re(`\b(?:class|mixin)\s+(\w+)(?:<[^>]*>)?(?:\s+extends\s+(\w+))?`)},
			imports:   []*regexp.Regexp{re(`(?m)^\s*import\s+['"]([^'"]+)['"]`)},
		},
		{
			lang:      "PHP",
			syntax:    phpStyle,
			functions: []*regexp.Regexp{re(`\bfunction\s+(\w+)`)},
			classes:   []*regexp.Regexp{re(`\b(?:class|interface|trait)\s+(\w+)(?:\s+extends\s+([\w\\]+))?`)},
			imports:   []*regexp.Regexp{re(`(?m)^\s*use\s+([\w\\]+)`), re(`(?:require|include)(?:_once)?\s*\(?\s*['"]([^'"]+)['"]`)},
		},
		{
			lang:      "Ruby",
			syntax:    rubyStyle,
			functions: []*regexp.Regexp{re(`(?m)^\s*def\s+(?:self\.)?(\w+[?!=]?)`)},
			classes:   []*regexp.Regexp{re(`(?m)^\s*(?:class|module)\s+([\w:]+)(?:\s*<\s*([\w:]+))?`)},
			imports:   []*regexp.Regexp{re(`(?m)^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`)},
		},
		{
			lang:      "C",
			syntax:    cStyle,
			functions: []*regexp.Regexp{cFunc},
			classes:   []*regexp.Regexp{re(`\bstruct\s+(\w+)\s*\{`)},
			imports:   []*regexp.Regexp{cInclude},
		},
		{
			lang:      "C++",
			syntax:    cStyle,
			functions: []*regexp.Regexp{cFunc},
			classes: []*regexp.Regexp{
				re(`\bclass\s+(\w+)(?:\s*:\s*(?:public|private|protected)?\s*(?:virtual\s+)?([\w:]+))?`),
				re(`\bstruct\s+(\w+)(?:\s*:\s*(?:public|private|protected)?\s*([\w:]+))?\s*\{`),
			},
			imports: []*regexp.Regexp{cInclude},
		},
	}
}
