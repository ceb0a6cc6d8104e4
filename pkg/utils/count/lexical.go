package count

import (
	"bytes"
	"strings"
)

// lexical 描述一种语言的注释和字符串字面量写法
type lexical struct {
	lineComments []string // 例如 "//"、"#"
	blockComment bool     // /* ... */
	quotes       string   // 单行字符串的引号，遇到换行即结束
	multiline    string   // 可跨行的引号，例如 JS 模板字符串和 Go 原始字符串
}

var (
	cStyle    = lexical{lineComments: []string{"//"}, blockComment: true, quotes: `"'`}
	jsStyle   = lexical{lineComments: []string{"//"}, blockComment: true, quotes: `"'`, multiline: "`"}
	goStyle   = lexical{lineComments: []string{"//"}, blockComment: true, quotes: `"'`, multiline: "`"}
	rustStyle = lexical{lineComments: []string{"//"}, blockComment: true, quotes: `"`} // ' 用于生命周期
	phpStyle  = lexical{lineComments: []string{"//", "#"}, blockComment: true, quotes: `"'`}
	rubyStyle = lexical{lineComments: []string{"#"}, quotes: `"'`}
)

// strip 返回两份与原文等长、换行位置不变的副本：
// code 清除了注释，bare 进一步清除了字符串字面量
func (l lexical) strip(src []byte) (code, bare []byte) {
	code = bytes.Clone(src)
	bare = bytes.Clone(src)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case l.blockComment && bytes.HasPrefix(src[i:], []byte("/*")):
			j := len(src)
			if end := bytes.Index(src[i+2:], []byte("*/")); end >= 0 {
				j = i + 2 + end + 2
			}
			blankRange(code, i, j)
			blankRange(bare, i, j)
			i = j
		case l.isLineComment(src, i):
			j := len(src)
			if nl := bytes.IndexByte(src[i:], '\n'); nl >= 0 {
				j = i + nl
			}
			blankRange(code, i, j)
			blankRange(bare, i, j)
			i = j
		case strings.IndexByte(l.quotes, c) >= 0 || strings.IndexByte(l.multiline, c) >= 0:
			j := endOfString(src, i, strings.IndexByte(l.multiline, c) >= 0)
			blankRange(bare, i, j)
			i = j
		default:
			i++
		}
	}
	return code, bare
}

func (l lexical) isLineComment(src []byte, i int) bool {
	for _, p := range l.lineComments {
		if !bytes.HasPrefix(src[i:], []byte(p)) {
			continue
		}
		// PHP 8 属性 #[...]
		if p == "#" && i+1 < len(src) && src[i+1] == '[' {
			continue
		}
		return true
	}
	return false
}

// endOfString 返回从 src[start] 处引号开始的字面量结束位置（不含）
func endOfString(src []byte, start int, multiline bool) int {
	q := src[start]
	for j := start + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n':
			if !multiline {
				return j
			}
		}
	}
	return len(src)
}

func blankRange(b []byte, from, to int) {
	to = min(to, len(b))
	for k := from; k < to; k++ {
		if b[k] != '\n' {
			b[k] = ' '
		}
	}
}
