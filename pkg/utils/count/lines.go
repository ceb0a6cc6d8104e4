package count

import (
	"bytes"
	"strings"
)

// LineStats 单文件的行统计
// Total 与按换行切分的行数一致，末尾换行不产生额外的一行
type LineStats struct {
	Total    int
	Code     int
	Comments int
	Blanks   int
}

// CountLines 统计内容的总行数、空白行和注释行（基于语言的简易规则）
func CountLines(content []byte, lang string) LineStats {
	var st LineStats
	style := langToComment[lang]
	inBlock := false

	for len(content) > 0 {
		var line []byte
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			line, content = content, nil
		}
		st.Total++

		text := strings.TrimSpace(string(line))
		if text == "" {
			st.Blanks++
			continue
		}
		if style.isNone() {
			continue
		}

		if inBlock {
			st.Comments++
			if style.blockEnd != "" && strings.Contains(text, style.blockEnd) {
				inBlock = false
			}
			continue
		}

		// 要求去空白后以注释开头，避免误判 URL 等
		if hasSingleLineCommentPrefix(text, style.single) {
			st.Comments++
			continue
		}

		if style.blockStart != "" && strings.HasPrefix(text, style.blockStart) {
			st.Comments++
			rest := text[len(style.blockStart):]
			if style.blockEnd != "" && !strings.Contains(rest, style.blockEnd) {
				inBlock = true
			}
		}
	}
	st.Code = max(st.Total-st.Blanks-st.Comments, 0)
	return st
}

func hasSingleLineCommentPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
