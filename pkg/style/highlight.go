package style

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// palette 高亮使用的样式
type palette struct {
	key, str, num, boolean, null, punct lipgloss.Style
}

func newPalette() palette {
	return palette{
		key:     lipgloss.NewStyle().Foreground(ColorKey).Bold(true),
		str:     lipgloss.NewStyle().Foreground(ColorString),
		num:     lipgloss.NewStyle().Foreground(ColorNumber),
		boolean: lipgloss.NewStyle().Foreground(ColorBool),
		null:    lipgloss.NewStyle().Foreground(ColorNull),
		punct:   lipgloss.NewStyle().Foreground(ColorPunct),
	}
}

// PrintJSON 缩进并高亮输出 JSON
//
// string 与 []byte 视为原始 JSON 文本，其他值先用 [json.MarshalIndent] 编码
func PrintJSON(w io.Writer, v any) error {
	pretty, err := FormatJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, highlightJSON(pretty, newPalette()))
	return err
}

// FormatJSON 返回缩进后的 JSON 文本，末尾带换行
func FormatJSON(v any) (string, error) {
	var src []byte
	switch x := v.(type) {
	case nil:
		return "null\n", nil
	case string:
		src = []byte(x)
	case []byte:
		src = x
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	}
	src = bytes.TrimSpace(src)
	if len(src) == 0 {
		return "null\n", nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, src, "", "  "); err != nil {
		return "", err
	}
	out.WriteByte('\n')
	return out.String(), nil
}

// PrintYAML 编码并高亮输出 YAML
func PrintYAML(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, highlightYAML(buf.String(), newPalette()))
	return err
}

// highlightJSON 只给 token 着色，空白和缩进原样保留
func highlightJSON(s string, p palette) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		ch := s[i]
		switch {
		case ch == '"':
			end := quotedEnd(s, i)
			token := s[i:end]
			if nextNonSpace(s, end) == ':' {
				b.WriteString(p.key.Render(token))
			} else {
				b.WriteString(p.str.Render(token))
			}
			i = end
		case strings.IndexByte("{}[]:,", ch) >= 0:
			b.WriteString(p.punct.Render(string(ch)))
			i++
		default:
			i += scalar(s, i, &b, p)
		}
	}
	return b.String()
}

// highlightYAML 按行处理：列表符号、键名和冒号后的标量
func highlightYAML(s string, p palette) string {
	lines := strings.Split(s, "\n")
	var b strings.Builder
	for li, line := range lines {
		body := strings.TrimLeft(line, " ")
		b.WriteString(line[:len(line)-len(body)])
		if rest, ok := strings.CutPrefix(body, "- "); ok || body == "-" {
			b.WriteString(p.punct.Render("-"))
			if ok {
				b.WriteByte(' ')
			}
			body = rest
		}
		if idx := keyColon(body); idx > 0 {
			b.WriteString(p.key.Render(body[:idx]))
			b.WriteString(p.punct.Render(":"))
			body = body[idx+1:]
		}
		for i := 0; i < len(body); {
			if body[i] == '"' || body[i] == '\'' {
				end := quotedEnd(body, i)
				b.WriteString(p.str.Render(body[i:end]))
				i = end
				continue
			}
			i += scalar(body, i, &b, p)
		}
		if li < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// scalar 输出位置 i 的数字、布尔、null 或单个字符，返回消耗的字节数
func scalar(s string, i int, b *strings.Builder, p palette) int {
	ch := s[i]
	if ch == '-' || (ch >= '0' && ch <= '9') {
		if j := numberEnd(s, i); j > i+1 || (ch >= '0' && ch <= '9') {
			b.WriteString(p.num.Render(s[i:j]))
			return j - i
		}
	}
	for _, word := range []string{"true", "false"} {
		if wordAt(s, i, word) {
			b.WriteString(p.boolean.Render(word))
			return len(word)
		}
	}
	if wordAt(s, i, "null") {
		b.WriteString(p.null.Render("null"))
		return 4
	}
	b.WriteByte(ch)
	return 1
}

// quotedEnd 返回从 i 开始的引号字符串的结束位置（半开区间）
func quotedEnd(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch {
		case q == '"' && s[j] == '\\':
			j++
		case s[j] == q:
			return j + 1
		}
	}
	return len(s)
}

func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if !unicode.IsSpace(rune(s[i])) {
			return s[i]
		}
	}
	return 0
}

// keyColon 第一个不在引号内、且后跟空白或行尾的冒号
func keyColon(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"', '\'':
			i = quotedEnd(line, i) - 1
		case ':':
			if i+1 == len(line) || line[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}

func numberEnd(s string, i int) int {
	j := i
	if j < len(s) && s[j] == '-' {
		j++
	}
	for j < len(s) && strings.IndexByte("0123456789.eE+-", s[j]) >= 0 {
		if (s[j] == '+' || s[j] == '-') && s[j-1] != 'e' && s[j-1] != 'E' {
			break
		}
		j++
	}
	return j
}

// wordAt 判断 s[i:] 是否以独立的 word 开头
func wordAt(s string, i int, word string) bool {
	if !strings.HasPrefix(s[i:], word) {
		return false
	}
	isIdent := func(c byte) bool { return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) }
	if i > 0 && isIdent(s[i-1]) {
		return false
	}
	end := i + len(word)
	return end == len(s) || !isIdent(s[end])
}
