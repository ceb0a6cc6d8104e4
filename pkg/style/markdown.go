package style

import (
	"io"

	"github.com/charmbracelet/glamour"
)

const (
	minMarkdownWidth = 40
	maxMarkdownWidth = 120
)

// RenderMarkdown 渲染 Markdown 并写入 w，宽度取自终端
// w 不是终端时使用 notty 样式，输出不含颜色
func RenderMarkdown(w io.Writer, input, theme string) error {
	if !IsTerminal(w) {
		theme = "notty"
	}
	out, err := FormatMarkdown(input, detectTerminalWidth(w), theme)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// FormatMarkdown 按给定宽度渲染，宽度限制在 [40, 120]，未知宽度按 80 处理
func FormatMarkdown(input string, width int, theme string) (string, error) {
	if theme == "" {
		theme = "dark"
	}
	if width <= 0 {
		width = 80
	}
	width = min(max(width, minMarkdownWidth), maxMarkdownWidth)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
		glamour.WithInlineTableLinks(true),
	)
	if err != nil {
		return "", err
	}
	return r.Render(input)
}
