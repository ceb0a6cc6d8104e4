package style

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// KeyValue 一行对齐输出的键值
type KeyValue struct {
	Key   string
	Value string
}

// PrintHeading 打印一个区块标题
func PrintHeading(w io.Writer, title string) error {
	style := lipgloss.NewStyle().
		Foreground(ColorAccentText).
		Background(ColorAccentPrimary).
		Bold(true).
		Padding(0, 1)
	_, err := fmt.Fprintln(w, style.Render(strings.ToUpper(title)))
	return err
}

// PrintKeyValues 按显示宽度对齐键名后输出
func PrintKeyValues(w io.Writer, pairs []KeyValue) error {
	maxKey := 0
	for _, p := range pairs {
		maxKey = max(maxKey, runewidth.StringWidth(p.Key))
	}
	keyStyle := lipgloss.NewStyle().Foreground(ColorAccentPrimary).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorText)
	for _, p := range pairs {
		pad := strings.Repeat(" ", maxKey-runewidth.StringWidth(p.Key))
		if _, err := fmt.Fprintf(w, "  %s%s  %s\n", keyStyle.Render(p.Key), pad, valueStyle.Render(p.Value)); err != nil {
			return err
		}
	}
	return nil
}

// PrintStatus 打印带状态标记的一行，ok 为 false 时使用错误色
func PrintStatus(w io.Writer, ok bool, name, detail string) error {
	mark := lipgloss.NewStyle().Foreground(ColorSuccess).Render("✔")
	nameStyle := lipgloss.NewStyle().Foreground(ColorAccentPrimary).Bold(true)
	if !ok {
		mark = lipgloss.NewStyle().Foreground(ColorDanger).Render("✘")
		nameStyle = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	}
	_, err := fmt.Fprintf(w, "  %s %s  %s\n", mark, nameStyle.Render(name), detail)
	return err
}
