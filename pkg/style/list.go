package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
)

// PrintBullets 输出带标题的圆点列表，items 为空时不输出
func PrintBullets(w io.Writer, title string, items []string) error {
	if len(items) == 0 {
		return nil
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorAccentPrimary)
	l := list.New().
		Enumerator(list.Bullet).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(ColorAccentPrimary).MarginRight(1)).
		ItemStyle(lipgloss.NewStyle().Foreground(ColorText))
	for _, it := range items {
		l.Item(TruncateCell(it, MaxCellWidth*2))
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(title), l)
	return err
}
