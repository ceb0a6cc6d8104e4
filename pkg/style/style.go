// Package style 提供终端样式化输出：标题、表格、树、列表、进度条以及 JSON/YAML 高亮
package style

import "github.com/charmbracelet/lipgloss"

// 颜色集中定义，便于统一修改
const (
	// 主题强调色，用于标题背景和列表符号
	ColorAccentPrimary = lipgloss.Color("#33A1FF")

	// 强调背景上的文本颜色
	ColorAccentText = lipgloss.Color("#FFFFFF")

	// 普通文本
	ColorText = lipgloss.Color("#E4E4E4")

	// 边框与次要信息
	ColorBorder = lipgloss.Color("#444444")

	// 错误、缺失工具
	ColorDanger = lipgloss.Color("#FF5555")

	// 警告、中等严重度
	ColorWarning = lipgloss.Color("#F59E0B")

	// 成功、已安装
	ColorSuccess = lipgloss.Color("#22C55E")

	// 高亮颜色
	ColorKey    = lipgloss.Color("#55bcf4ff")
	ColorString = ColorAccentText
	ColorNumber = lipgloss.Color("#d4ec19ff")
	ColorBool   = lipgloss.Color("#dfab49ff")
	ColorNull   = lipgloss.Color("#6272A4")
	ColorPunct  = lipgloss.Color("#6B7280")
)

// SeverityColor 安全扫描严重度对应的颜色
func SeverityColor(severity string) lipgloss.Color {
	switch severity {
	case "HIGH", "high":
		return ColorDanger
	case "MEDIUM", "medium":
		return ColorWarning
	default:
		return ColorText
	}
}
