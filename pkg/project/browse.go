package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/style"
	"github.com/yeisme/smartrepo/pkg/utils/fsop"
)

const (
	browseSearchDepth = 4
	browseChrome      = 3 // 标题和帮助行占用的高度
)

// ErrNoAnalysis 浏览根目录下没有分析结果
var ErrNoAnalysis = errors.New("no analysis found, run smartrepo analyze first")

// BrowseOptions browse 命令选项
type BrowseOptions struct {
	Root string // 默认 ./smartrepo-analysis，不存在时为当前目录
}

// ExecuteBrowseCommand 启动 TUI 浏览分析结果
func ExecuteBrowseCommand(opts BrowseOptions, w io.Writer) error {
	root := opts.Root
	if root == "" {
		root = "smartrepo-analysis"
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			root = "."
		}
	}
	dirs, err := FindAnalyses(root)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoAnalysis, root)
	}
	p := tea.NewProgram(NewBrowseModel(root, dirs), tea.WithAltScreen(), tea.WithOutput(w))
	_, err = p.Run()
	return err
}

// FindAnalyses 返回 root 下包含 ai-summary.json 的目录（相对路径，已排序）
func FindAnalyses(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if rel != "." && strings.Count(filepath.ToSlash(rel), "/") >= browseSearchDepth {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(path, generator.SummaryFile)); err == nil {
			dirs = append(dirs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search analyses in %s: %w", root, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}

type browseLevel int

const (
	levelAnalyses browseLevel = iota
	levelFiles
	levelView
)

type browseItem struct {
	name string
	desc string
}

func (i browseItem) Title() string       { return i.name }
func (i browseItem) Description() string { return i.desc }
func (i browseItem) FilterValue() string { return i.name }

// BrowseModel 三层导航：分析目录、文件列表、文件内容
type BrowseModel struct {
	root     string
	level    browseLevel
	analyses list.Model
	files    list.Model
	viewer   viewport.Model
	current  string // 当前分析目录（相对 root）
	viewing  string // 当前查看的文件名
	width    int
	height   int
	err      error
	quitting bool
}

// NewBrowseModel 创建浏览模型
func NewBrowseModel(root string, dirs []string) *BrowseModel {
	items := make([]list.Item, 0, len(dirs))
	for _, d := range dirs {
		desc := "analysis"
		if infos, err := fsop.ListFiles(filepath.Join(root, filepath.FromSlash(d))); err == nil {
			desc = fmt.Sprintf("%d files", len(infos))
		}
		items = append(items, browseItem{name: d, desc: desc})
	}
	analyses := list.New(items, list.NewDefaultDelegate(), 80, 20)
	analyses.Title = "Analyses in " + root
	files := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	return &BrowseModel{
		root:     root,
		analyses: analyses,
		files:    files,
		viewer:   viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// Init 实现 tea.Model
func (m *BrowseModel) Init() tea.Cmd { return nil }

// Update 实现 tea.Model
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.descend()
			return m, nil
		case "esc", "backspace", "left", "h":
			m.ascend()
			return m, nil
		}
	}

	switch m.level {
	case levelAnalyses:
		m.analyses, cmd = m.analyses.Update(msg)
	case levelFiles:
		m.files, cmd = m.files.Update(msg)
	case levelView:
		m.viewer, cmd = m.viewer.Update(msg)
	}
	return m, cmd
}

// View 实现 tea.Model
func (m *BrowseModel) View() string {
	if m.quitting {
		return ""
	}
	help := lipgloss.NewStyle().Foreground(style.ColorBorder)
	var body, hint string
	switch m.level {
	case levelAnalyses:
		body = m.analyses.View()
		hint = "enter: open • /: filter • q: quit"
	case levelFiles:
		body = m.files.View()
		hint = "enter: view • esc: back • q: quit"
	case levelView:
		title := lipgloss.NewStyle().Bold(true).Foreground(style.ColorAccentPrimary).
			Render(m.current + "/" + m.viewing)
		body = title + "\n" + m.viewer.View()
		hint = fmt.Sprintf("↑/↓: scroll • esc: back • q: quit • %3.f%%", m.viewer.ScrollPercent()*100)
	}
	if m.err != nil {
		body += "\n" + lipgloss.NewStyle().Foreground(style.ColorDanger).Render(m.err.Error())
	}
	return body + "\n" + help.Render(hint)
}

func (m *BrowseModel) filtering() bool {
	switch m.level {
	case levelAnalyses:
		return m.analyses.FilterState() == list.Filtering
	case levelFiles:
		return m.files.FilterState() == list.Filtering
	}
	return false
}

func (m *BrowseModel) resize(width, height int) {
	m.width, m.height = width, height
	h := max(height-browseChrome, 1)
	m.analyses.SetSize(width, h)
	m.files.SetSize(width, h)
	m.viewer.Width = width
	m.viewer.Height = h
}

func (m *BrowseModel) descend() {
	m.err = nil
	switch m.level {
	case levelAnalyses:
		it, ok := m.analyses.SelectedItem().(browseItem)
		if !ok {
			return
		}
		infos, err := fsop.ListFiles(m.dir(it.name))
		if err != nil {
			m.err = err
			return
		}
		items := make([]list.Item, 0, len(infos))
		for _, fi := range infos {
			items = append(items, browseItem{name: fi.Name, desc: groupDigits(fi.Size) + " bytes"})
		}
		m.files.SetItems(items)
		m.files.Title = it.name
		m.files.ResetSelected()
		m.current = it.name
		m.level = levelFiles
	case levelFiles:
		it, ok := m.files.SelectedItem().(browseItem)
		if !ok {
			return
		}
		content, err := m.render(it.name)
		if err != nil {
			m.err = err
			return
		}
		m.viewer.SetContent(content)
		m.viewer.GotoTop()
		m.viewing = it.name
		m.level = levelView
	}
}

func (m *BrowseModel) ascend() {
	m.err = nil
	if m.level > levelAnalyses {
		m.level--
	}
}

func (m *BrowseModel) dir(rel string) string {
	return filepath.Join(m.root, filepath.FromSlash(rel))
}

// render 读取文件；Markdown 用 glamour 渲染，JSON 缩进，二进制文件只显示大小
func (m *BrowseModel) render(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.dir(m.current), name))
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		if out, err := style.FormatMarkdown(string(data), m.width-2, "dark"); err == nil {
			return out, nil
		}
	case ".json":
		if out, err := style.FormatJSON(data); err == nil {
			return out, nil
		}
	case ".png":
		return fmt.Sprintf("binary image, %s bytes", groupDigits(int64(len(data)))), nil
	}
	return string(data), nil
}
