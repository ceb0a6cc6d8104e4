package tools

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/yeisme/smartrepo/pkg/style"
)

// FindToolsFuzzy 在工具表中模糊搜索名称、用途和安装命令
func FindToolsFuzzy(query string, ts []Tool) []Tool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Tool
	for _, t := range ts {
		s := strings.ToLower(strings.Join([]string{t.Name, t.Bin, t.Purpose, t.Install, t.Enables}, " "))
		if fuzzy.Match(q, s) || strings.Contains(s, q) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveTool 先按名称或可执行文件名精确查找，找不到时模糊搜索
func ResolveTool(name string, ts []Tool) (*Tool, []Tool) {
	for _, t := range ts {
		if strings.EqualFold(t.Name, name) || strings.EqualFold(t.Bin, name) {
			found := t
			return &found, nil
		}
	}
	matches := FindToolsFuzzy(name, ts)
	if len(matches) == 1 {
		return &matches[0], nil
	}
	return nil, matches
}

// InteractiveSelect 使用 fuzzyfinder 在多个候选中交互选择一项
func InteractiveSelect(matches []Tool) (*Tool, error) {
	if len(matches) == 0 {
		return nil, fmt.Errorf("no matches to select")
	}
	idx, err := fuzzyfinder.Find(matches, func(i int) string {
		return fmt.Sprintf("%s (%s)", matches[i].Name, matches[i].Purpose)
	})
	if err != nil {
		return nil, err
	}
	sel := matches[idx]
	return &sel, nil
}

// SearchCommandOptions 搜索命令的选项
type SearchCommandOptions struct {
	Query  string
	Format string // table, json, yaml
}

// ExecuteSearchCommand 查询为空时进入交互选择
func ExecuteSearchCommand(ts []Tool, opts SearchCommandOptions, out io.Writer) error {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "table"
	}

	if strings.TrimSpace(opts.Query) == "" {
		sel, err := InteractiveSelect(ts)
		if err != nil {
			return fmt.Errorf("interactive select failed: %w", err)
		}
		return PrintStatuses(Check([]Tool{*sel}), format, out)
	}

	t, matches := ResolveTool(opts.Query, ts)
	if t != nil {
		return PrintStatuses(Check([]Tool{*t}), format, out)
	}
	if len(matches) == 0 {
		if format == "json" || format == "yaml" {
			_, err := fmt.Fprintln(out, "null")
			return err
		}
		return fmt.Errorf("tool not found: %s", opts.Query)
	}
	return PrintStatuses(Check(matches), format, out)
}

// PrintStatuses 按格式输出工具状态
func PrintStatuses(st []Status, format string, out io.Writer) error {
	switch strings.ToLower(format) {
	case "json":
		return style.PrintJSON(out, st)
	case "yaml":
		return style.PrintYAML(out, st)
	case "table", "":
		rows := make([][]string, 0, len(st))
		for _, s := range st {
			state := "missing"
			if s.Available {
				state = "ok"
			}
			rows = append(rows, []string{s.Name, state, s.Enables, s.Install})
		}
		return style.PrintTable(out, []string{"Tool", "Status", "Enables", "Install"}, rows, 0)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
