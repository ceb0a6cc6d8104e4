package style

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// TreeNode 树形输出的节点
type TreeNode struct {
	Text     string
	Children []TreeNode
}

// PrintTree 以圆角连接符渲染树
func PrintTree(w io.Writer, rootNode TreeNode) error {
	rootStyle := lipgloss.NewStyle().Foreground(ColorAccentText).Bold(true)
	itemStyle := lipgloss.NewStyle().Foreground(ColorText)
	enumeratorStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	var build func(TreeNode) *tree.Tree
	build = func(node TreeNode) *tree.Tree {
		t := tree.New().Root(node.Text)
		for _, child := range node.Children {
			if len(child.Children) == 0 {
				t.Child(child.Text)
			} else {
				t.Child(build(child))
			}
		}
		return t
	}

	t := build(rootNode).
		Enumerator(tree.RoundedEnumerator).
		RootStyle(rootStyle).
		ItemStyle(itemStyle).
		EnumeratorStyle(enumeratorStyle)

	_, err := fmt.Fprintln(w, t)
	return err
}

// PathTree 将 / 分隔的相对路径组织成树，目录排在文件前，同级按名称排序
// maxDepth>0 时最多展开 maxDepth 层目录，更深的文件挂在最后一层下
func PathTree(root string, paths []string, maxDepth int) TreeNode {
	type dirNode struct {
		dirs  map[string]*dirNode
		files []string
	}
	newDir := func() *dirNode { return &dirNode{dirs: map[string]*dirNode{}} }
	top := newDir()
	for _, p := range paths {
		parts := strings.Split(strings.Trim(p, "/"), "/")
		cur := top
		for i, part := range parts {
			last := i == len(parts)-1
			if last {
				cur.files = append(cur.files, part)
				break
			}
			if maxDepth > 0 && i >= maxDepth {
				cur.files = append(cur.files, parts[len(parts)-1])
				break
			}
			next, ok := cur.dirs[part]
			if !ok {
				next = newDir()
				cur.dirs[part] = next
			}
			cur = next
		}
	}

	var convert func(name string, d *dirNode) TreeNode
	convert = func(name string, d *dirNode) TreeNode {
		node := TreeNode{Text: name}
		names := make([]string, 0, len(d.dirs))
		for n := range d.dirs {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			node.Children = append(node.Children, convert(n+"/", d.dirs[n]))
		}
		sort.Strings(d.files)
		for _, f := range d.files {
			node.Children = append(node.Children, TreeNode{Text: f})
		}
		return node
	}
	return convert(root, top)
}
