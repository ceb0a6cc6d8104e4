package deps

import (
	"slices"
	"sort"
	"strings"
)

// Cycles 每个强连通分量（含自环节点）给出一条环，按首节点排序.
// 环从分量中字典序最小的节点出发，沿最短路径回到起点；首尾节点相同.
// 不枚举全部简单环，环的数量不超过节点数.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string
	for _, comp := range g.components() {
		start := comp[0]
		if len(comp) == 1 {
			if _, ok := g.edges[start][start]; ok {
				cycles = append(cycles, []string{start, start})
			}
			continue
		}
		in := make(map[string]bool, len(comp))
		for _, id := range comp {
			in[id] = true
		}
		if path := g.shortestReturn(start, in); path != nil {
			cycles = append(cycles, path)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// FormatCycle a -> b -> a
func FormatCycle(cycle []string) string { return strings.Join(cycle, " -> ") }

// shortestReturn 在分量内做 BFS，找到从 start 出发回到 start 的最短路径
func (g *Graph) shortestReturn(start string, in map[string]bool) []string {
	prev := map[string]string{}
	queue := []string{start}
	seen := map[string]bool{start: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Children(cur) {
			if !in[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for n := cur; n != start; n = prev[n] {
					path = append(path, n)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if !seen[next] {
				seen[next] = true
				prev[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// components Tarjan 算法求强连通分量，每个分量内节点已排序
func (g *Graph) components() [][]string {
	index := map[string]int{}
	low := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var out [][]string
	next := 0

	var visit func(v string)
	visit = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Children(v) {
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			out = append(out, comp)
		}
	}

	for _, v := range g.Nodes() {
		if _, seen := index[v]; !seen {
			visit(v)
		}
	}
	return out
}
