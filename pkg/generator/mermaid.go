package generator

import (
	"fmt"
	"strings"
)

// nodeID 将任意文本转换为 mermaid 合法的节点 ID
func nodeID(prefix, s string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// label 转义节点文本中的引号
func label(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "#quot;") + `"`
}

// idAllocator 保证清洗后的 ID 不冲突
type idAllocator struct {
	used map[string]int
	ids  map[string]string
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: map[string]int{}, ids: map[string]string{}}
}

// get 同一个 key 总是返回同一个 ID
func (a *idAllocator) get(prefix, key string) string {
	if id, ok := a.ids[prefix+"\x00"+key]; ok {
		return id
	}
	base := nodeID(prefix, key)
	id := base
	for a.used[id] > 0 {
		a.used[base]++
		id = fmt.Sprintf("%s_%d", base, a.used[base]-1)
	}
	a.used[id]++
	a.ids[prefix+"\x00"+key] = id
	return id
}
