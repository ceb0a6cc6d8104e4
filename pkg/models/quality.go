package models

// FileCoverage 单个文件的行覆盖率
type FileCoverage struct {
	Path    string  `json:"path" yaml:"path"`
	Lines   int     `json:"lines" yaml:"lines"`
	Covered int     `json:"covered" yaml:"covered"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Coverage coverage.xml（Cobertura 格式）中的测试覆盖率
type Coverage struct {
	Report string `json:"report" yaml:"report"`
	// Overall 各文件百分比的算术平均，不按行数加权
	Overall float64        `json:"overall" yaml:"overall"`
	Files   []FileCoverage `json:"files" yaml:"files"`
}

// LintIssue 静态检查工具报告的问题
type LintIssue struct {
	Tool     string `json:"tool" yaml:"tool"`
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column,omitempty" yaml:"column,omitempty"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Severity string `json:"severity" yaml:"severity"` // error、warning、convention、refactor、info
	Message  string `json:"message" yaml:"message"`
}

// Maintainability radon mi 给出的可维护性指数，0-100，越高越好
type Maintainability struct {
	File  string  `json:"file" yaml:"file"`
	Index float64 `json:"index" yaml:"index"`
	Rank  string  `json:"rank" yaml:"rank"`
}

// UsageExample 从测试函数或文档注释中提取的用法示例
type UsageExample struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"` // test、example、doc
	Doc  string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// CallEdge 函数调用关系，节点形如 path:function
type CallEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// LintCounts 按严重程度统计
func LintCounts(issues []LintIssue) map[string]int {
	out := map[string]int{}
	for _, i := range issues {
		out[i.Severity]++
	}
	return out
}

// AverageMaintainability 没有数据时第二个返回值为 false
func AverageMaintainability(ms []Maintainability) (float64, bool) {
	if len(ms) == 0 {
		return 0, false
	}
	var sum float64
	for _, m := range ms {
		sum += m.Index
	}
	return sum / float64(len(ms)), true
}
