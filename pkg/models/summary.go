package models

import (
	"math"
	"sort"
)

// AnalyzerVersion 写入 ai-summary.json 的分析器版本
const AnalyzerVersion = "1.0.0"

// Metrics 项目级汇总指标，始终等于 Files 中各记录之和
type Metrics struct {
	Files     int `json:"files" yaml:"files"`
	Lines     int `json:"lines" yaml:"lines"`
	Functions int `json:"functions" yaml:"functions"`
	Classes   int `json:"classes" yaml:"classes"`

	// 只在开启复杂度且至少一个文件有分数时出现
	AverageComplexity *float64 `json:"average_complexity,omitempty" yaml:"average_complexity,omitempty"`
	ScoredFiles       int      `json:"scored_files,omitempty" yaml:"scored_files,omitempty"`

	// 每种语言的行数
	LanguageDistribution map[string]int `json:"language_distribution" yaml:"language_distribution"`
}

// Dependencies 清单文件中声明的依赖
type Dependencies struct {
	Runtime     []string `json:"runtime" yaml:"runtime"`
	Development []string `json:"development" yaml:"development"`
}

// Total 依赖总数
func (d Dependencies) Total() int { return len(d.Runtime) + len(d.Development) }

// ArchitectureCategory 按文件名启发式归类的架构分组
type ArchitectureCategory struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	FileCount   int      `json:"file_count" yaml:"file_count"`
	Files       []string `json:"files" yaml:"files"`
}

// Contributor git 提交者
type Contributor struct {
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Commits int    `json:"commits" yaml:"commits"`
}

// ImportEdge 文件间的导入关系
type ImportEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// SecurityFinding 安全扫描发现的问题
type SecurityFinding struct {
	File       string `json:"file" yaml:"file"`
	Line       int    `json:"line" yaml:"line"`
	TestID     string `json:"test_id,omitempty" yaml:"test_id,omitempty"`
	Severity   string `json:"severity" yaml:"severity"`
	Confidence string `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Issue      string `json:"issue" yaml:"issue"`
}

// AISummary LLM 生成的文件摘要
type AISummary struct {
	Path    string `json:"path" yaml:"path"`
	Summary string `json:"summary" yaml:"summary"`
}

// AnalysisSummary 一次分析的完整结果，ai-summary.json 即为其序列化
type AnalysisSummary struct {
	Project         ProjectProfile         `json:"project" yaml:"project"`
	Metrics         Metrics                `json:"metrics" yaml:"metrics"`
	Files           []FileRecord           `json:"files" yaml:"files"`
	Dependencies    Dependencies           `json:"dependencies" yaml:"dependencies"`
	Architecture    []ArchitectureCategory `json:"architecture" yaml:"architecture"`
	KeyInsights     []string               `json:"key_insights" yaml:"key_insights"`
	Recommendations []string               `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Contributors    []Contributor          `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	DependencyGraph []ImportEdge           `json:"dependency_graph,omitempty" yaml:"dependency_graph,omitempty"`
	Security        []SecurityFinding      `json:"security,omitempty" yaml:"security,omitempty"`
	AISummaries     []AISummary            `json:"ai_summaries,omitempty" yaml:"ai_summaries,omitempty"`
	Coverage        *Coverage              `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Lint            []LintIssue            `json:"lint,omitempty" yaml:"lint,omitempty"`
	Maintainability []Maintainability      `json:"maintainability,omitempty" yaml:"maintainability,omitempty"`
	UsageExamples   []UsageExample         `json:"usage_examples,omitempty" yaml:"usage_examples,omitempty"`
	CallGraph       []CallEdge             `json:"call_graph,omitempty" yaml:"call_graph,omitempty"`
	CallCycles      [][]string             `json:"call_cycles,omitempty" yaml:"call_cycles,omitempty"`
	GeneratedAt     string                 `json:"generated_at" yaml:"generated_at"`
	AnalyzerVersion string                 `json:"analyzer_version" yaml:"analyzer_version"`
}

// ComputeMetrics 从文件记录重新计算汇总指标
func ComputeMetrics(files []FileRecord) Metrics {
	m := Metrics{LanguageDistribution: map[string]int{}}
	var scoreSum float64
	for _, f := range files {
		m.Files++
		m.Lines += f.Lines
		m.Functions += f.Functions
		m.Classes += f.Classes
		m.LanguageDistribution[f.Language] += f.Lines
		if v, ok := f.Complexity.Value(); ok {
			scoreSum += v
			m.ScoredFiles++
		}
	}
	if m.ScoredFiles > 0 {
		avg := math.Round(scoreSum/float64(m.ScoredFiles)*100) / 100
		m.AverageComplexity = &avg
	}
	return m
}

// Recompute 用 Files 重建 Metrics
func (s *AnalysisSummary) Recompute() {
	s.Metrics = ComputeMetrics(s.Files)
}

// Category 按名称查找架构分组
func (s *AnalysisSummary) Category(name string) (ArchitectureCategory, bool) {
	for _, c := range s.Architecture {
		if c.Name == name {
			return c, true
		}
	}
	return ArchitectureCategory{}, false
}

// File 按路径查找文件记录
func (s *AnalysisSummary) File(path string) (FileRecord, bool) {
	i := sort.Search(len(s.Files), func(i int) bool { return s.Files[i].Path >= path })
	if i < len(s.Files) && s.Files[i].Path == path {
		return s.Files[i], true
	}
	return FileRecord{}, false
}

// LargestFiles 按行数降序返回前 n 个文件，行数相同按路径排序
func (s *AnalysisSummary) LargestFiles(n int) []FileRecord {
	files := make([]FileRecord, len(s.Files))
	copy(files, s.Files)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Lines != files[j].Lines {
			return files[i].Lines > files[j].Lines
		}
		return files[i].Path < files[j].Path
	})
	if n >= 0 && len(files) > n {
		files = files[:n]
	}
	return files
}

// LanguagesByLines 按行数降序返回语言名
func (m Metrics) LanguagesByLines() []string {
	langs := make([]string, 0, len(m.LanguageDistribution))
	for l := range m.LanguageDistribution {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		li, lj := m.LanguageDistribution[langs[i]], m.LanguageDistribution[langs[j]]
		if li != lj {
			return li > lj
		}
		return langs[i] < langs[j]
	})
	return langs
}
