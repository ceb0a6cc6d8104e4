package models

import "math"

// Complexity 单个文件的复杂度结果
// 未开启复杂度分析时 FileRecord.Complexity 为 nil；开启后要么有分数，要么显式标记不可用
type Complexity struct {
	Score       *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Unavailable bool     `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	Reason      string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Scored 构造带分数的复杂度
func Scored(score float64) *Complexity {
	s := math.Round(score*100) / 100
	return &Complexity{Score: &s}
}

// Unavailable 构造不可用标记
func Unavailable(reason string) *Complexity {
	return &Complexity{Unavailable: true, Reason: reason}
}

// Value 返回分数以及是否可用
func (c *Complexity) Value() (float64, bool) {
	if c == nil || c.Unavailable || c.Score == nil {
		return 0, false
	}
	return *c.Score, true
}

// ClassRelation 类继承关系，用于 UML 图
type ClassRelation struct {
	Class string `json:"class" yaml:"class"`
	Base  string `json:"base" yaml:"base"`
}

// FileRecord 单个源文件的分析结果
type FileRecord struct {
	Path      string `json:"path" yaml:"path"` // 相对根目录，使用 / 分隔
	Language  string `json:"language" yaml:"language"`
	Lines     int    `json:"lines" yaml:"lines"`
	Functions int    `json:"functions" yaml:"functions"`
	Classes   int    `json:"classes" yaml:"classes"`
	Size      int64  `json:"size" yaml:"size"`

	CodeLines    int `json:"code_lines" yaml:"code_lines"`
	CommentLines int `json:"comment_lines" yaml:"comment_lines"`
	BlankLines   int `json:"blank_lines" yaml:"blank_lines"`

	FunctionNames []string        `json:"function_names,omitempty" yaml:"function_names,omitempty"`
	ClassNames    []string        `json:"class_names,omitempty" yaml:"class_names,omitempty"`
	Imports       []string        `json:"imports,omitempty" yaml:"imports,omitempty"`
	Extends       []ClassRelation `json:"extends,omitempty" yaml:"extends,omitempty"`

	Complexity *Complexity `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Summary    string      `json:"summary,omitempty" yaml:"summary,omitempty"`
}
