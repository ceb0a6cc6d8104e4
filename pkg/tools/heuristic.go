package tools

import (
	"context"
	"os"
	"regexp"
)

// decisionPattern 常见语言中的分支关键字与短路运算
var decisionPattern = regexp.MustCompile(`\b(?:if|elif|else\s+if|elsif|for|foreach|while|case|when|catch|except|guard)\b|&&|\|\||\?\?`)

// functionPattern 粗略识别函数定义
var functionPattern = regexp.MustCompile(`(?m)\b(?:def|func|fn|fun|function)\s+\w+|^\s*(?:public|private|protected|static|async|override)[\w\s<>\[\],]*\s\w+\s*\([^;]*\)\s*\{`)

// HeuristicScorer 对没有专用工具的语言按关键字计数估算复杂度
// 结果为 1 + 分支数 / max(函数数, 1)
type HeuristicScorer struct {
	// Languages 为空表示接受所有语言
	Languages map[string]bool
}

func (h HeuristicScorer) Score(ctx context.Context, path, lang string) (float64, error) {
	if len(h.Languages) > 0 && !h.Languages[lang] {
		return 0, ErrUnsupportedLanguage
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return heuristicComplexity(content), nil
}

func heuristicComplexity(content []byte) float64 {
	decisions := len(decisionPattern.FindAllIndex(content, -1))
	funcs := max(len(functionPattern.FindAllIndex(content, -1)), 1)
	return 1 + float64(decisions)/float64(funcs)
}
