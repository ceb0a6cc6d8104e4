package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/executor"
)

// RadonScorer 通过 radon cc 计算 Python 文件的平均圈复杂度
type RadonScorer struct {
	Bin     string
	Install string
	Timeout time.Duration
}

type radonBlock struct {
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Complexity float64      `json:"complexity"`
	Methods    []radonBlock `json:"methods"`
}

// Score 没有函数或类的文件返回 1
func (r RadonScorer) Score(ctx context.Context, path, lang string) (float64, error) {
	if lang != "Python" {
		return 0, ErrUnsupportedLanguage
	}
	bin, err := Require(r.Bin, r.Install)
	if err != nil {
		return 0, err
	}
	out, err := executor.Tool(ctx, r.Timeout, bin, "cc", "-s", "-j", path).Output()
	if err != nil {
		return 0, fmt.Errorf("radon: %w", err)
	}
	return parseRadon([]byte(out))
}

// parseRadon 解析 radon cc -j 的输出，取所有代码块的平均值
// 输出形如 {"file.py": [blocks...]}，文件解析失败时为 {"file.py": {"error": "..."}}
func parseRadon(data []byte) (float64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("radon: decode output: %w", err)
	}
	var sum float64
	var n int
	for _, msg := range raw {
		var blocks []radonBlock
		if err := json.Unmarshal(msg, &blocks); err != nil {
			var fail struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(msg, &fail) == nil && fail.Error != "" {
				return 0, errors.New("radon: " + fail.Error)
			}
			return 0, fmt.Errorf("radon: decode blocks: %w", err)
		}
		for _, b := range blocks {
			sum += b.Complexity
			n++
		}
	}
	if n == 0 {
		return 1, nil
	}
	return sum / float64(n), nil
}

// Maintainability 通过 radon mi 计算 Python 文件的可维护性指数
func (r RadonScorer) Maintainability(ctx context.Context, path, lang string) (models.Maintainability, error) {
	if lang != "Python" {
		return models.Maintainability{}, ErrUnsupportedLanguage
	}
	bin, err := Require(r.Bin, r.Install)
	if err != nil {
		return models.Maintainability{}, err
	}
	out, err := executor.Tool(ctx, r.Timeout, bin, "mi", "-s", "-j", path).Output()
	if err != nil {
		return models.Maintainability{}, fmt.Errorf("radon: %w", err)
	}
	return parseRadonMI([]byte(out))
}

// parseRadonMI 输出形如 {"file.py": {"mi": 72.4, "rank": "A"}}
func parseRadonMI(data []byte) (models.Maintainability, error) {
	var raw map[string]struct {
		MI    *float64 `json:"mi"`
		Rank  string   `json:"rank"`
		Error string   `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Maintainability{}, fmt.Errorf("radon: decode output: %w", err)
	}
	for _, v := range raw {
		if v.Error != "" {
			return models.Maintainability{}, errors.New("radon: " + v.Error)
		}
		if v.MI == nil {
			return models.Maintainability{}, errors.New("radon: missing maintainability index")
		}
		return models.Maintainability{Index: math.Round(*v.MI*100) / 100, Rank: v.Rank}, nil
	}
	return models.Maintainability{}, errors.New("radon: empty output")
}
