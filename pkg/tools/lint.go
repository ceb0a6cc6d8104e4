package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/executor"
)

// Linter 对单个文件做静态检查
type Linter interface {
	Name() string
	// Accepts 是否检查该语言的文件
	Accepts(lang string) bool
	Lint(ctx context.Context, path string) ([]models.LintIssue, error)
}

// DefaultLinters pylint 与 flake8 检查 Python，eslint 检查 JavaScript/TypeScript
func DefaultLinters(cfg configs.ToolsConfig) []Linter {
	timeout := time.Duration(cfg.Timeout) * time.Second
	return []Linter{
		PylintLinter{Bin: cfg.Pylint.Bin, Install: cfg.Pylint.Install, Timeout: timeout},
		Flake8Linter{Bin: cfg.Flake8.Bin, Install: cfg.Flake8.Install, Timeout: timeout},
		ESLintLinter{Bin: cfg.ESLint.Bin, Install: cfg.ESLint.Install, Timeout: timeout},
	}
}

// runReport 检查工具发现问题时以非零状态退出，只要 stdout 有内容就交给调用方解析
func runReport(ctx context.Context, timeout time.Duration, name, bin string, args ...string) (string, error) {
	stdout, _, err := executor.Tool(ctx, timeout, bin, args...).Run()
	if err != nil && (errors.Is(err, executor.ErrTimeout) || ctx.Err() != nil || strings.TrimSpace(stdout) == "") {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout, nil
}

// PylintLinter pylint --output-format=json
type PylintLinter struct {
	Bin     string
	Install string
	Timeout time.Duration
}

func (PylintLinter) Name() string { return "pylint" }

func (PylintLinter) Accepts(lang string) bool { return lang == "Python" }

func (p PylintLinter) Lint(ctx context.Context, path string) ([]models.LintIssue, error) {
	bin, err := Require(p.Bin, p.Install)
	if err != nil {
		return nil, err
	}
	out, err := runReport(ctx, p.Timeout, "pylint", bin, "--output-format=json", "--score=n", path)
	if err != nil || strings.TrimSpace(out) == "" {
		return nil, err
	}
	return parsePylint([]byte(out))
}

type pylintMessage struct {
	Type      string `json:"type"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Path      string `json:"path"`
	Symbol    string `json:"symbol"`
	Message   string `json:"message"`
	MessageID string `json:"message-id"`
}

func parsePylint(data []byte) ([]models.LintIssue, error) {
	var msgs []pylintMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("pylint: decode output: %w", err)
	}
	out := make([]models.LintIssue, 0, len(msgs))
	for _, m := range msgs {
		sev := m.Type
		if sev == "fatal" {
			sev = "error"
		}
		code := m.MessageID
		if m.Symbol != "" {
			code = strings.TrimSpace(code + " " + m.Symbol)
		}
		out = append(out, models.LintIssue{
			Tool:     "pylint",
			File:     m.Path,
			Line:     m.Line,
			Column:   m.Column,
			Code:     code,
			Severity: sev,
			Message:  m.Message,
		})
	}
	return out, nil
}

// Flake8Linter flake8 的自定义单行格式
type Flake8Linter struct {
	Bin     string
	Install string
	Timeout time.Duration
}

const flake8Format = "--format=%(row)d:%(col)d:%(code)s:%(text)s"

func (Flake8Linter) Name() string { return "flake8" }

func (Flake8Linter) Accepts(lang string) bool { return lang == "Python" }

func (f Flake8Linter) Lint(ctx context.Context, path string) ([]models.LintIssue, error) {
	bin, err := Require(f.Bin, f.Install)
	if err != nil {
		return nil, err
	}
	out, err := runReport(ctx, f.Timeout, "flake8", bin, flake8Format, path)
	if err != nil {
		return nil, err
	}
	return parseFlake8(out, path), nil
}

// parseFlake8 每行 row:col:code:text，格式不符的行被忽略
func parseFlake8(out, path string) []models.LintIssue {
	var issues []models.LintIssue
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 4)
		if len(parts) != 4 {
			continue
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		col, _ := strconv.Atoi(parts[1])
		code := parts[2]
		issues = append(issues, models.LintIssue{
			Tool:     "flake8",
			File:     path,
			Line:     row,
			Column:   col,
			Code:     code,
			Severity: flake8Severity(code),
			Message:  strings.TrimSpace(parts[3]),
		})
	}
	return issues
}

// flake8Severity E/F 为错误，W 为警告，C（mccabe）和插件代码按规范问题处理
func flake8Severity(code string) string {
	switch {
	case strings.HasPrefix(code, "E"), strings.HasPrefix(code, "F"):
		return "error"
	case strings.HasPrefix(code, "W"):
		return "warning"
	default:
		return "convention"
	}
}

// ESLintLinter eslint --format json，依赖项目自身的 eslint 配置
type ESLintLinter struct {
	Bin     string
	Install string
	Timeout time.Duration
}

var eslintLanguages = []string{"JavaScript", "TypeScript", "React", "React TypeScript"}

func (ESLintLinter) Name() string { return "eslint" }

func (ESLintLinter) Accepts(lang string) bool { return slices.Contains(eslintLanguages, lang) }

func (e ESLintLinter) Lint(ctx context.Context, path string) ([]models.LintIssue, error) {
	bin, err := Require(e.Bin, e.Install)
	if err != nil {
		return nil, err
	}
	out, err := runReport(ctx, e.Timeout, "eslint", bin, "--format", "json", path)
	if err != nil || strings.TrimSpace(out) == "" {
		return nil, err
	}
	return parseESLint([]byte(out))
}

type eslintResult struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID   string `json:"ruleId"`
		Severity int    `json:"severity"`
		Message  string `json:"message"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
	} `json:"messages"`
}

func parseESLint(data []byte) ([]models.LintIssue, error) {
	var results []eslintResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("eslint: decode output: %w", err)
	}
	var out []models.LintIssue
	for _, r := range results {
		for _, m := range r.Messages {
			sev := "warning"
			if m.Severity >= 2 {
				sev = "error"
			}
			out = append(out, models.LintIssue{
				Tool:     "eslint",
				File:     r.FilePath,
				Line:     m.Line,
				Column:   m.Column,
				Code:     m.RuleID,
				Severity: sev,
				Message:  m.Message,
			})
		}
	}
	return out, nil
}
