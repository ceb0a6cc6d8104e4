// Package tools 封装 SmartRepo 调用的外部工具：复杂度、安全扫描、静态检查和图表渲染
// 每种能力都是单方法接口，缺少工具时返回 MissingToolError
package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/models"
)

// ComplexityScorer 计算单个文件的复杂度
type ComplexityScorer interface {
	Score(ctx context.Context, path, lang string) (float64, error)
}

// SecurityScanner 扫描单个文件的安全问题
type SecurityScanner interface {
	Scan(ctx context.Context, path string) ([]models.SecurityFinding, error)
}

// MaintainabilityScorer 计算单个文件的可维护性指数，结果中的 File 由调用方填写
type MaintainabilityScorer interface {
	Maintainability(ctx context.Context, path, lang string) (models.Maintainability, error)
}

// DiagramRenderer 将 mermaid 源文件渲染为图片
type DiagramRenderer interface {
	Render(ctx context.Context, inPath, outPath string) error
}

// Tool 已知的外部工具
type Tool struct {
	Name    string `json:"name" yaml:"name"`
	Bin     string `json:"bin" yaml:"bin"`
	Purpose string `json:"purpose" yaml:"purpose"`
	Install string `json:"install" yaml:"install"`
	// Enables 对应的命令行开关
	Enables string `json:"enables" yaml:"enables"`
}

// Status 工具的可用状态
type Status struct {
	Tool
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Available bool   `json:"available" yaml:"available"`
}

// Known 返回配置中的外部工具，按名称排序
func Known(cfg configs.ToolsConfig) []Tool {
	ts := []Tool{
		{Name: "radon", Bin: cfg.Radon.Bin, Purpose: "Python cyclomatic complexity and maintainability index", Install: cfg.Radon.Install, Enables: "--complexity"},
		{Name: "bandit", Bin: cfg.Bandit.Bin, Purpose: "Python security scan", Install: cfg.Bandit.Install, Enables: "--security"},
		{Name: "mermaid-cli", Bin: cfg.Mermaid.Bin, Purpose: "render architecture.png from mermaid", Install: cfg.Mermaid.Install, Enables: "architecture.png"},
		{Name: "pylint", Bin: cfg.Pylint.Bin, Purpose: "Python lint", Install: cfg.Pylint.Install, Enables: "--lint"},
		{Name: "flake8", Bin: cfg.Flake8.Bin, Purpose: "Python style and error checks", Install: cfg.Flake8.Install, Enables: "--lint"},
		{Name: "eslint", Bin: cfg.ESLint.Bin, Purpose: "JavaScript/TypeScript lint", Install: cfg.ESLint.Install, Enables: "--lint"},
		{Name: "git", Bin: "git", Purpose: "optional; history is read in-process", Install: "https://git-scm.com/downloads", Enables: "contributors"},
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })
	return ts
}

// Check 检查每个工具是否可执行
func Check(ts []Tool) []Status {
	out := make([]Status, 0, len(ts))
	for _, t := range ts {
		p, err := LookPath(t.Bin)
		out = append(out, Status{Tool: t, Path: p, Available: err == nil})
	}
	return out
}

// Require 查找工具，找不到时返回 MissingToolError
func Require(bin, install string) (string, error) {
	p, err := LookPath(bin)
	if err != nil {
		return "", &MissingToolError{Tool: bin, Install: install}
	}
	return p, nil
}

// LookPath 先查 PATH，再查 pip --user 与 npm 全局安装常用的目录
func LookPath(bin string) (string, error) {
	p, err := exec.LookPath(bin)
	if err == nil {
		return p, nil
	}
	for _, dir := range extraBinDirs() {
		for _, name := range candidateNames(bin) {
			if isExecutable(name, dir) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return "", err
}

func extraBinDirs() []string {
	var dirs []string
	if base := os.Getenv("PYTHONUSERBASE"); base != "" {
		dirs = append(dirs, filepath.Join(base, "bin"))
	}
	if prefix := os.Getenv("npm_config_prefix"); prefix != "" {
		dirs = append(dirs, filepath.Join(prefix, "bin"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"))
		if runtime.GOOS == "windows" {
			dirs = append(dirs, filepath.Join(home, "AppData", "Roaming", "npm"))
		}
	}
	return dirs
}

func candidateNames(bin string) []string {
	if runtime.GOOS != "windows" {
		return []string{bin}
	}
	return []string{bin + ".exe", bin + ".cmd", bin + ".bat", bin}
}

func isExecutable(name, dir string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil || info.IsDir() {
		return false
	}
	// Windows 按后缀判断，其它平台检查可执行位
	if runtime.GOOS == "windows" {
		lower := strings.ToLower(name)
		return strings.HasSuffix(lower, ".exe") || strings.HasSuffix(lower, ".bat") || strings.HasSuffix(lower, ".cmd")
	}
	return info.Mode()&0o111 != 0
}
