package configs

import (
	"strings"

	"github.com/spf13/viper"
)

// AnalyzeConfig 项目分析配置
type AnalyzeConfig struct {
	OutputDir        string              `mapstructure:"output_dir"`
	Extensions       []ExtensionLanguage `mapstructure:"extensions"`
	IgnorePatterns   []string            `mapstructure:"ignore_patterns"`
	SkipHidden       bool                `mapstructure:"skip_hidden"`
	RespectGitignore bool                `mapstructure:"respect_gitignore"`
	SkipVendor       bool                `mapstructure:"skip_vendor"`
	SkipGenerated    bool                `mapstructure:"skip_generated"`
	MaxFileSize      int64               `mapstructure:"max_file_size"` // 字节，0 表示不限制
	Concurrency      int                 `mapstructure:"concurrency"`   // 0 表示使用 CPU 核数
	Complexity       bool                `mapstructure:"complexity"`
	Lint             bool                `mapstructure:"lint"`
	CoverageFile     string              `mapstructure:"coverage_file"` // 相对项目根目录，也可以是绝对路径
	Monorepo         bool                `mapstructure:"monorepo"`
	MonorepoDepth    int                 `mapstructure:"monorepo_depth"`
	CacheSize        int                 `mapstructure:"cache_size"` // watch 模式下的文件指标缓存条目数
	Prompt           PromptConfig        `mapstructure:"prompt"`
	Generators       GeneratorsConfig    `mapstructure:"generators"`
}

// ExtensionLanguage 扩展名到语言的映射项
type ExtensionLanguage struct {
	Ext      string `mapstructure:"ext" json:"ext" yaml:"ext" toml:"ext"`
	Language string `mapstructure:"language" json:"language" yaml:"language" toml:"language"`
}

// PromptConfig prompt-ready.md 的分块配置
type PromptConfig struct {
	MaxChunkChars int `mapstructure:"max_chunk_chars"`
	MaxKeywords   int `mapstructure:"max_keywords"`
}

// GeneratorsConfig 附加文档开关，四个核心文档始终生成
type GeneratorsConfig struct {
	DependencyGraph bool `mapstructure:"dependency_graph"`
	UML             bool `mapstructure:"uml"`
	Insights        bool `mapstructure:"insights"`
	Contributors    bool `mapstructure:"contributors"`
	HTML            bool `mapstructure:"html"`
	UsageExamples   bool `mapstructure:"usage_examples"`
	CallGraph       bool `mapstructure:"call_graph"`
}

// DefaultExtensions 默认支持的扩展名
func DefaultExtensions() []ExtensionLanguage {
	return []ExtensionLanguage{
		{Ext: ".py", Language: "Python"},
		{Ext: ".js", Language: "JavaScript"},
		{Ext: ".ts", Language: "TypeScript"},
		{Ext: ".jsx", Language: "React"},
		{Ext: ".tsx", Language: "React TypeScript"},
		{Ext: ".dart", Language: "Dart"},
		{Ext: ".rs", Language: "Rust"},
		{Ext: ".go", Language: "Go"},
		{Ext: ".java", Language: "Java"},
		{Ext: ".cpp", Language: "C++"},
		{Ext: ".c", Language: "C"},
		{Ext: ".php", Language: "PHP"},
		{Ext: ".rb", Language: "Ruby"},
		{Ext: ".swift", Language: "Swift"},
		{Ext: ".kt", Language: "Kotlin"},
	}
}

// DefaultIgnorePatterns 默认忽略的路径子串
func DefaultIgnorePatterns() []string {
	return []string{
		"node_modules",
		"__pycache__",
		".git",
		"venv",
		"env",
		"dist",
		"build",
		"target",
		".pytest_cache",
		".generated.",
		".min.js",
	}
}

// ExtensionMap 将扩展名列表转为小写扩展名到语言的映射
func (c AnalyzeConfig) ExtensionMap() map[string]string {
	m := make(map[string]string, len(c.Extensions))
	for _, e := range c.Extensions {
		ext := strings.ToLower(strings.TrimSpace(e.Ext))
		if ext == "" || e.Language == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m[ext] = e.Language
	}
	return m
}

func setAnalyzeConfigDefaults(v *viper.Viper) {
	v.SetDefault("analyze.output_dir", "smartrepo-analysis")
	v.SetDefault("analyze.extensions", DefaultExtensions())
	v.SetDefault("analyze.ignore_patterns", DefaultIgnorePatterns())
	v.SetDefault("analyze.skip_hidden", true)
	v.SetDefault("analyze.respect_gitignore", false)
	v.SetDefault("analyze.skip_vendor", false)
	v.SetDefault("analyze.skip_generated", false)
	v.SetDefault("analyze.max_file_size", 2*1024*1024)
	v.SetDefault("analyze.concurrency", 0)
	v.SetDefault("analyze.complexity", false)
	v.SetDefault("analyze.lint", false)
	v.SetDefault("analyze.coverage_file", "coverage.xml")
	v.SetDefault("analyze.monorepo", false)
	v.SetDefault("analyze.monorepo_depth", 2)
	v.SetDefault("analyze.cache_size", 4096)
	v.SetDefault("analyze.prompt.max_chunk_chars", 6000)
	v.SetDefault("analyze.prompt.max_keywords", 12)
	v.SetDefault("analyze.generators.dependency_graph", true)
	v.SetDefault("analyze.generators.uml", true)
	v.SetDefault("analyze.generators.insights", true)
	v.SetDefault("analyze.generators.contributors", true)
	v.SetDefault("analyze.generators.html", false)
	v.SetDefault("analyze.generators.usage_examples", true)
	v.SetDefault("analyze.generators.call_graph", true)
}
