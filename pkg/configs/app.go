package configs

import (
	"github.com/spf13/viper"
)

// AppConfig 应用配置
type AppConfig struct {
	Name    string        `mapstructure:"name"`
	Debug   bool          `mapstructure:"debug"`
	Verbose bool          `mapstructure:"verbose"`
	Quiet   bool          `mapstructure:"quiet"`
	Hotload HotloadConfig `mapstructure:"hotload"`
}

// HotloadConfig 监听模式（analyze --watch）配置
type HotloadConfig struct {
	Filter         []string `mapstructure:"filter"`    // 只关注匹配的文件，空表示全部
	Recursive      bool     `mapstructure:"recursive"`
	Debounce       int      `mapstructure:"debounce"`        // 防抖时间，毫秒
	IgnorePatterns []string `mapstructure:"ignore_patterns"` // 忽略的文件模式
	GitIgnore      bool     `mapstructure:"git_ignore"`      // 是否使用 .gitignore 文件
}

func setAppConfigDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smartrepo")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.verbose", false)
	v.SetDefault("app.quiet", false)

	// 空列表表示所有文件
	v.SetDefault("app.hotload.filter", []string{})
	v.SetDefault("app.hotload.recursive", true)
	v.SetDefault("app.hotload.debounce", 500)
	v.SetDefault("app.hotload.ignore_patterns", []string{
		"*.tmp",
		"*.swp",
		"*.log",
		".git/*",
		"node_modules/*",
		"smartrepo-analysis/*",
	})
	v.SetDefault("app.hotload.git_ignore", true)
}
