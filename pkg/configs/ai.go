package configs

import "github.com/spf13/viper"

// AIConfig 可选的 LLM 文件摘要配置
type AIConfig struct {
	APIKey   string `mapstructure:"api_key"` // 也可通过 SMARTREPO_AI_API_KEY 或 .env 提供
	Model    string `mapstructure:"model"`
	MaxFiles int    `mapstructure:"max_files"` // 最多摘要的文件数
	MaxChars int    `mapstructure:"max_chars"` // 每个文件发送的最大字符数
}

// Enabled 是否配置了 API key
func (c AIConfig) Enabled() bool { return c.APIKey != "" }

func setAIConfigDefaults(v *viper.Viper) {
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.max_files", 10)
	v.SetDefault("ai.max_chars", 8000)
}
