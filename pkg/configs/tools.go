package configs

import "github.com/spf13/viper"

// ToolsConfig 外部工具配置
type ToolsConfig struct {
	Radon   ExternalTool `mapstructure:"radon"`   // Python 圈复杂度
	Bandit  ExternalTool `mapstructure:"bandit"`  // Python 安全扫描
	Pylint  ExternalTool `mapstructure:"pylint"`  // Python 静态检查
	Flake8  ExternalTool `mapstructure:"flake8"`  // Python 风格与错误检查
	ESLint  ExternalTool `mapstructure:"eslint"`  // JavaScript/TypeScript 静态检查
	Mermaid ExternalTool `mapstructure:"mermaid"` // mermaid 图渲染
	Timeout int          `mapstructure:"timeout"` // 单次调用超时，秒
}

// ExternalTool 单个外部工具
type ExternalTool struct {
	Bin     string `mapstructure:"bin"`     // 可执行文件名或路径
	Install string `mapstructure:"install"` // 安装命令
}

func setToolsConfigDefaults(v *viper.Viper) {
	v.SetDefault("tools.radon.bin", "radon")
	v.SetDefault("tools.radon.install", "pip install radon")
	v.SetDefault("tools.bandit.bin", "bandit")
	v.SetDefault("tools.bandit.install", "pip install bandit")
	v.SetDefault("tools.pylint.bin", "pylint")
	v.SetDefault("tools.pylint.install", "pip install pylint")
	v.SetDefault("tools.flake8.bin", "flake8")
	v.SetDefault("tools.flake8.install", "pip install flake8")
	v.SetDefault("tools.eslint.bin", "eslint")
	v.SetDefault("tools.eslint.install", "npm install -g eslint")
	v.SetDefault("tools.mermaid.bin", "mmdc")
	v.SetDefault("tools.mermaid.install", "npm install -g @mermaid-js/mermaid-cli")
	v.SetDefault("tools.timeout", 60)
}
