// Package configs 提供应用程序配置管理功能
package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 SMARTREPO_AI_API_KEY
const EnvPrefix = "SMARTREPO"

// Config 应用配置结构
type Config struct {
	Version string        `mapstructure:"version"`
	App     AppConfig     `mapstructure:"app"`
	Log     LogConfig     `mapstructure:"log"`
	Analyze AnalyzeConfig `mapstructure:"analyze"`
	Tools   ToolsConfig   `mapstructure:"tools"`
	AI      AIConfig      `mapstructure:"ai"`
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "1.0")
	setAppConfigDefaults(v)
	setLogConfigDefaults(v)
	setAnalyzeConfigDefaults(v)
	setToolsConfigDefaults(v)
	setAIConfigDefaults(v)
}

var (
	globalConfig *Config
	globalViper  *viper.Viper
)

// searchPaths 返回配置文件搜索路径
func searchPaths() []string {
	paths := []string{
		".",
		"./configs",
		"$HOME",
		"$HOME/.config",
		"$HOME/.config/smartrepo",
	}

	// Windows 特殊路径
	if runtime.GOOS == "windows" {
		paths = append(paths,
			"$USERPROFILE",
			"$APPDATA/smartrepo",
		)
	} else {
		paths = append(paths, "/etc/smartrepo")
	}
	return paths
}

// findConfigFile 尝试查找不同格式的配置文件
func findConfigFile() string {
	configNames := []string{".smartrepo", "smartrepo"}
	extensions := []string{"yaml", "yml", "json", "toml"}

	for _, path := range searchPaths() {
		for _, name := range configNames {
			for _, ext := range extensions {
				configFile := filepath.Join(path, name+"."+ext)

				// 展开环境变量
				if strings.Contains(configFile, "$") {
					configFile = os.ExpandEnv(configFile)
				}

				if _, err := os.Stat(configFile); err == nil {
					return configFile
				}
			}
		}
	}

	return ""
}

// NewViper 创建带默认值和环境变量绑定的 viper 实例
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadConfig 加载配置文件；configPath 为空时按搜索路径查找
func LoadConfig(configPath string) (*Config, *viper.Viper, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := NewViper()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}

	// 确保日志目录存在
	if config.Log.Mode == "file" || config.Log.Mode == "both" {
		logDir := filepath.Dir(config.Log.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	globalConfig = &config
	globalViper = v
	return &config, v, nil
}

// DefaultConfig 返回仅包含默认值的配置
func DefaultConfig() Config {
	var config Config
	// 默认值总能解析
	_ = NewViper().Unmarshal(&config)
	return config
}

// GetConfig 获取全局配置，未加载时返回默认配置
func GetConfig() *Config {
	if globalConfig == nil {
		config := DefaultConfig()
		return &config
	}
	return globalConfig
}

// GetViper 获取全局 viper 实例
func GetViper() *viper.Viper {
	if globalViper == nil {
		return NewViper()
	}
	return globalViper
}
