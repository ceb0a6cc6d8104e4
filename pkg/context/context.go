// Package context 持有一次命令执行所需的配置、日志和 viper 实例
package context

import (
	"context"

	"github.com/spf13/viper"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/utils/log"
)

// GlobalFlags 根命令的全局标志
type GlobalFlags struct {
	ConfigPath string
	Debug      bool
	Quiet      bool
	LogJSON    bool
}

// SmartRepoContext 命令执行上下文
type SmartRepoContext struct {
	context.Context
	Config *configs.Config // 应用配置
	Logger log.Logger      // 日志记录器
	Viper  *viper.Viper    // 原始配置，供 config 子命令使用
}

// InitSmartRepoContext 加载配置并初始化日志；命令行标志覆盖配置文件
func InitSmartRepoContext(flags GlobalFlags, verbose bool) (*SmartRepoContext, error) {
	ctx := context.Background()
	config, v, err := configs.LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if flags.Debug {
		config.App.Debug = true
	}
	if verbose {
		config.App.Verbose = true
	}
	if flags.Quiet {
		config.App.Quiet = true
	}
	if flags.LogJSON {
		config.Log.JSON = true
	}

	logger := log.InitLogger(ctx, &config.Log, &config.App)

	return &SmartRepoContext{
		Context: ctx,
		Config:  config,
		Logger:  logger,
		Viper:   v,
	}, nil
}

// WithContext 返回替换了底层 context 的副本，用于信号取消
func (c *SmartRepoContext) WithContext(ctx context.Context) *SmartRepoContext {
	cp := *c
	cp.Context = ctx
	return &cp
}
