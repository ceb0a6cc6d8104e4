// Package project 实现 smartrepo 的命令逻辑：分析流水线、依赖清单生成和结果浏览
package project

import (
	"github.com/yeisme/smartrepo/pkg/context"
	"github.com/yeisme/smartrepo/pkg/utils/log"
)

// loggerOf 命令上下文中的 logger，未初始化时使用全局 logger
func loggerOf(ctx *context.SmartRepoContext) log.Logger {
	if ctx == nil || ctx.Logger == nil {
		return log.GetLogger()
	}
	return ctx.Logger
}
