// Package log 初始化 smartrepo 的 zerolog 日志记录器
// 日志只写 stderr 和可选的轮转文件，stdout 留给摘要和 --json 输出
package log

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	xterm "github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yeisme/smartrepo/pkg/configs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 各包接收的日志记录器类型
type Logger = *zerolog.Logger

var globalLogger Logger

// stderr 控制台输出目标，测试中替换
var stderr io.Writer = os.Stderr

// InitLogger 按配置创建日志记录器并设为全局记录器
//
// 级别优先级：quiet > debug > verbose > log.level
// quiet 仍保留 error 级别，缺少外部工具的提示不会被吞掉
func InitLogger(ctx context.Context, config *configs.LogConfig, appConfig *configs.AppConfig) Logger {
	if config == nil {
		config = &configs.LogConfig{Level: "warn", Mode: "console"}
	}
	if appConfig == nil {
		appConfig = &configs.AppConfig{Name: "smartrepo"}
	}
	level := effectiveLevel(config, appConfig)
	zerolog.SetGlobalLevel(level)

	ctxBuilder := zerolog.New(outputFor(config)).Level(level).With().Timestamp()
	if appConfig.Debug || appConfig.Verbose {
		ctxBuilder = ctxBuilder.Str("app", appConfig.Name).Ctx(ctx)
	}
	if appConfig.Debug {
		ctxBuilder = ctxBuilder.Caller()
	}
	logger := ctxBuilder.Logger()

	globalLogger = &logger
	log.Logger = logger
	return &logger
}

func effectiveLevel(config *configs.LogConfig, appConfig *configs.AppConfig) zerolog.Level {
	switch {
	case appConfig.Quiet:
		return zerolog.ErrorLevel
	case appConfig.Debug:
		return zerolog.TraceLevel
	case appConfig.Verbose:
		// 被跳过的文件在 debug 级别
		return zerolog.DebugLevel
	default:
		return parseLogLevel(config.Level)
	}
}

// outputFor 根据 mode 组合控制台和文件输出，未知 mode 按 console 处理
func outputFor(config *configs.LogConfig) io.Writer {
	switch strings.ToLower(config.Mode) {
	case "file":
		return createFileWriter(config)
	case "both":
		return zerolog.MultiLevelWriter(createConsoleWriter(config.JSON), createFileWriter(config))
	default:
		return createConsoleWriter(config.JSON)
	}
}

// createConsoleWriter stderr 不是终端时关闭颜色
func createConsoleWriter(useJSON bool) io.Writer {
	if useJSON {
		return stderr
	}
	noColor := true
	if f, ok := stderr.(*os.File); ok {
		noColor = !xterm.IsTerminal(f.Fd())
	}
	return zerolog.ConsoleWriter{
		Out:        stderr,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
	}
}

// createFileWriter 使用 lumberjack 轮转日志文件，目录无法创建时退回 stderr
func createFileWriter(config *configs.LogConfig) io.Writer {
	path := config.FilePath
	if path == "" {
		path = filepath.Join(".smartrepo", "smartrepo.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stderr
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.MaxSize, // MB
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge, // days
		Compress:   true,
	}
}

// GetLogger 返回全局记录器，未初始化时按默认配置创建
func GetLogger() Logger {
	if globalLogger == nil {
		config := configs.GetConfig()
		return InitLogger(context.Background(), &config.Log, &config.App)
	}
	return globalLogger
}

// Nop 丢弃所有输出，测试中使用
func Nop() Logger {
	logger := zerolog.Nop()
	return &logger
}

func parseLogLevel(level string) zerolog.Level {
	if level == "warning" {
		return zerolog.WarnLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return l
}
