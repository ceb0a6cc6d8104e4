package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/tools"
	"github.com/yeisme/smartrepo/pkg/utils/log"
)

var (
	// ErrProjectNotFound 项目路径不存在
	ErrProjectNotFound = errors.New("project path does not exist")
	// ErrNotDirectory 项目路径不是目录
	ErrNotDirectory = errors.New("project path is not a directory")
	// ErrRequirementsExist requirements.txt 已存在且未指定 --force
	ErrRequirementsExist = errors.New("file already exists, use --force to overwrite")
)

// IsFatal 输出写入失败和根目录错误会中止整个命令
func IsFatal(err error) bool {
	return errors.Is(err, generator.ErrOutputWrite) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrNotDirectory)
}

// ErrorChain 展开错误链，每层一行，用于 verbose 输出
// 每解开一层缩进加深一级，errors.Join 的每个分支从下一级开始各自展开
func ErrorChain(err error) []string {
	var lines []string
	var walk func(err error, depth int)
	walk = func(err error, depth int) {
		for err != nil {
			lines = append(lines, strings.Repeat("  ", depth)+fmt.Sprintf("%T: %v", err, err))
			if joined, ok := err.(interface{ Unwrap() []error }); ok {
				for _, e := range joined.Unwrap() {
					walk(e, depth+1)
				}
				return
			}
			err = errors.Unwrap(err)
			depth++
		}
	}
	walk(err, 0)
	return lines
}

// logEnrichmentError 缺少工具时以 error 级别给出安装命令，其他错误为 warn
func logEnrichmentError(logger log.Logger, step string, err error) {
	if mt, ok := tools.IsMissingTool(err); ok {
		logger.Error().Str("step", step).Str("tool", mt.Tool).Str("install", mt.Install).
			Msgf("%s skipped: %v", step, mt)
		return
	}
	logger.Warn().Err(err).Str("step", step).Msgf("%s skipped", step)
}
