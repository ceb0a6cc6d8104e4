// Package executor 运行 radon、bandit、mmdc 等外部分析工具
//
// 每次调用都受超时约束，失败时返回 *ToolError，保留工具名、退出码和清理过的 stderr
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrTimeout 工具运行超过限定时间，可用 errors.Is 判断
var ErrTimeout = errors.New("tool timed out")

// maxStderrLines 错误信息中保留的 stderr 行数
const maxStderrLines = 8

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// ToolError 外部工具运行失败
type ToolError struct {
	Tool    string
	Args    []string
	Stderr  string
	Timeout time.Duration // 非零表示因超时被终止
	Err     error
}

func (e *ToolError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s: timed out after %s", e.Tool, e.Timeout)
	}
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if code := e.ExitCode(); code >= 0 {
		msg = fmt.Sprintf("%s %s: exit status %d", e.Tool, strings.Join(e.Args, " "), code)
	}
	if s := e.Tail(); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is 超时错误同时匹配 ErrTimeout
func (e *ToolError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout > 0
}

// ExitCode 进程退出码，进程未启动或被信号终止时为 -1
func (e *ToolError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Tail stderr 去掉颜色码后的最后几行
func (e *ToolError) Tail() string {
	s := strings.TrimSpace(ansiPattern.ReplaceAllString(e.Stderr, ""))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxStderrLines {
		lines = lines[len(lines)-maxStderrLines:]
	}
	for i, l := range lines {
		lines[i] = "  " + strings.TrimRight(l, " \t\r")
	}
	return strings.Join(lines, "\n")
}

// Invocation 一次工具调用，不可复用
type Invocation struct {
	cmd     *exec.Cmd
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// Tool 创建工具调用，timeout<=0 时只受 ctx 控制
func Tool(ctx context.Context, timeout time.Duration, bin string, args ...string) *Invocation {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	return &Invocation{
		cmd:     exec.CommandContext(ctx, bin, args...),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Run 分别捕获 stdout 和 stderr，失败时两者也会返回
func (inv *Invocation) Run() (stdout, stderr string, err error) {
	defer inv.cancel()
	var outBuf, errBuf bytes.Buffer
	inv.cmd.Stdout = &outBuf
	inv.cmd.Stderr = &errBuf
	err = inv.check(inv.cmd.Run(), errBuf.String())
	return outBuf.String(), errBuf.String(), err
}

// Output 只返回 stdout
func (inv *Invocation) Output() (string, error) {
	stdout, _, err := inv.Run()
	return stdout, err
}

// CombinedOutput stdout 与 stderr 合并，mmdc 把进度和错误都写在一起
func (inv *Invocation) CombinedOutput() (string, error) {
	defer inv.cancel()
	out, err := inv.cmd.CombinedOutput()
	return string(out), inv.check(err, string(out))
}

func (inv *Invocation) check(err error, stderr string) error {
	if err == nil {
		return nil
	}
	te := &ToolError{
		Tool:   filepath.Base(inv.cmd.Path),
		Args:   inv.cmd.Args[1:],
		Stderr: stderr,
		Err:    err,
	}
	if inv.timeout > 0 && errors.Is(inv.ctx.Err(), context.DeadlineExceeded) {
		te.Timeout = inv.timeout
	}
	return te
}
