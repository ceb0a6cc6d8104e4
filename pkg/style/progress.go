package style

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress 文件处理进度；非终端输出时所有方法都是空操作
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress 创建进度条，total<=0 表示总数未知，显示计数和旋转符
func NewProgress(out io.Writer, total int, description string) *Progress {
	if !IsTerminal(out) {
		return &Progress{}
	}
	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
	return &Progress{bar: bar}
}

// Add 前进 n 步
func (p *Progress) Add(n int) {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Add(n)
}

// Describe 更新描述
func (p *Progress) Describe(description string) {
	if p == nil || p.bar == nil {
		return
	}
	p.bar.Describe(description)
}

// Finish 结束并清除进度条
func (p *Progress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
