package hotload

import "time"

// debouncer 每次 arm 都把触发时间推迟 d；未 arm 时 C 返回 nil 通道，select 永远不会选中
type debouncer struct {
	d     time.Duration
	timer *time.Timer
}

func newDebouncer(d time.Duration) *debouncer {
	return &debouncer{d: d}
}

// arm 启动或重置定时器
func (b *debouncer) arm() {
	if b.timer == nil {
		b.timer = time.NewTimer(b.d)
		return
	}
	b.timer.Reset(b.d)
}

// C 定时器通道
func (b *debouncer) C() <-chan time.Time {
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}

// reset 定时器触发后调用
func (b *debouncer) reset() {
	b.timer = nil
}

func (b *debouncer) stop() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
