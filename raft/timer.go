package raft

import "time"

// loopTimer 是一个在事件循环中触发的定时器。
// 每次 reset/stop 都会增加代数，已经在路上的旧触发因为代数不匹配而被丢弃。
// 它只能在事件循环中使用。
type loopTimer struct {
	clock Clock
	post  func(func()) error
	gen   uint64
	timer Timer
}

func newLoopTimer(clock Clock, post func(func()) error) *loopTimer {
	return &loopTimer{clock: clock, post: post}
}

// reset 取消尚未触发的定时，并在 d 之后于事件循环中执行 fn。
func (t *loopTimer) reset(d time.Duration, fn func()) {
	t.stop()
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() {
		_ = t.post(func() {
			if t.gen == gen {
				t.timer = nil
				fn()
			}
		})
	})
}

// stop 取消定时器。
func (t *loopTimer) stop() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// armed 返回定时器当前是否处于等待触发的状态。
func (t *loopTimer) armed() bool {
	return t.timer != nil
}
