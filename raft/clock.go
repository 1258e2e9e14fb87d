package raft

import (
	"sort"
	"sync"
	"time"
)

// Clock 是节点获取时间和注册定时器的唯一入口。
type Clock interface {
	Now() time.Time
	// AfterFunc 在 d 之后于另一个 goroutine 中调用 f。
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer 是一个可以取消的定时器。
type Timer interface {
	// Stop 阻止尚未触发的定时器触发，返回是否成功阻止。
	Stop() bool
}

type realClock struct{}

// NewRealClock 返回基于 time 包的时钟。
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock 是一个只在 Advance 时前进的时钟，用于确定性地驱动选举和心跳。
// 到期的回调在调用 Advance 的 goroutine 中按到期时间顺序同步执行。
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	when  time.Time
	f     func()
}

// NewManualClock 创建一个从固定时间点开始的 ManualClock。
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance 把时间推进 d，并触发期间到期的所有定时器。
// 回调中新注册且在目标时间之前到期的定时器同样会被触发。
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.popDueLocked(target)
		if next == nil {
			break
		}
		c.now = next.when
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Pending 返回尚未触发也未取消的定时器数量。
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// popDueLocked 取出最早到期且不晚于 target 的定时器。
func (c *ManualClock) popDueLocked(target time.Time) *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].when.Before(c.timers[j].when)
	})
	first := c.timers[0]
	if first.when.After(target) {
		return nil
	}
	c.timers = c.timers[1:]
	return first
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}
