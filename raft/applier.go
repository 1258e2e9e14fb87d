package raft

import (
	"github.com/xmh1011/go-raft-actor/param"
)

// scheduleApply 唤醒 applier。信号最多积压一个，重复调用不会排队。
func (r *Raft) scheduleApply() {
	select {
	case r.applyCh <- struct{}{}:
	default:
	}
}

// applyCommitted 把 (lastApplied, commitIndex] 中的条目依次交给状态机。
// 每轮最多应用 ApplyBatchSize 条，剩余的条目通过重新唤醒自己留到下一轮，
// 这样 applier 不会长时间占住事件循环。
func (r *Raft) applyCommitted() {
	applied := 0
	for r.lastApplied < r.commitIndex && applied < r.cfg.ApplyBatchSize {
		index := r.lastApplied + 1
		entry, err := r.store.Get(index)
		if err != nil {
			r.storageFailure("get", err)
			return
		}
		// Configuration 条目只对共识层有意义。
		if entry.Kind == param.EntryCommand {
			r.stateMachine.Apply(entry.Payload)
		}
		r.lastApplied = index
		applied++
	}
	if applied > 0 {
		r.logger.Debugf("[State Machine] Node %d applied %d entries, lastApplied=%d", r.id, applied, r.lastApplied)
	}
	if r.lastApplied < r.commitIndex {
		r.scheduleApply()
	}
}
