package raft

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleTerm 表示请求的任期低于本节点的当前任期。它作为数据返回给对方，不是故障。
	ErrStaleTerm = errors.New("raft: stale term")
	// ErrLogInconsistency 表示 AppendEntries 的一致性检查失败，Leader 需要用更早的 prevIndex 重试。
	ErrLogInconsistency = errors.New("raft: log inconsistency")
	// ErrPeerUnreachable 表示在传输层未能从 peer 得到响应，共识逻辑把它当作“本轮无响应”。
	ErrPeerUnreachable = errors.New("raft: peer unreachable")
	// ErrNodeStopped 表示节点已经停止，不再处理任何请求。
	ErrNodeStopped = errors.New("raft: node stopped")
)

// StorageError 包装了日志或状态存储的任何失败。
// 存储状态未知时继续运行会破坏安全性，所以节点遇到它会立即停止。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("raft: storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError 判断 err 链中是否包含 StorageError。
func IsStorageError(err error) bool {
	var serr *StorageError
	return errors.As(err, &serr)
}
