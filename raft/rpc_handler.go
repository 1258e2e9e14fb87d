package raft

import (
	"fmt"

	"github.com/xmh1011/go-raft-actor/param"
)

// RequestVote 是处理投票请求的 RPC 入口。
// 请求被投递到事件循环中执行，协议层面的拒绝以 (term, false) 的形式返回。
func (r *Raft) RequestVote(args *param.RequestVoteArgs, reply *param.RequestVoteReply) error {
	var handleErr error
	if err := r.call(func() { handleErr = r.handleRequestVote(args, reply) }); err != nil {
		return err
	}
	return r.rpcError(handleErr)
}

// AppendEntries 是处理日志复制和心跳的 RPC 入口。
func (r *Raft) AppendEntries(args *param.AppendEntriesArgs, reply *param.AppendEntriesReply) error {
	var handleErr error
	if err := r.call(func() { handleErr = r.handleAppendEntries(args, reply) }); err != nil {
		return err
	}
	return r.rpcError(handleErr)
}

// Propose 是客户端提交命令的 RPC 入口。
// 它只负责把命令追加到 Leader 的日志中，不等待命令被提交或应用。
func (r *Raft) Propose(args *param.ProposeArgs, reply *param.ProposeReply) error {
	var handleErr error
	if err := r.call(func() { handleErr = r.handlePropose(args, reply) }); err != nil {
		return err
	}
	return r.rpcError(handleErr)
}

// rpcError 把事件循环中的错误转换为 RPC 的返回值。
// 拒绝只是响应中的数据；存储错误意味着节点已经停止服务。
func (r *Raft) rpcError(err error) error {
	if err == nil || isRejection(err) {
		return nil
	}
	if IsStorageError(err) {
		return fmt.Errorf("%w: %v", ErrNodeStopped, err)
	}
	return err
}
