package raft

import (
	"encoding/json"

	"github.com/xmh1011/go-raft-actor/param"
)

// onHeartbeat 是 Leader 心跳定时器的回调。
// 每次触发都向所有 peer 发送 AppendEntries：没有新日志时就是心跳，有新日志时顺带复制，然后重新计时。
func (r *Raft) onHeartbeat() {
	if r.role != param.Leader {
		return
	}
	for _, peerID := range r.peerIDs {
		if err := r.replicateTo(peerID); err != nil {
			return
		}
	}
	r.heartbeatTimer.reset(r.cfg.HeartbeatInterval, r.onHeartbeat)
}

// replicateTo 为单个 peer 构造 AppendEntries 并交给它的 peerProxy 异步发送。
func (r *Raft) replicateTo(peerID int) error {
	args, err := r.prepareAppendEntriesArgs(peerID)
	if err != nil {
		return err
	}
	r.proxies[peerID].appendEntries(args, func(reply *param.AppendEntriesReply, err error) {
		r.handleAppendEntriesReply(peerID, args, reply, err)
	})
	return nil
}

// prepareAppendEntriesArgs 负责构建发送给对等节点的 AppendEntries RPC 参数。
// 条目从 nextIndex 开始，最多 MaxEntriesPerAppend 条。
func (r *Raft) prepareAppendEntriesArgs(peerID int) (*param.AppendEntriesArgs, error) {
	next := max(r.nextIndex[peerID], 1)
	prevIndex := next - 1
	prevTerm, err := r.termAt(prevIndex)
	if err != nil {
		return nil, err
	}
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return nil, r.storageFailure("last index", err)
	}

	var entries []param.LogEntry
	for index := next; index <= lastIndex && len(entries) < r.cfg.MaxEntriesPerAppend; index++ {
		entry, err := r.store.Get(index)
		if err != nil {
			return nil, r.storageFailure("get", err)
		}
		entries = append(entries, *entry)
	}
	return param.NewAppendEntriesArgs(r.currentTerm, r.id, prevIndex, prevTerm, r.commitIndex, entries), nil
}

// handleAppendEntriesReply 负责处理从对等节点返回的 AppendEntries 响应。
func (r *Raft) handleAppendEntriesReply(peerID int, args *param.AppendEntriesArgs, reply *param.AppendEntriesReply, err error) {
	if err != nil {
		// 不可达的 peer 在下一次心跳时重试。
		r.logger.Debugf("[Log Replication] Node %d got no AppendEntries response from node %d: %v", r.id, peerID, err)
		return
	}
	if reply.Term > r.currentTerm {
		r.logger.Infof("[Log Replication] Node %d found higher term %d from peer %d, stepping down", r.id, reply.Term, peerID)
		_ = r.stepDown(reply.Term)
		return
	}
	// 已经不是发出请求时的 Leader 了，响应作废。
	if r.role != param.Leader || args.Term != r.currentTerm {
		return
	}

	if !reply.Success {
		r.handleFailedAppendEntries(peerID, args)
		return
	}
	r.handleSuccessfulAppendEntries(peerID, args)
	_ = r.advanceCommitIndex()
}

// handleSuccessfulAppendEntries 在收到成功的 AppendEntries 响应后更新 Leader 的状态。
func (r *Raft) handleSuccessfulAppendEntries(peerID int, args *param.AppendEntriesArgs) {
	match := args.PrevLogIndex + uint64(len(args.Entries))
	if match > r.matchIndex[peerID] {
		r.matchIndex[peerID] = match
	}
	r.nextIndex[peerID] = r.matchIndex[peerID] + 1
}

// handleFailedAppendEntries 在日志不匹配时把 nextIndex 回退一格，下一次心跳用更早的 prevIndex 重试。
// 只有响应对应当前的 nextIndex 时才回退，避免重复的失败响应把它退得过远。
func (r *Raft) handleFailedAppendEntries(peerID int, args *param.AppendEntriesArgs) {
	if r.nextIndex[peerID] == args.PrevLogIndex+1 && r.nextIndex[peerID] > 1 {
		r.nextIndex[peerID]--
		r.logger.Debugf("[Log Replication] Node %d log mismatch on node %d, nextIndex -> %d", r.id, peerID, r.nextIndex[peerID])
	}
}

// advanceCommitIndex 检查 Leader 是否可以推进其 commitIndex。
// 计算已在集群多数节点上复制的最高日志索引，并且只有当前任期的日志才可以通过这种方式被提交。
func (r *Raft) advanceCommitIndex() error {
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return r.storageFailure("last index", err)
	}
	for n := lastIndex; n > r.commitIndex; n-- {
		term, err := r.termAt(n)
		if err != nil {
			return err
		}
		if term < r.currentTerm {
			// 更早的条目任期只会更小
			break
		}
		if term == r.currentTerm && r.isReplicatedByMajority(n) {
			r.logger.Infof("[Log Replication] Node %d advances commitIndex %d -> %d", r.id, r.commitIndex, n)
			r.commitIndex = n
			r.scheduleApply()
			break
		}
	}
	return nil
}

// isReplicatedByMajority 判断一个日志索引是否已经被多数节点复制，Leader 自己算一票。
func (r *Raft) isReplicatedByMajority(index uint64) bool {
	count := 1
	for _, peerID := range r.peerIDs {
		if r.matchIndex[peerID] >= index {
			count++
		}
	}
	return count*2 > r.clusterSize()
}

// appendConfiguration 追加一条记录当前成员的 Configuration 条目。
func (r *Raft) appendConfiguration() error {
	payload, err := json.Marshal(r.members)
	if err != nil {
		// map[int]string 总能被编码
		panic(err)
	}
	if err := r.store.Append(param.NewConfigurationEntry(r.currentTerm, payload)); err != nil {
		return r.storageFailure("append", err)
	}
	return nil
}

// handleAppendEntries 是 AppendEntries 在事件循环中的处理逻辑。
// 任期检查: 如果请求的任期号小于自己的当前任期，则拒绝；否则转为 Follower 并记录 Leader。
// 一致性检查: 检查 PrevLogIndex 和 PrevLogTerm 是否与自己的日志匹配。
// 日志合并: 截断冲突的条目后追加新条目，已存在且任期相同的条目保持不变。
// 更新 CommitIndex: 根据 Leader 发来的 LeaderCommit 推进自己的 commitIndex。
func (r *Raft) handleAppendEntries(args *param.AppendEntriesArgs, reply *param.AppendEntriesReply) error {
	reply.Term = r.currentTerm
	reply.Success = false

	if args.Term < r.currentTerm {
		r.logger.Debugf("[AppendEntries] Node %d rejects leader %d: term %d < %d", r.id, args.LeaderID, args.Term, r.currentTerm)
		return ErrStaleTerm
	}

	if err := r.stepDown(args.Term); err != nil {
		return err
	}
	r.leaderID = args.LeaderID
	reply.Term = r.currentTerm

	if err := r.checkLogConsistency(args); err != nil {
		return err
	}
	if err := r.mergeEntries(args); err != nil {
		return err
	}
	r.updateFollowerCommitIndex(args)

	reply.Success = true
	return nil
}

// checkLogConsistency 负责检查本地日志在 PrevLogIndex 处是否与 Leader 一致。
func (r *Raft) checkLogConsistency(args *param.AppendEntriesArgs) error {
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return r.storageFailure("last index", err)
	}
	if args.PrevLogIndex > lastIndex {
		r.logger.Debugf("[AppendEntries] Node %d log too short: prevIndex %d > lastIndex %d", r.id, args.PrevLogIndex, lastIndex)
		return ErrLogInconsistency
	}
	term, err := r.termAt(args.PrevLogIndex)
	if err != nil {
		return err
	}
	if term != args.PrevLogTerm {
		r.logger.Debugf("[AppendEntries] Node %d term mismatch at %d: have %d, leader has %d", r.id, args.PrevLogIndex, term, args.PrevLogTerm)
		return ErrLogInconsistency
	}
	return nil
}

// mergeEntries 把 Leader 发来的条目合并到本地日志。
// 遇到任期不同的条目时，从该位置截断后追加剩余的条目。
func (r *Raft) mergeEntries(args *param.AppendEntriesArgs) error {
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return r.storageFailure("last index", err)
	}
	for i, entry := range args.Entries {
		index := args.PrevLogIndex + uint64(i) + 1
		if index > lastIndex {
			return r.appendEntries(args.Entries[i:])
		}
		term, err := r.termAt(index)
		if err != nil {
			return err
		}
		if term != entry.Term {
			r.logger.Infof("[AppendEntries] Node %d truncating conflicting log from index %d", r.id, index)
			if err := r.store.TruncateFrom(index); err != nil {
				return r.storageFailure("truncate", err)
			}
			return r.appendEntries(args.Entries[i:])
		}
	}
	return nil
}

func (r *Raft) appendEntries(entries []param.LogEntry) error {
	if err := r.store.Append(entries...); err != nil {
		return r.storageFailure("append", err)
	}
	return nil
}

// updateFollowerCommitIndex 根据 Leader 发来的 leaderCommit 更新 Follower 的 commitIndex。
// 只能提交刚刚确认与 Leader 一致的前缀，commitIndex 不会后退。
func (r *Raft) updateFollowerCommitIndex(args *param.AppendEntriesArgs) {
	matched := args.PrevLogIndex + uint64(len(args.Entries))
	commit := max(r.commitIndex, min(args.LeaderCommit, matched))
	if commit > r.commitIndex {
		r.commitIndex = commit
	}
	if r.commitIndex > r.lastApplied {
		r.scheduleApply()
	}
}

// handlePropose 是客户端命令在事件循环中的处理逻辑。只有 Leader 接受命令，
// 新条目会在下一次心跳时复制给 Follower。
func (r *Raft) handlePropose(args *param.ProposeArgs, reply *param.ProposeReply) error {
	if r.role != param.Leader {
		reply.IsLeader = false
		reply.LeaderHint = r.leaderID
		return nil
	}

	payload := append([]byte(nil), args.Command...)
	if err := r.store.Append(param.NewLogEntry(r.currentTerm, payload)); err != nil {
		return r.storageFailure("append", err)
	}
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return r.storageFailure("last index", err)
	}
	r.logger.Infof("[Client] Leader %d proposed new log entry at index %d", r.id, lastIndex)

	// 单节点集群中追加即提交。
	if err := r.advanceCommitIndex(); err != nil {
		return err
	}

	reply.Index = lastIndex
	reply.Term = r.currentTerm
	reply.IsLeader = true
	reply.LeaderHint = r.id
	return nil
}
