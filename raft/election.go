package raft

import (
	"errors"

	"github.com/xmh1011/go-raft-actor/param"
)

// electionRound 是一次选举的计票器。
// 它被作废后不会被销毁，仍在路上的投票响应到达时发现 active 为 false 就直接忽略。
type electionRound struct {
	term        uint64
	clusterSize int
	active      bool
	granted     int
}

// newElectionRound 创建一个新的计票器，候选人自己的一票已经计入。
func newElectionRound(term uint64, clusterSize int) *electionRound {
	return &electionRound{
		term:        term,
		clusterSize: clusterSize,
		active:      true,
		granted:     1,
	}
}

// disable 作废本轮选举。
func (e *electionRound) disable() {
	e.active = false
}

// grant 记录一张赞成票，返回是否已经获得多数。
func (e *electionRound) grant() bool {
	if !e.active {
		return false
	}
	e.granted++
	return e.won()
}

// won 判断赞成票是否严格超过集群的一半。
func (e *electionRound) won() bool {
	return e.granted*2 > e.clusterSize
}

// startElection 是选举定时器的回调。
// 节点转为 Candidate，任期加一并投票给自己，持久化之后向所有 peer 广播 RequestVote。
func (r *Raft) startElection() {
	if r.role == param.Leader {
		return
	}

	// 1. 初始化候选人状态：更新任期、投票给自己并持久化。
	// 如果持久化失败，则无法安全地进行选举。
	r.role = param.Candidate
	r.currentTerm++
	r.votedFor = r.id
	r.leaderID = param.NoVote
	if err := r.persistState(); err != nil {
		return
	}
	r.resetElectionTimer()

	// 2. 作废上一轮选举，开始新一轮计票。
	if r.round != nil {
		r.round.disable()
	}
	round := newElectionRound(r.currentTerm, r.clusterSize())
	r.round = round

	// 3. 获取用于投票请求的日志信息，确保日志旧的候选人无法当选。
	lastIndex, lastTerm, err := r.lastLogInfo()
	if err != nil {
		return
	}
	r.logger.Infof("[Election] Node %d starts election for term %d (lastIndex=%d, lastTerm=%d)", r.id, r.currentTerm, lastIndex, lastTerm)

	// 单节点集群只靠自己的一票就能当选。
	if round.won() {
		round.disable()
		r.becomeLeader()
		return
	}

	// 4. 向所有 peer 广播投票请求，响应经由本轮的计票器处理。
	args := param.NewRequestVoteArgs(r.currentTerm, r.id, lastIndex, lastTerm)
	for _, peerID := range r.peerIDs {
		r.proxies[peerID].requestVote(args, func(reply *param.RequestVoteReply, err error) {
			r.handleVoteReply(round, peerID, reply, err)
		})
	}
}

// handleVoteReply 处理一张选票。round 已被作废时直接忽略。
func (r *Raft) handleVoteReply(round *electionRound, peerID int, reply *param.RequestVoteReply, err error) {
	if !round.active {
		return
	}
	if err != nil {
		r.logger.Debugf("[Election] Node %d got no vote response from node %d: %v", r.id, peerID, err)
		return
	}

	if reply.VoteGranted {
		r.logger.Infof("[Election] Node %d received a vote from node %d for term %d", r.id, peerID, round.term)
		if round.grant() {
			round.disable()
			r.becomeLeader()
		}
		return
	}

	if reply.Term > r.currentTerm {
		r.logger.Infof("[Election] Node %d found higher term %d from peer %d, becomes Follower", r.id, reply.Term, peerID)
		round.disable()
		_ = r.stepDown(reply.Term)
	}
}

// becomeLeader 封装了当选为 Leader 后的状态转换逻辑。
// 新 Leader 会追加一条记录成员信息的 Configuration 条目，它在本任期内提交后，之前任期的条目也随之提交。
func (r *Raft) becomeLeader() {
	r.logger.Infof("[Election] Node %d elected as Leader for term %d", r.id, r.currentTerm)
	r.role = param.Leader
	r.leaderID = r.id
	r.round = nil
	r.electionTimer.stop()

	// nextIndex 指向 Configuration 条目，第一轮心跳就会把它带给日志一致的 Follower。
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		r.storageFailure("last index", err)
		return
	}
	r.initLeaderState(lastIndex)
	if err := r.appendConfiguration(); err != nil {
		return
	}
	if err := r.advanceCommitIndex(); err != nil {
		return
	}

	// 心跳立即发出一次，之后周期性发送。
	r.onHeartbeat()
}

// initLeaderState 初始化每个 peer 的 nextIndex 和 matchIndex。
func (r *Raft) initLeaderState(lastIndex uint64) {
	r.nextIndex = make(map[int]uint64, len(r.peerIDs))
	r.matchIndex = make(map[int]uint64, len(r.peerIDs))
	for _, peerID := range r.peerIDs {
		r.nextIndex[peerID] = lastIndex + 1
		r.matchIndex[peerID] = 0
	}
}

// handleRequestVote 是投票请求在事件循环中的处理逻辑。
func (r *Raft) handleRequestVote(args *param.RequestVoteArgs, reply *param.RequestVoteReply) error {
	reply.Term = r.currentTerm
	reply.VoteGranted = false

	// 如果对方的任期低于自己，这是一个过时的请求，直接拒绝。
	if args.Term < r.currentTerm {
		r.logger.Debugf("[RequestVote] Node %d rejects candidate %d: term %d < %d", r.id, args.CandidateID, args.Term, r.currentTerm)
		return ErrStaleTerm
	}

	// 如果对方的任期高于自己，则先转为该任期的 Follower。
	if args.Term > r.currentTerm {
		if err := r.stepDown(args.Term); err != nil {
			return err
		}
	}

	// 每个任期最多投出一票，且候选人的日志必须至少和自己一样新。
	if r.votedFor == param.NoVote {
		upToDate, err := r.isLogUpToDate(args.LastLogIndex, args.LastLogTerm)
		if err != nil {
			return err
		}
		if upToDate {
			if err := r.grantVote(args.CandidateID); err != nil {
				return err
			}
		} else {
			r.logger.Infof("[RequestVote] Node %d denying vote for term %d to candidate %d: log is not up to date", r.id, r.currentTerm, args.CandidateID)
		}
	}

	reply.Term = r.currentTerm
	reply.VoteGranted = r.votedFor == args.CandidateID
	return nil
}

// isLogUpToDate 检查候选人的日志是否至少和本节点一样新。
// 任期号大的日志更新；任期号相同时，索引更大或相等的更新。
func (r *Raft) isLogUpToDate(candidateLastIndex, candidateLastTerm uint64) (bool, error) {
	localLastIndex, localLastTerm, err := r.lastLogInfo()
	if err != nil {
		return false, err
	}
	if candidateLastTerm != localLastTerm {
		return candidateLastTerm > localLastTerm, nil
	}
	return candidateLastIndex >= localLastIndex, nil
}

// grantVote 记录投票并持久化，然后重启选举定时器。
func (r *Raft) grantVote(candidateID int) error {
	r.logger.Infof("[RequestVote] Node %d granting vote for term %d to candidate %d", r.id, r.currentTerm, candidateID)
	r.votedFor = candidateID
	if err := r.persistState(); err != nil {
		return err
	}
	r.resetElectionTimer()
	return nil
}

// isRejection 判断错误是否只是协议层面的拒绝。
func isRejection(err error) bool {
	return errors.Is(err, ErrStaleTerm) || errors.Is(err, ErrLogInconsistency)
}
