package raft

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/storage"
	"github.com/xmh1011/go-raft-actor/transport"
)

// eventQueueSize 是事件队列的缓冲长度。
const eventQueueSize = 256

// Raft 是集群中单个成员的共识状态机。
// 所有状态只由 Run 所在的事件循环 goroutine 读写：入站 RPC、peer 的响应、
// 定时器触发都被包装成闭包投递到 events 中串行执行。
type Raft struct {
	id      int
	members map[int]string // 固定的集群成员（包含自身）
	peerIDs []int          // 除自身外的成员，升序
	cfg     Config
	logger  *logrus.Entry
	rng     *rand.Rand

	// store 负责持久化 Raft 状态和日志信息
	store storage.Storage
	// stateMachine 应用层的状态机接口
	stateMachine storage.StateMachine
	// trans 负责网络通信，只被 peerProxy 使用
	trans   transport.Transport
	proxies map[int]*peerProxy

	// --- Raft 核心状态 ---
	currentTerm uint64
	votedFor    int
	role        param.Role
	leaderID    int // 当前已知的 Leader，NoVote 表示未知

	// --- 日志与状态机相关 ---
	commitIndex uint64
	lastApplied uint64

	// --- 选举相关 ---
	round          *electionRound
	electionTimer  *loopTimer
	heartbeatTimer *loopTimer

	// --- Leader 的易失性状态 ---
	nextIndex  map[int]uint64
	matchIndex map[int]uint64

	// --- 事件循环 ---
	events  chan func()
	applyCh chan struct{} // applier 的唤醒信号，最多积压一个
	fatal   error         // 第一个存储错误，设置后事件循环退出

	lifecycle sync.Mutex
	running   bool
	stopped   bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	doneOnce  sync.Once
}

// Status 是节点状态的一个快照。
type Status struct {
	ID          int
	Term        uint64
	Role        param.Role
	VotedFor    int
	Leader      int
	CommitIndex uint64
	LastApplied uint64
	LastIndex   uint64
}

// NewRaft 创建一个新的 Raft 节点，并从 store 中恢复 currentTerm 和 votedFor。
// 节点创建后处于 Follower 状态，调用 Run 之后才会开始计时。
func NewRaft(cfg Config, store storage.Storage, stateMachine storage.StateMachine, trans transport.Transport) (*Raft, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil || stateMachine == nil || trans == nil {
		return nil, errors.New("raft: storage, state machine and transport are required")
	}

	r := &Raft{
		id:           cfg.ID,
		members:      make(map[int]string, len(cfg.Peers)),
		cfg:          cfg,
		logger:       cfg.Logger.WithField("node", cfg.ID),
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		store:        store,
		stateMachine: stateMachine,
		trans:        trans,
		proxies:      make(map[int]*peerProxy),
		votedFor:     param.NoVote,
		role:         param.Follower,
		leaderID:     param.NoVote,
		nextIndex:    make(map[int]uint64),
		matchIndex:   make(map[int]uint64),
		events:       make(chan func(), eventQueueSize),
		applyCh:      make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	for id, addr := range cfg.Peers {
		r.members[id] = addr
		if id != r.id {
			r.peerIDs = append(r.peerIDs, id)
		}
	}
	sort.Ints(r.peerIDs)

	r.electionTimer = newLoopTimer(cfg.Clock, r.post)
	r.heartbeatTimer = newLoopTimer(cfg.Clock, r.post)
	for _, id := range r.peerIDs {
		r.proxies[id] = newPeerProxy(id, trans, cfg.PeerQueueSize, r.post, r.done, r.logger)
	}

	// 从稳定存储中恢复状态。
	hardState, err := store.GetState()
	if err != nil {
		return nil, &StorageError{Op: "get state", Err: err}
	}
	r.currentTerm = hardState.CurrentTerm
	r.votedFor = hardState.VotedFor
	r.logger.Infof("Node %d restored term %d, votedFor %d", r.id, r.currentTerm, r.votedFor)

	return r, nil
}

// ID 返回节点 ID。
func (r *Raft) ID() int {
	return r.id
}

// Run 驱动事件循环，直到 ctx 结束、Stop 被调用或出现存储错误。
// 正常停止时返回 nil，因存储故障停止时返回对应的 StorageError。
func (r *Raft) Run(ctx context.Context) error {
	r.lifecycle.Lock()
	if r.stopped {
		r.lifecycle.Unlock()
		return ErrNodeStopped
	}
	if r.running {
		r.lifecycle.Unlock()
		return errors.New("raft: node is already running")
	}
	r.running = true
	r.lifecycle.Unlock()

	defer r.closeDone()
	r.startProxies()
	r.resetElectionTimer()
	r.logger.Infof("Node %d started as %s in term %d", r.id, r.role, r.currentTerm)

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case <-r.stopCh:
			r.shutdown()
			return nil
		case fn := <-r.events:
			fn()
		case <-r.applyCh:
			r.applyCommitted()
		}
		if r.fatal != nil {
			r.logger.Errorf("Node %d halting: %v", r.id, r.fatal)
			r.shutdown()
			return r.fatal
		}
	}
}

// Stop 停止节点。可以重复调用，也可以在 Run 之前调用。
func (r *Raft) Stop() {
	r.lifecycle.Lock()
	r.stopped = true
	running := r.running
	r.lifecycle.Unlock()

	r.stopOnce.Do(func() { close(r.stopCh) })
	if !running {
		r.closeDone()
	}
}

// Done 在事件循环退出后关闭。
func (r *Raft) Done() <-chan struct{} {
	return r.done
}

func (r *Raft) closeDone() {
	r.doneOnce.Do(func() { close(r.done) })
}

func (r *Raft) startProxies() {
	for _, id := range r.peerIDs {
		go r.proxies[id].run()
	}
}

// shutdown 在事件循环中执行，取消所有定时器。
func (r *Raft) shutdown() {
	r.electionTimer.stop()
	r.heartbeatTimer.stop()
	if r.round != nil {
		r.round.disable()
	}
	r.logger.Infof("Node %d stopped in term %d", r.id, r.currentTerm)
}

// post 把 fn 投递到事件循环。节点停止后返回 ErrNodeStopped。
func (r *Raft) post(fn func()) error {
	select {
	case <-r.done:
		return ErrNodeStopped
	default:
	}
	select {
	case r.events <- fn:
		return nil
	case <-r.done:
		return ErrNodeStopped
	}
}

// call 在事件循环中执行 fn 并等待其完成。
func (r *Raft) call(fn func()) error {
	finished := make(chan struct{})
	if err := r.post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		// fn 可能恰好在循环退出前完成
		select {
		case <-finished:
			return nil
		default:
			return ErrNodeStopped
		}
	}
}

// Status 返回节点当前状态的快照。
func (r *Raft) Status() (Status, error) {
	var (
		st  Status
		err error
	)
	if perr := r.call(func() { st, err = r.status() }); perr != nil {
		return Status{}, perr
	}
	return st, err
}

func (r *Raft) status() (Status, error) {
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return Status{}, r.storageFailure("last index", err)
	}
	return Status{
		ID:          r.id,
		Term:        r.currentTerm,
		Role:        r.role,
		VotedFor:    r.votedFor,
		Leader:      r.leaderID,
		CommitIndex: r.commitIndex,
		LastApplied: r.lastApplied,
		LastIndex:   lastIndex,
	}, nil
}

// stepDown 转为 Follower。term 更高时先采用它并清空投票记录。
// 它总是作废进行中的选举、停止心跳并重启选举定时器。
func (r *Raft) stepDown(term uint64) error {
	if term > r.currentTerm {
		r.logger.Infof("[State Change] Node %d received higher term %d (was %d), becoming follower", r.id, term, r.currentTerm)
		r.currentTerm = term
		r.votedFor = param.NoVote
		r.leaderID = param.NoVote
		if err := r.persistState(); err != nil {
			return err
		}
	}
	if r.round != nil {
		r.round.disable()
		r.round = nil
	}
	r.heartbeatTimer.stop()
	if r.role != param.Follower {
		r.logger.Infof("[State Change] Node %d steps down from %s in term %d", r.id, r.role, r.currentTerm)
	}
	r.role = param.Follower
	r.resetElectionTimer()
	return nil
}

// resetElectionTimer 以 [T, 2T) 内新的随机超时重启选举定时器。
func (r *Raft) resetElectionTimer() {
	base := r.cfg.ElectionTimeout
	timeout := base + time.Duration(r.rng.Int63n(int64(base)))
	r.electionTimer.reset(timeout, r.startElection)
}

// --- 存储访问，任何失败都是致命的 ---

// storageFailure 记录第一个存储错误，事件循环会在当前事件结束后退出。
func (r *Raft) storageFailure(op string, err error) error {
	serr := &StorageError{Op: op, Err: err}
	if r.fatal == nil {
		r.fatal = serr
		r.logger.WithError(err).Errorf("[ERROR] Node %d storage %s failed", r.id, op)
	}
	return serr
}

// persistState 持久化 currentTerm 和 votedFor，必须在依赖它们的响应发出之前完成。
func (r *Raft) persistState() error {
	if err := r.store.SetState(param.HardState{CurrentTerm: r.currentTerm, VotedFor: r.votedFor}); err != nil {
		return r.storageFailure("set state", err)
	}
	return nil
}

// lastLogInfo 返回最后一条日志的索引和任期。
func (r *Raft) lastLogInfo() (uint64, uint64, error) {
	lastIndex, err := r.store.LastIndex()
	if err != nil {
		return 0, 0, r.storageFailure("last index", err)
	}
	lastTerm, err := r.store.LastTerm()
	if err != nil {
		return 0, 0, r.storageFailure("last term", err)
	}
	return lastIndex, lastTerm, nil
}

// termAt 返回指定索引的日志条目的任期，索引 0 的任期为 0。
func (r *Raft) termAt(index uint64) (uint64, error) {
	if index == 0 {
		return 0, nil
	}
	entry, err := r.store.Get(index)
	if err != nil {
		return 0, r.storageFailure("get", err)
	}
	return entry.Term, nil
}

func (r *Raft) clusterSize() int {
	return len(r.members)
}
