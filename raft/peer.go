package raft

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
)

// peerProxy 代表一个远端节点。它有自己的 goroutine 和有界队列，
// 对同一个 peer 的 RPC 串行发送，不会阻塞事件循环。
// 调用结果（或 ErrPeerUnreachable）以续延的形式投递回事件循环。
type peerProxy struct {
	id     int
	target string
	trans  transport.Transport
	queue  chan func()
	post   func(func()) error
	done   <-chan struct{}
	logger *logrus.Entry
}

func newPeerProxy(id int, trans transport.Transport, queueSize int, post func(func()) error, done <-chan struct{}, logger *logrus.Entry) *peerProxy {
	return &peerProxy{
		id:     id,
		target: strconv.Itoa(id),
		trans:  trans,
		queue:  make(chan func(), queueSize),
		post:   post,
		done:   done,
		logger: logger.WithField("peer", id),
	}
}

// run 依次执行队列中的调用，直到节点停止。
func (p *peerProxy) run() {
	for {
		select {
		case <-p.done:
			return
		case call := <-p.queue:
			call()
		}
	}
}

// requestVote 异步发送 RequestVote，onReply 在事件循环中执行。
func (p *peerProxy) requestVote(args *param.RequestVoteArgs, onReply func(*param.RequestVoteReply, error)) {
	reply := param.NewRequestVoteReply()
	p.send("RequestVote",
		func() error { return p.trans.SendRequestVote(p.target, args, reply) },
		func(err error) { onReply(reply, err) })
}

// appendEntries 异步发送 AppendEntries，onReply 在事件循环中执行。
func (p *peerProxy) appendEntries(args *param.AppendEntriesArgs, onReply func(*param.AppendEntriesReply, error)) {
	reply := param.NewAppendEntriesReply()
	p.send("AppendEntries",
		func() error { return p.trans.SendAppendEntries(p.target, args, reply) },
		func(err error) { onReply(reply, err) })
}

// send 把一次调用放进队列。队列已满时直接把这次调用当作不可达。
func (p *peerProxy) send(method string, rpc func() error, deliver func(error)) {
	callID := uuid.NewString()
	logger := p.logger.WithFields(logrus.Fields{"rpc": method, "call": callID})

	call := func() {
		err := rpc()
		if err != nil {
			logger.Debugf("[Peer] %s to node %d failed: %v", method, p.id, err)
			err = fmt.Errorf("%w: %s to node %d: %v", ErrPeerUnreachable, method, p.id, err)
		}
		_ = p.post(func() { deliver(err) })
	}

	select {
	case p.queue <- call:
	default:
		logger.Debugf("[Peer] queue to node %d is full, dropping %s", p.id, method)
		err := fmt.Errorf("%w: %s to node %d: queue full", ErrPeerUnreachable, method, p.id)
		// send 在事件循环中被调用，不能同步地往事件队列里投递
		go func() { _ = p.post(func() { deliver(err) }) }()
	}
}
