package raft

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/storage"
	"github.com/xmh1011/go-raft-actor/transport"
)

const (
	testElectionTimeout   = 100 * time.Millisecond
	testHeartbeatInterval = 20 * time.Millisecond
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testConfig 返回一个使用 ManualClock 和固定随机种子的配置。
func testConfig(id int, ids ...int) (Config, *ManualClock) {
	peers := make(map[int]string, len(ids))
	for _, peerID := range ids {
		peers[peerID] = nodeAddr(peerID)
	}
	clock := NewManualClock()
	cfg := Config{
		ID:                id,
		Peers:             peers,
		ElectionTimeout:   testElectionTimeout,
		HeartbeatInterval: testHeartbeatInterval,
		Clock:             clock,
		Logger:            quietLogger(),
		Seed:              int64(id),
	}
	return cfg, clock
}

func nodeAddr(id int) string {
	return fmt.Sprintf("node-%d", id)
}

// newTestRaft 创建一个不运行事件循环的节点，测试直接调用事件循环中的处理函数。
func newTestRaft(t *testing.T, cfg Config, store storage.Storage, sm storage.StateMachine, trans transport.Transport) *Raft {
	t.Helper()
	r, err := NewRaft(cfg, store, sm, trans)
	require.NoError(t, err)
	return r
}

// drain 在测试 goroutine 中执行所有已经投递的事件和 applier 信号，直到两者都为空。
func drain(r *Raft) {
	for {
		select {
		case fn := <-r.events:
			fn()
		case <-r.applyCh:
			r.applyCommitted()
		default:
			return
		}
	}
}

// nextEvent 等待一个事件并执行它，用于等待 peerProxy 投递回来的响应。
func nextEvent(t *testing.T, r *Raft) {
	t.Helper()
	select {
	case fn := <-r.events:
		fn()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an event")
	}
}

// newSetCommand 构造一个 "set" 命令
func newSetCommand(t *testing.T, key, value string) []byte {
	t.Helper()
	b, err := json.Marshal(param.KVCommand{Op: param.OpSet, Key: key, Value: value})
	require.NoError(t, err)
	return b
}

func entries(terms ...uint64) []param.LogEntry {
	out := make([]param.LogEntry, len(terms))
	for i, term := range terms {
		out[i] = param.NewLogEntry(term, []byte{byte(i + 1)})
	}
	return out
}

func logTerms(t *testing.T, store storage.Storage) []uint64 {
	t.Helper()
	last, err := store.LastIndex()
	require.NoError(t, err)
	terms := make([]uint64, 0, last)
	for i := uint64(1); i <= last; i++ {
		entry, err := store.Get(i)
		require.NoError(t, err)
		terms = append(terms, entry.Term)
	}
	return terms
}
