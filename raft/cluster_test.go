package raft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/storage/inmemory"
	memtransport "github.com/xmh1011/go-raft-actor/transport/inmemory"
)

const waitFor = 2 * time.Second

// testCluster 在同一个模拟网络上运行多个节点。每个节点有自己的 ManualClock，
// 测试通过推进某个节点的时钟来决定谁先超时、谁发送心跳。
type testCluster struct {
	t       *testing.T
	network *memtransport.Network
	nodes   map[int]*Raft
	clocks  map[int]*ManualClock
	stores  map[int]*inmemory.Storage
	sms     map[int]*inmemory.StateMachine
}

func newTestCluster(t *testing.T, size int) *testCluster {
	t.Helper()
	ids := make([]int, 0, size)
	for id := 1; id <= size; id++ {
		ids = append(ids, id)
	}

	c := &testCluster{
		t:       t,
		network: memtransport.NewNetwork(),
		nodes:   make(map[int]*Raft),
		clocks:  make(map[int]*ManualClock),
		stores:  make(map[int]*inmemory.Storage),
		sms:     make(map[int]*inmemory.StateMachine),
	}
	for _, id := range ids {
		cfg, clock := testConfig(id, ids...)
		trans := memtransport.NewTransport(nodeAddr(id), c.network)
		trans.SetPeers(cfg.Peers)

		store := inmemory.NewStorage()
		sm := inmemory.NewStateMachine()
		r := newTestRaft(t, cfg, store, sm, trans)
		trans.RegisterRaft(r)
		require.NoError(t, trans.Start())

		c.nodes[id] = r
		c.clocks[id] = clock
		c.stores[id] = store
		c.sms[id] = sm
		startNode(t, r)
	}
	for _, id := range ids {
		clock := c.clocks[id]
		require.Eventually(t, func() bool { return clock.Pending() > 0 }, waitFor, time.Millisecond)
	}
	return c
}

// status 读取节点状态，并检查 commitIndex 和 lastApplied 的不变量。
func (c *testCluster) status(id int) Status {
	st, err := c.nodes[id].Status()
	require.NoError(c.t, err)
	require.LessOrEqual(c.t, st.CommitIndex, st.LastIndex)
	require.LessOrEqual(c.t, st.LastApplied, st.CommitIndex)
	return st
}

// elect 让 id 的选举定时器超时并等待它成为 Leader。
func (c *testCluster) elect(id int) {
	c.t.Helper()
	c.clocks[id].Advance(2 * testElectionTimeout)
	require.Eventually(c.t, func() bool {
		return c.status(id).Role == param.Leader
	}, waitFor, time.Millisecond, "node %d did not become leader", id)
}

func (c *testCluster) heartbeat(id int) {
	c.clocks[id].Advance(testHeartbeatInterval)
}

func (c *testCluster) propose(id int, command []byte) param.ProposeReply {
	c.t.Helper()
	reply := param.ProposeReply{}
	require.NoError(c.t, c.nodes[id].Propose(param.NewProposeArgs(command), &reply))
	return reply
}

// replicate 反复触发 leader 的心跳，直到 ids 中的节点都应用到 index。
func (c *testCluster) replicate(leader int, index uint64, ids ...int) {
	c.t.Helper()
	require.Eventually(c.t, func() bool {
		c.heartbeat(leader)
		for _, id := range ids {
			if c.status(id).LastApplied < index {
				return false
			}
		}
		return true
	}, waitFor, 5*time.Millisecond, "entries up to %d were not applied on %v", index, ids)
}

func TestCluster_ElectionAndReplication(t *testing.T) {
	c := newTestCluster(t, 3)
	c.elect(1)

	st := c.status(1)
	assert.Equal(t, uint64(1), st.Term)
	require.Eventually(t, func() bool {
		return c.status(2).Leader == 1 && c.status(3).Leader == 1
	}, waitFor, time.Millisecond, "followers learn the leader from the first heartbeat")

	set1 := newSetCommand(t, "k1", "v1")
	set2 := newSetCommand(t, "k2", "v2")
	r1 := c.propose(1, set1)
	r2 := c.propose(1, set2)
	assert.True(t, r1.IsLeader)
	assert.Equal(t, uint64(2), r1.Index, "index 1 is the leader's configuration entry")
	assert.Equal(t, uint64(3), r2.Index)

	c.replicate(1, 3, 1, 2, 3)
	for id, sm := range c.sms {
		assert.Equal(t, []string{string(set1), string(set2)}, sm.Applied(), "node %d", id)
		v, err := sm.Get("k2")
		require.NoError(t, err)
		assert.Equal(t, "v2", v)
	}

	// Follower 把客户端指向 Leader
	redirect := c.propose(2, newSetCommand(t, "k3", "v3"))
	assert.False(t, redirect.IsLeader)
	assert.Equal(t, 1, redirect.LeaderHint)
}

func TestCluster_PartitionedLeaderStepsDown(t *testing.T) {
	c := newTestCluster(t, 3)
	c.elect(1)
	c.propose(1, newSetCommand(t, "a", "1"))
	c.replicate(1, 2, 1, 2, 3)

	// 隔离旧 Leader。它仍然接受命令，但这些命令永远无法提交。
	c.network.Isolate(nodeAddr(1))
	lost := c.propose(1, newSetCommand(t, "lost", "x"))
	require.True(t, lost.IsLeader)
	assert.Equal(t, uint64(3), lost.Index)

	c.elect(2)
	assert.Equal(t, uint64(2), c.status(2).Term)
	kept := c.propose(2, newSetCommand(t, "b", "2"))
	require.True(t, kept.IsLeader)
	c.replicate(2, kept.Index, 2, 3)

	old := c.status(1)
	assert.Equal(t, param.Leader, old.Role, "an isolated leader does not notice the new term")
	assert.Equal(t, uint64(2), old.CommitIndex)

	// 网络恢复后，旧 Leader 的心跳得到更高任期的响应，随即退位。
	c.network.Heal()
	c.heartbeat(1)
	require.Eventually(t, func() bool {
		st := c.status(1)
		return st.Role == param.Follower && st.Term == 2
	}, waitFor, time.Millisecond)

	// 新 Leader 覆盖掉未提交的条目，三个节点最终一致。
	c.replicate(2, kept.Index, 1, 2, 3)
	want := readLog(t, c.stores[2])
	for _, id := range []int{1, 3} {
		assert.Equal(t, want, readLog(t, c.stores[id]), "node %d log", id)
	}
	for id, sm := range c.sms {
		_, err := sm.Get("lost")
		assert.ErrorIs(t, err, inmemory.ErrKeyNotFound, "node %d applied an uncommitted command", id)
		v, err := sm.Get("b")
		require.NoError(t, err)
		assert.Equal(t, "2", v)
	}
}

func TestCluster_MinorityCannotCommit(t *testing.T) {
	c := newTestCluster(t, 3)
	c.elect(1)
	c.network.Partition([]string{nodeAddr(1)}, []string{nodeAddr(2)}, []string{nodeAddr(3)})

	reply := c.propose(1, newSetCommand(t, "k", "v"))
	require.True(t, reply.IsLeader)
	for i := 0; i < 10; i++ {
		c.heartbeat(1)
	}
	st := c.status(1)
	assert.Less(t, st.CommitIndex, reply.Index)
	assert.Empty(t, c.sms[1].Applied())

	c.network.Heal()
	c.replicate(1, reply.Index, 1, 2, 3)
}
