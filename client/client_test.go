package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
	"github.com/xmh1011/go-raft-actor/transport/inmemory"
)

// setup a helper function to create a client with a mock transport layer for each test.
func setup(t *testing.T) (*gomock.Controller, *transport.MockTransport, *Client) {
	ctrl := gomock.NewController(t)
	mockTrans := transport.NewMockTransport(ctrl)

	servers := map[int]string{
		1: "localhost:8001",
		2: "localhost:8002",
		3: "localhost:8003",
	}

	client := NewClient(servers, mockTrans)
	client.retryInterval = time.Millisecond
	return ctrl, mockTrans, client
}

func TestNewClient(t *testing.T) {
	ctrl, _, client := setup(t)
	defer ctrl.Finish()

	assert.NotEmpty(t, client.clientID)
	assert.Equal(t, []int{1, 2, 3}, client.servers)
	assert.Equal(t, param.NoVote, client.leaderHint)
	assert.NotNil(t, client.trans)
	assert.Equal(t, DefaultTimeout, client.timeout)

	_, _, other := setup(t)
	assert.NotEqual(t, client.clientID, other.clientID)
}

func TestSelectTargetNode(t *testing.T) {
	_, _, client := setup(t)

	// Case 1: No leader hint, rotate through the servers in ID order
	assert.Equal(t, 1, client.selectTargetNode())
	assert.Equal(t, 2, client.selectTargetNode())
	assert.Equal(t, 3, client.selectTargetNode())
	assert.Equal(t, 1, client.selectTargetNode())

	// Case 2: With a leader hint, should return the leader hint
	client.leaderHint = 2
	assert.Equal(t, 2, client.selectTargetNode())

	// Case 3: A hint outside the cluster is ignored
	client.leaderHint = 9
	assert.Contains(t, client.servers, client.selectTargetNode())
}

func TestDecideNextAction(t *testing.T) {
	_, _, client := setup(t)

	testCases := []struct {
		name               string
		reply              *param.ProposeReply
		err                error
		expectedAction     clientAction
		expectedLeaderHint int
	}{
		{
			name:               "Network Error",
			reply:              &param.ProposeReply{},
			err:                errors.New("connection refused"),
			expectedAction:     actionRetry,
			expectedLeaderHint: param.NoVote, // Should reset leader hint on network error
		},
		{
			name:               "Not Leader Reply",
			reply:              &param.ProposeReply{IsLeader: false, LeaderHint: 3},
			expectedAction:     actionRetry,
			expectedLeaderHint: 3, // Should update leader hint
		},
		{
			name:               "Not Leader Without Hint",
			reply:              &param.ProposeReply{IsLeader: false, LeaderHint: param.NoVote},
			expectedAction:     actionRetry,
			expectedLeaderHint: param.NoVote,
		},
		{
			name:               "Accepted",
			reply:              &param.ProposeReply{Index: 7, Term: 2, IsLeader: true, LeaderHint: 1},
			expectedAction:     actionSuccess,
			expectedLeaderHint: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Reset leader hint before each test case
			client.leaderHint = 1
			action := client.decideNextAction(1, tc.reply, tc.err)

			assert.Equal(t, tc.expectedAction, action)
			assert.Equal(t, tc.expectedLeaderHint, client.leaderHint)
		})
	}
}

func TestSendCommand(t *testing.T) {
	t.Run("Success on first try", func(t *testing.T) {
		ctrl, mockTrans, client := setup(t)
		defer ctrl.Finish()

		command := []byte("set key value")
		mockTrans.EXPECT().
			SendPropose("1", gomock.Any(), gomock.Any()).
			DoAndReturn(func(nodeID string, args *param.ProposeArgs, reply *param.ProposeReply) error {
				assert.Equal(t, command, args.Command)
				*reply = param.ProposeReply{Index: 4, Term: 2, IsLeader: true, LeaderHint: 1}
				return nil
			})

		reply, err := client.SendCommand(context.Background(), command)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), reply.Index)
		assert.Equal(t, uint64(2), reply.Term)
		assert.Equal(t, 1, client.leaderHint)
	})

	t.Run("Success after not-leader reply", func(t *testing.T) {
		ctrl, mockTrans, client := setup(t)
		defer ctrl.Finish()

		gomock.InOrder(
			mockTrans.EXPECT().
				SendPropose("1", gomock.Any(), gomock.Any()).
				DoAndReturn(func(nodeID string, args *param.ProposeArgs, reply *param.ProposeReply) error {
					reply.IsLeader = false
					reply.LeaderHint = 2 // Hint that node 2 is the leader
					return nil
				}),
			mockTrans.EXPECT().
				SendPropose("2", gomock.Any(), gomock.Any()).
				DoAndReturn(func(nodeID string, args *param.ProposeArgs, reply *param.ProposeReply) error {
					*reply = param.ProposeReply{Index: 1, Term: 1, IsLeader: true, LeaderHint: 2}
					return nil
				}),
		)

		reply, err := client.SendCommand(context.Background(), []byte("cmd"))
		require.NoError(t, err)
		assert.True(t, reply.IsLeader)
		assert.Equal(t, 2, client.leaderHint, "Leader hint should be updated to the correct leader")
	})

	t.Run("Unreachable node is skipped", func(t *testing.T) {
		ctrl, mockTrans, client := setup(t)
		defer ctrl.Finish()

		gomock.InOrder(
			mockTrans.EXPECT().SendPropose("1", gomock.Any(), gomock.Any()).Return(transport.ErrUnreachable),
			mockTrans.EXPECT().SendPropose("2", gomock.Any(), gomock.Any()).
				DoAndReturn(func(nodeID string, args *param.ProposeArgs, reply *param.ProposeReply) error {
					reply.IsLeader = true
					return nil
				}),
		)

		_, err := client.SendCommand(context.Background(), []byte("cmd"))
		require.NoError(t, err)
		assert.Equal(t, 2, client.leaderHint)
	})

	t.Run("Command times out", func(t *testing.T) {
		ctrl, mockTrans, client := setup(t)
		defer ctrl.Finish()
		client.SetTimeout(50 * time.Millisecond)

		mockTrans.EXPECT().
			SendPropose(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(transport.ErrUnreachable).
			AnyTimes()

		reply, err := client.SendCommand(context.Background(), []byte("some command"))
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Nil(t, reply)
	})
}

// fakeNode 是一个只实现 Propose 的节点，用于在内存网络上测试客户端。
type fakeNode struct {
	id       int
	leader   int
	received [][]byte
}

func (f *fakeNode) RequestVote(*param.RequestVoteArgs, *param.RequestVoteReply) error {
	return nil
}

func (f *fakeNode) AppendEntries(*param.AppendEntriesArgs, *param.AppendEntriesReply) error {
	return nil
}

func (f *fakeNode) Propose(args *param.ProposeArgs, reply *param.ProposeReply) error {
	if f.id != f.leader {
		reply.LeaderHint = f.leader
		return nil
	}
	f.received = append(f.received, args.Command)
	*reply = param.ProposeReply{Index: uint64(len(f.received)), Term: 1, IsLeader: true, LeaderHint: f.id}
	return nil
}

func TestSendCommand_InMemoryNetwork(t *testing.T) {
	network := inmemory.NewNetwork()
	servers := map[int]string{1: "n1", 2: "n2", 3: "n3"}
	nodes := map[int]*fakeNode{}
	for id, addr := range servers {
		nodes[id] = &fakeNode{id: id, leader: 3}
		network.Register(addr, nodes[id])
	}

	trans := inmemory.NewTransport("client", network)
	trans.SetPeers(servers)
	c := NewClient(servers, trans)
	c.retryInterval = time.Millisecond

	reply, err := c.SendCommand(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reply.Index)
	assert.Equal(t, [][]byte{[]byte("hello")}, nodes[3].received)
	assert.Empty(t, nodes[1].received)
}
