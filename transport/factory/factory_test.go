package factory

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
	"github.com/xmh1011/go-raft-actor/transport/grpc"
	"github.com/xmh1011/go-raft-actor/transport/inmemory"
	"github.com/xmh1011/go-raft-actor/transport/tcp"
)

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		want    any
		wantErr bool
	}{
		{name: "inmemory", kind: transport.InmemoryTransport, want: &inmemory.Transport{}},
		{name: "tcp", kind: transport.TCPTransport, want: &tcp.Transport{}},
		{name: "grpc", kind: transport.GrpcTransport, want: &grpc.Transport{}},
		{name: "unknown", kind: "carrier-pigeon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trans, err := NewTransport(tt.kind, "127.0.0.1:0")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer trans.Close()
			assert.IsType(t, tt.want, trans)
			assert.NotEmpty(t, trans.Addr())
		})
	}
}

func TestInmemoryTransportsShareNetwork(t *testing.T) {
	a, err := NewTransport(transport.InmemoryTransport, "node-a")
	require.NoError(t, err)
	b, err := NewTransport(transport.InmemoryTransport, "node-b")
	require.NoError(t, err)

	assert.Same(t, a.(*inmemory.Transport).Network(), b.(*inmemory.Transport).Network())
}

func TestWithNetworkIsolatesTransports(t *testing.T) {
	network := inmemory.NewNetwork()
	a, err := NewTransport(transport.InmemoryTransport, "isolated-a", WithNetwork(network))
	require.NoError(t, err)
	b, err := NewTransport(transport.InmemoryTransport, "isolated-b", WithNetwork(network))
	require.NoError(t, err)
	shared, err := NewTransport(transport.InmemoryTransport, "shared-c")
	require.NoError(t, err)

	assert.Same(t, network, a.(*inmemory.Transport).Network())
	assert.Same(t, network, b.(*inmemory.Transport).Network())
	assert.NotSame(t, network, shared.(*inmemory.Transport).Network())

	// 在私有网络上制造分区不会影响进程共享的网络
	network.Isolate("isolated-a")
	ctrl := gomock.NewController(t)
	server := transport.NewMockRPCServer(ctrl)
	server.EXPECT().RequestVote(gomock.Any(), gomock.Any()).Return(nil)
	shared.RegisterRaft(server)
	require.NoError(t, shared.Start())
	defer shared.Close()
	b.RegisterRaft(transport.NewMockRPCServer(ctrl))
	require.NoError(t, b.Start())
	defer b.Close()

	other, err := NewTransport(transport.InmemoryTransport, "isolated-a")
	require.NoError(t, err)
	assert.NoError(t, other.SendRequestVote("shared-c", &param.RequestVoteArgs{}, &param.RequestVoteReply{}))
	assert.ErrorIs(t, a.SendRequestVote("isolated-b", &param.RequestVoteArgs{}, &param.RequestVoteReply{}), transport.ErrUnreachable)
}
