package transport

import (
	"errors"

	"github.com/xmh1011/go-raft-actor/param"
)

//go:generate mockgen -destination=mock_transport.go -package=transport github.com/xmh1011/go-raft-actor/transport Transport
//go:generate mockgen -destination=mock_rpc.go -package=transport github.com/xmh1011/go-raft-actor/transport RPCServer

const (
	InmemoryTransport = "inmemory"
	TCPTransport      = "tcp"
	GrpcTransport     = "grpc"
)

// ErrUnreachable 表示目标节点在传输层不可达。
var ErrUnreachable = errors.New("peer unreachable")

// Transport 定义了 Raft 节点之间以及客户端与节点之间通信所需的方法。
// target 是目标节点 ID 的十进制字符串，由实现通过 SetPeers 解析为地址。
// Send* 方法是同步的，调用方负责在独立的 goroutine 中调用。
type Transport interface {
	// SendRequestVote 发送 RequestVote RPC 请求。
	SendRequestVote(target string, req *param.RequestVoteArgs, resp *param.RequestVoteReply) error

	// SendAppendEntries 发送 AppendEntries RPC 请求。
	SendAppendEntries(target string, req *param.AppendEntriesArgs, resp *param.AppendEntriesReply) error

	// SendPropose 将客户端命令发送到指定的 Raft 节点。
	SendPropose(target string, req *param.ProposeArgs, resp *param.ProposeReply) error

	// Addr 返回本地监听地址。
	Addr() string
	// SetPeers 设置节点 ID 到地址的映射。
	SetPeers(peers map[int]string)
	// RegisterRaft 注册处理入站 RPC 的本地节点。
	RegisterRaft(server RPCServer)
	// Start 开始接收入站 RPC。
	Start() error
	// Close 停止服务并关闭所有连接。
	Close() error
}
