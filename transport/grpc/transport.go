package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
)

const callTimeout = 2 * time.Second

// Transport implements transport.Transport using gRPC.
type Transport struct {
	listener  net.Listener
	localAddr string

	raft       transport.RPCServer
	grpcServer *grpc.Server

	mu        sync.RWMutex
	conns     map[string]*grpc.ClientConn // 目标地址 -> 连接
	resolvers map[string]string           // 节点 ID -> 地址
}

// NewTransport creates a new gRPC Transport listening on listenAddr.
func NewTransport(listenAddr string) (*Transport, error) {
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}

	return &Transport{
		listener:   listener,
		localAddr:  listener.Addr().String(),
		conns:      make(map[string]*grpc.ClientConn),
		resolvers:  make(map[string]string),
		grpcServer: grpc.NewServer(grpc.ForceServerCodec(wireCodec{})),
	}, nil
}

// Addr returns the local address.
func (t *Transport) Addr() string {
	return t.localAddr
}

// SetPeers sets the peer resolvers.
func (t *Transport) SetPeers(peers map[int]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resolvers = make(map[string]string, len(peers))
	for id, addr := range peers {
		t.resolvers[fmt.Sprint(id)] = addr
	}

	// 地址可能变化，关闭已有连接，下次调用时重新建立
	t.closeConns()
}

// RegisterRaft registers the Raft RPC server.
func (t *Transport) RegisterRaft(raftInstance transport.RPCServer) {
	t.raft = raftInstance
}

// Start starts the gRPC server.
func (t *Transport) Start() error {
	if t.raft == nil {
		return errors.New("raft instance not registered")
	}

	t.grpcServer.RegisterService(&raftServiceDesc, t.raft)

	go func() {
		if err := t.grpcServer.Serve(t.listener); err != nil {
			log.Warnf("[GRPCTransport] Server stopped: %v", err)
		}
	}()

	log.Infof("[GRPCTransport] Service started on %s", t.localAddr)
	return nil
}

// Close stops the gRPC server and closes all connections.
func (t *Transport) Close() error {
	t.grpcServer.Stop()
	// Serve 未被调用时 Stop 不会关闭监听器
	_ = t.listener.Close()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeConns()
	return nil
}

// closeConns 需要在持有 t.mu 时调用。
func (t *Transport) closeConns() {
	for _, conn := range t.conns {
		_ = conn.Close()
	}
	t.conns = make(map[string]*grpc.ClientConn)
}

// getPeerConn 解析目标并返回到它的连接。未知 ID 按地址本身处理。
func (t *Transport) getPeerConn(target string) (*grpc.ClientConn, error) {
	t.mu.RLock()
	addr, ok := t.resolvers[target]
	if !ok {
		addr = target
	}
	conn, ok := t.conns[addr]
	t.mu.RUnlock()
	if ok {
		return conn, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if conn, ok := t.conns[addr]; ok {
		return conn, nil
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wireCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrUnreachable, err)
	}
	t.conns[addr] = conn
	return conn, nil
}

// invoke 发起一次带超时的一元调用。连接类错误统一包装为 transport.ErrUnreachable。
func (t *Transport) invoke(target, method string, req, resp any) error {
	conn, err := t.getPeerConn(target)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := conn.Invoke(ctx, method, req, resp); err != nil {
		switch status.Code(err) {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return fmt.Errorf("%w: %v", transport.ErrUnreachable, err)
		default:
			return err
		}
	}
	return nil
}

// SendRequestVote 发送 RequestVote RPC 请求。
func (t *Transport) SendRequestVote(target string, req *param.RequestVoteArgs, resp *param.RequestVoteReply) error {
	return t.invoke(target, requestVoteMethod, req, resp)
}

// SendAppendEntries 发送 AppendEntries RPC 请求。
func (t *Transport) SendAppendEntries(target string, req *param.AppendEntriesArgs, resp *param.AppendEntriesReply) error {
	return t.invoke(target, appendEntriesMethod, req, resp)
}

// SendPropose 发送客户端命令到指定的 Raft 节点。
func (t *Transport) SendPropose(target string, req *param.ProposeArgs, resp *param.ProposeReply) error {
	return t.invoke(target, proposeMethod, req, resp)
}
