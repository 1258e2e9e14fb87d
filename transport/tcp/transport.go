package tcp

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
)

const (
	dialTimeout = 5 * time.Second
	callTimeout = 2 * time.Second // 单次 RPC 的超时，与 grpc 传输一致
)

// Transport 实现了 Transport 接口，通过 TCP 和 net/rpc 进行通信。
type Transport struct {
	localAddr string
	listener  net.Listener
	raft      transport.RPCServer
	server    *rpc.Server

	callTimeout time.Duration

	mu        sync.RWMutex
	peers     map[string]*rpc.Client // 缓存 RPC 客户端连接，key 为目标地址
	resolvers map[string]string      // 节点 ID -> 地址
}

// NewTransport 创建一个新的 Transport 实例，并立即在 localAddr 上监听。
// 监听端口为 0 时，Addr 返回系统实际分配的地址。
func NewTransport(localAddr string) (*Transport, error) {
	listener, err := net.Listen("tcp", localAddr)
	if err != nil {
		return nil, err
	}
	return &Transport{
		localAddr:   listener.Addr().String(),
		listener:    listener,
		server:      rpc.NewServer(),
		callTimeout: callTimeout,
		peers:       make(map[string]*rpc.Client),
		resolvers:   make(map[string]string),
	}, nil
}

// SetCallTimeout 修改单次 RPC 的超时时间。
func (t *Transport) SetCallTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callTimeout = d
}

// Addr 返回本地监听地址。
func (t *Transport) Addr() string {
	return t.localAddr
}

// SetPeers 设置节点 ID 到地址的映射，并丢弃已缓存的连接。
func (t *Transport) SetPeers(peers map[int]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolvers = make(map[string]string, len(peers))
	for id, addr := range peers {
		t.resolvers[fmt.Sprint(id)] = addr
	}
	t.closeClients()
}

// RegisterRaft 注册处理入站 RPC 的本地节点。
func (t *Transport) RegisterRaft(raftInstance transport.RPCServer) {
	t.raft = raftInstance
}

// Start 注册 RaftRPC 服务并在后台接受连接。
func (t *Transport) Start() error {
	if t.raft == nil {
		return errors.New("raft instance not registered")
	}
	if err := t.server.Register(&transport.RaftRPC{Raft: t.raft}); err != nil {
		return err
	}
	go t.acceptConnections()
	log.Infof("[TCPTransport] Listening on %s", t.localAddr)
	return nil
}

// acceptConnections 循环接受并处理新的 TCP 连接。
func (t *Transport) acceptConnections() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			// 监听器关闭后退出循环
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warnf("[TCPTransport] Accept error on %s: %v", t.localAddr, err)
			continue
		}
		// 为每个连接启动一个新的 goroutine 来提供 RPC 服务
		go t.server.ServeConn(conn)
	}
}

// Close 关闭监听器和所有缓存的客户端连接。
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closeClients()
	t.mu.Unlock()
	return t.listener.Close()
}

// closeClients 需要在持有 t.mu 时调用。
func (t *Transport) closeClients() {
	for _, client := range t.peers {
		_ = client.Close()
	}
	t.peers = make(map[string]*rpc.Client)
}

// resolve 把节点 ID 解析为地址；未知 ID 按地址本身处理。
func (t *Transport) resolve(target string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if addr, ok := t.resolvers[target]; ok {
		return addr
	}
	return target
}

// getPeerClient 获取或创建一个到目标地址的 RPC 客户端。
func (t *Transport) getPeerClient(addr string) (*rpc.Client, error) {
	t.mu.RLock()
	client, ok := t.peers[addr]
	t.mu.RUnlock()
	if ok {
		return client, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// 再次检查，防止在等待锁的过程中其他 goroutine 已经创建了连接
	if client, ok := t.peers[addr]; ok {
		return client, nil
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrUnreachable, err)
	}
	client = rpc.NewClient(conn)
	t.peers[addr] = client
	return client, nil
}

// remoteCall 是一个通用的 RPC 调用函数。
// 对端在 callTimeout 内没有响应时关闭缓存的连接，返回 ErrUnreachable。
func (t *Transport) remoteCall(target, method string, args any, reply any) error {
	addr := t.resolve(target)
	client, err := t.getPeerClient(addr)
	if err != nil {
		return err
	}

	t.mu.RLock()
	timeout := t.callTimeout
	t.mu.RUnlock()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	call := client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
	case <-timer.C:
		// 连接可能已经半开，丢弃它，下次调用时重新建立
		t.evict(addr, client)
		log.Warnf("[TCPTransport] %s to %s timed out after %v", method, addr, timeout)
		return fmt.Errorf("%w: %s to %s timed out after %v", transport.ErrUnreachable, method, addr, timeout)
	}

	if err := call.Error; err != nil {
		// 连接已关闭说明缓存的 client 失效了，下次调用时重新建立
		if errors.Is(err, rpc.ErrShutdown) {
			t.evict(addr, client)
			return fmt.Errorf("%w: %v", transport.ErrUnreachable, err)
		}
		return err
	}
	return nil
}

// evict 从缓存中移除并关闭 client。
func (t *Transport) evict(addr string, client *rpc.Client) {
	t.mu.Lock()
	if t.peers[addr] == client {
		delete(t.peers, addr)
	}
	t.mu.Unlock()
	_ = client.Close()
}

// SendRequestVote 发送 RequestVote RPC 请求。
func (t *Transport) SendRequestVote(target string, req *param.RequestVoteArgs, resp *param.RequestVoteReply) error {
	return t.remoteCall(target, "RaftRPC.RequestVote", req, resp)
}

// SendAppendEntries 发送 AppendEntries RPC 请求。
func (t *Transport) SendAppendEntries(target string, req *param.AppendEntriesArgs, resp *param.AppendEntriesReply) error {
	return t.remoteCall(target, "RaftRPC.AppendEntries", req, resp)
}

// SendPropose 发送客户端命令到指定的 Raft 节点。
func (t *Transport) SendPropose(target string, req *param.ProposeArgs, resp *param.ProposeReply) error {
	return t.remoteCall(target, "RaftRPC.Propose", req, resp)
}
