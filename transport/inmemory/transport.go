package inmemory

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
)

// Network 在单个进程内模拟节点之间的网络，支持断连、分区、丢包和延迟。
// 多个 Transport 共享同一个 Network 时，故障注入对它们同时生效。
type Network struct {
	mu       sync.RWMutex
	servers  map[string]transport.RPCServer // 地址 -> 节点
	group    map[string]int                 // 分区编号，未出现的地址属于分区 0
	dropRate float64
	latency  time.Duration
	rng      *rand.Rand
}

// NewNetwork 创建一个没有任何故障的网络。
func NewNetwork() *Network {
	return &Network{
		servers: make(map[string]transport.RPCServer),
		group:   make(map[string]int),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Register 让 addr 上的节点可以被访问。
func (n *Network) Register(addr string, server transport.RPCServer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[addr] = server
}

// Unregister 移除 addr 上的节点，之后发往它的请求都会失败。
func (n *Network) Unregister(addr string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, addr)
}

// Partition 将网络划分为若干组，只有同组内的地址可以互相通信。
// 未列出的地址组成一个额外的组。
func (n *Network) Partition(groups ...[]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.group = make(map[string]int)
	for i, g := range groups {
		for _, addr := range g {
			n.group[addr] = i + 1
		}
	}
}

// Isolate 把单个地址与其余所有节点隔离。
func (n *Network) Isolate(addr string) {
	n.Partition([]string{addr})
}

// Heal 撤销所有分区。
func (n *Network) Heal() {
	n.Partition()
}

// SetDropRate 设置每条消息（请求或响应）被丢弃的概率。
func (n *Network) SetDropRate(p float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dropRate = p
}

// SetLatency 设置每次调用的单程延迟。
func (n *Network) SetLatency(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.latency = d
}

// deliver 判断一条 from -> to 的消息能否送达，返回单程延迟。
func (n *Network) deliver(from, to string) (time.Duration, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.group[from] != n.group[to] {
		return 0, fmt.Errorf("%w: %s is partitioned from %s", transport.ErrUnreachable, to, from)
	}
	if n.dropRate > 0 && n.rng.Float64() < n.dropRate {
		return 0, fmt.Errorf("%w: message from %s to %s dropped", transport.ErrUnreachable, from, to)
	}
	return n.latency, nil
}

func (n *Network) lookup(addr string) (transport.RPCServer, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	server, ok := n.servers[addr]
	if !ok {
		return nil, fmt.Errorf("%w: could not connect to peer %s", transport.ErrUnreachable, addr)
	}
	return server, nil
}

// call 模拟一次完整的往返：请求和响应都可能被分区或丢包影响。
// 调用方（例如客户端）不需要注册在网络中也能收到响应。
func (n *Network) call(from, to string, invoke func(transport.RPCServer) error) error {
	server, err := n.lookup(to)
	if err != nil {
		return err
	}
	latency, err := n.deliver(from, to)
	if err != nil {
		return err
	}
	time.Sleep(latency)
	if err := invoke(server); err != nil {
		return err
	}
	if latency, err = n.deliver(to, from); err != nil {
		return err
	}
	time.Sleep(latency)
	return nil
}

// Transport 是一个基于内存的 Transport 实现，用于在单个进程内模拟 Raft 节点间的通信。
type Transport struct {
	mu        sync.RWMutex
	localAddr string            // 本地节点的地址
	resolvers map[string]string // 节点 ID -> 地址
	network   *Network
	raft      transport.RPCServer
}

// NewTransport 创建一个新的 Transport 实例。
// addr 是当前使用此 transport 的节点的地址；network 为 nil 时使用私有网络。
func NewTransport(addr string, network *Network) *Transport {
	if network == nil {
		network = NewNetwork()
	}
	return &Transport{
		localAddr: addr,
		resolvers: make(map[string]string),
		network:   network,
	}
}

// Addr 返回当前 Transport 的地址。
func (t *Transport) Addr() string {
	return t.localAddr
}

// Network 返回该 Transport 所在的模拟网络。
func (t *Transport) Network() *Network {
	return t.network
}

// SetPeers 设置节点 ID 到地址的映射。
func (t *Transport) SetPeers(peers map[int]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolvers = make(map[string]string, len(peers))
	for id, addr := range peers {
		t.resolvers[fmt.Sprint(id)] = addr
	}
}

// RegisterRaft 注册本地 Raft 实例。
func (t *Transport) RegisterRaft(raftInstance transport.RPCServer) {
	t.raft = raftInstance
}

// Start 把本地节点接入网络。
func (t *Transport) Start() error {
	if t.raft == nil {
		return fmt.Errorf("raft instance not registered on %s", t.localAddr)
	}
	t.network.Register(t.localAddr, t.raft)
	return nil
}

// Close 把本地节点从网络中移除。
func (t *Transport) Close() error {
	t.network.Unregister(t.localAddr)
	return nil
}

// Connect 直接把一个地址上的节点加入网络，测试中常用。
func (t *Transport) Connect(peerAddr string, server transport.RPCServer) {
	t.network.Register(peerAddr, server)
}

// Disconnect 从网络中移除一个节点。
func (t *Transport) Disconnect(peerAddr string) {
	t.network.Unregister(peerAddr)
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

// SendRequestVote 向目标节点发送 RequestVote RPC。
// 这是一个同步的、内存中的方法调用。
func (t *Transport) SendRequestVote(target string, req *param.RequestVoteArgs, resp *param.RequestVoteReply) error {
	return t.network.call(t.localAddr, t.resolve(target), func(peer transport.RPCServer) error {
		return peer.RequestVote(req, resp)
	})
}

// SendAppendEntries 向目标节点发送 AppendEntries RPC。
func (t *Transport) SendAppendEntries(target string, req *param.AppendEntriesArgs, resp *param.AppendEntriesReply) error {
	return t.network.call(t.localAddr, t.resolve(target), func(peer transport.RPCServer) error {
		return peer.AppendEntries(req, resp)
	})
}

// SendPropose 将客户端命令发送到目标 Raft 节点。
func (t *Transport) SendPropose(target string, req *param.ProposeArgs, resp *param.ProposeReply) error {
	return t.network.call(t.localAddr, t.resolve(target), func(peer transport.RPCServer) error {
		return peer.Propose(req, resp)
	})
}
