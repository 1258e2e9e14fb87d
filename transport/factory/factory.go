// Package factory builds a transport.Transport from its configured kind.
// It lives apart from package transport because every implementation imports transport.
package factory

import (
	"fmt"
	"sync"

	"github.com/xmh1011/go-raft-actor/transport"
	"github.com/xmh1011/go-raft-actor/transport/grpc"
	"github.com/xmh1011/go-raft-actor/transport/inmemory"
	"github.com/xmh1011/go-raft-actor/transport/tcp"
)

var (
	networkOnce sync.Once
	network     *inmemory.Network
)

// processNetwork 返回进程内共享的模拟网络，同一进程中的 inmemory 节点都接入它。
func processNetwork() *inmemory.Network {
	networkOnce.Do(func() {
		network = inmemory.NewNetwork()
	})
	return network
}

// Option 调整 NewTransport 的行为。
type Option func(*options)

type options struct {
	network *inmemory.Network
}

// WithNetwork 让 inmemory transport 接入指定的模拟网络，而不是进程共享的网络。
// 测试用它把彼此的分区和丢包设置隔离开。
func WithNetwork(network *inmemory.Network) Option {
	return func(o *options) {
		o.network = network
	}
}

// NewTransport 根据类型创建 Transport。tcp 和 grpc 会立即在 addr 上监听。
// 没有 WithNetwork 时 inmemory transport 接入进程共享的网络。
func NewTransport(kind, addr string, opts ...Option) (transport.Transport, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case transport.InmemoryTransport:
		network := o.network
		if network == nil {
			network = processNetwork()
		}
		return inmemory.NewTransport(addr, network), nil
	case transport.TCPTransport:
		return tcp.NewTransport(addr)
	case transport.GrpcTransport:
		return grpc.NewTransport(addr)
	default:
		return nil, fmt.Errorf("unknown transport type: %s", kind)
	}
}
