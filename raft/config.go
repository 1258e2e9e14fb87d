package raft

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultElectionTimeout     = 150 * time.Millisecond // 选举超时基准 T，实际取 [T, 2T)
	DefaultHeartbeatInterval   = 30 * time.Millisecond  // 心跳间隔
	DefaultMaxEntriesPerAppend = 64                     // 单个 AppendEntries 最多携带的条目数
	DefaultApplyBatchSize      = 32                     // applier 每轮最多应用的条目数
	DefaultPeerQueueSize       = 16                     // 每个 peer 待发送 RPC 队列的长度
)

// Config 是创建一个 Raft 节点所需的全部配置。
type Config struct {
	// ID 是当前节点的 ID，必须出现在 Peers 中。
	ID int
	// Peers 是完整且固定的集群成员：节点 ID -> 传输地址（包含自身）。
	Peers map[int]string

	ElectionTimeout     time.Duration
	HeartbeatInterval   time.Duration
	MaxEntriesPerAppend int
	ApplyBatchSize      int
	PeerQueueSize       int

	// Clock 为 nil 时使用真实时钟。测试中传入 ManualClock。
	Clock Clock
	// Logger 为 nil 时使用 logrus 的标准 logger。
	Logger *logrus.Logger
	// Seed 决定选举超时的随机序列，0 表示按当前时间和节点 ID 生成。
	Seed int64
}

// DefaultConfig 返回填好默认值的配置。
func DefaultConfig(id int, peers map[int]string) Config {
	cfg := Config{ID: id, Peers: peers}
	cfg.setDefaults()
	return cfg
}

// setDefaults 只填充零值字段。
func (c *Config) setDefaults() {
	if c.ElectionTimeout == 0 {
		c.ElectionTimeout = DefaultElectionTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.MaxEntriesPerAppend == 0 {
		c.MaxEntriesPerAppend = DefaultMaxEntriesPerAppend
	}
	if c.ApplyBatchSize == 0 {
		c.ApplyBatchSize = DefaultApplyBatchSize
	}
	if c.PeerQueueSize == 0 {
		c.PeerQueueSize = DefaultPeerQueueSize
	}
	if c.Clock == nil {
		c.Clock = NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano() + int64(c.ID)
	}
}

// Validate 检查配置是否可以用来启动节点。
func (c *Config) Validate() error {
	if len(c.Peers) == 0 {
		return errors.New("raft: cluster membership is empty")
	}
	if _, ok := c.Peers[c.ID]; !ok {
		return fmt.Errorf("raft: node %d is not a member of the cluster", c.ID)
	}
	for id := range c.Peers {
		if id < 0 {
			return fmt.Errorf("raft: node id %d must not be negative", id)
		}
	}
	if c.ElectionTimeout <= 0 {
		return fmt.Errorf("raft: election timeout must be positive, got %v", c.ElectionTimeout)
	}
	if c.HeartbeatInterval <= 0 || c.HeartbeatInterval >= c.ElectionTimeout {
		return fmt.Errorf("raft: heartbeat interval %v must be positive and below the election timeout %v",
			c.HeartbeatInterval, c.ElectionTimeout)
	}
	if c.MaxEntriesPerAppend <= 0 {
		return fmt.Errorf("raft: max entries per append must be positive, got %d", c.MaxEntriesPerAppend)
	}
	if c.ApplyBatchSize <= 0 {
		return fmt.Errorf("raft: apply batch size must be positive, got %d", c.ApplyBatchSize)
	}
	if c.PeerQueueSize <= 0 {
		return fmt.Errorf("raft: peer queue size must be positive, got %d", c.PeerQueueSize)
	}
	return nil
}
