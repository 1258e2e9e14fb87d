package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/xmh1011/go-raft-actor/raft"
	"github.com/xmh1011/go-raft-actor/storage"
	"github.com/xmh1011/go-raft-actor/transport"
)

// Config 是一个节点进程的完整配置，可以来自 YAML 文件，也可以被命令行参数覆盖。
//
// 示例：
//
//	id: 1
//	peers:
//	  1: 127.0.0.1:8001
//	  2: 127.0.0.1:8002
//	  3: 127.0.0.1:8003
//	data_dir: raft-data
//	transport: grpc
//	storage: simplefile
//	raft:
//	  election_timeout: 300ms
//	  heartbeat_interval: 50ms
//	log:
//	  level: debug
//	  format: json
type Config struct {
	NodeID    int            `yaml:"id"`
	Peers     map[int]string `yaml:"peers"`
	DataDir   string         `yaml:"data_dir"`
	Transport string         `yaml:"transport"`
	Storage   string         `yaml:"storage"`
	Raft      Raft           `yaml:"raft"`
	Log       Log            `yaml:"log"`
}

// Raft 对应 raft.Config 中可以调整的参数，零值表示使用默认值。
type Raft struct {
	ElectionTimeout     time.Duration `yaml:"election_timeout"`
	HeartbeatInterval   time.Duration `yaml:"heartbeat_interval"`
	MaxEntriesPerAppend int           `yaml:"max_entries_per_append"`
	ApplyBatchSize      int           `yaml:"apply_batch_size"`
	PeerQueueSize       int           `yaml:"peer_queue_size"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text 或 json
}

// Default 返回没有配置文件时使用的配置。
func Default() Config {
	return Config{
		NodeID:    1,
		Peers:     map[int]string{1: "127.0.0.1:8001", 2: "127.0.0.1:8002", 3: "127.0.0.1:8003"},
		DataDir:   "raft-data",
		Transport: transport.GrpcTransport,
		Storage:   storage.InmemoryStorage,
		Raft: Raft{
			ElectionTimeout:     raft.DefaultElectionTimeout,
			HeartbeatInterval:   raft.DefaultHeartbeatInterval,
			MaxEntriesPerAppend: raft.DefaultMaxEntriesPerAppend,
			ApplyBatchSize:      raft.DefaultApplyBatchSize,
			PeerQueueSize:       raft.DefaultPeerQueueSize,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load 读取 YAML 配置文件，文件中没有出现的字段保留默认值。
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// 文件中出现 peers 时整体替换默认成员
	cfg.Peers = nil
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Peers == nil {
		cfg.Peers = Default().Peers
	}
	return cfg, nil
}

// Validate 检查进程级别的配置，共识参数由 raft.Config.Validate 检查。
func (c Config) Validate() error {
	if len(c.Peers) == 0 {
		return errors.New("config: peers must not be empty")
	}
	if _, ok := c.Peers[c.NodeID]; !ok {
		return fmt.Errorf("config: my ID %d not found in peers list", c.NodeID)
	}
	switch c.Transport {
	case transport.InmemoryTransport, transport.TCPTransport, transport.GrpcTransport:
	default:
		return fmt.Errorf("config: unknown transport type: %s", c.Transport)
	}
	switch c.Storage {
	case storage.InmemoryStorage, storage.SimpleFileStorage:
	default:
		return fmt.Errorf("config: unknown storage type: %s", c.Storage)
	}
	rc := c.ToRaft(logrus.StandardLogger())
	return rc.Validate()
}

// LocalAddr 返回本节点在 peers 中的地址。
func (c Config) LocalAddr() string {
	return c.Peers[c.NodeID]
}

// ToRaft 转换为创建节点所需的 raft.Config。
func (c Config) ToRaft(logger *logrus.Logger) raft.Config {
	peers := make(map[int]string, len(c.Peers))
	for id, addr := range c.Peers {
		peers[id] = addr
	}
	cfg := raft.DefaultConfig(c.NodeID, peers)
	cfg.Logger = logger
	if c.Raft.ElectionTimeout != 0 {
		cfg.ElectionTimeout = c.Raft.ElectionTimeout
	}
	if c.Raft.HeartbeatInterval != 0 {
		cfg.HeartbeatInterval = c.Raft.HeartbeatInterval
	}
	if c.Raft.MaxEntriesPerAppend != 0 {
		cfg.MaxEntriesPerAppend = c.Raft.MaxEntriesPerAppend
	}
	if c.Raft.ApplyBatchSize != 0 {
		cfg.ApplyBatchSize = c.Raft.ApplyBatchSize
	}
	if c.Raft.PeerQueueSize != 0 {
		cfg.PeerQueueSize = c.Raft.PeerQueueSize
	}
	return cfg
}

// ParsePeers 解析 "1=127.0.0.1:8001,2=127.0.0.1:8002" 格式的成员列表。
func ParsePeers(peersStr string) (map[int]string, error) {
	peerMap := make(map[int]string)
	for _, p := range strings.Split(peersStr, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || parts[1] == "" {
			return nil, fmt.Errorf("invalid peer format: %s", p)
		}
		pid, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid peer ID: %s", parts[0])
		}
		if _, dup := peerMap[pid]; dup {
			return nil, fmt.Errorf("duplicate peer ID: %d", pid)
		}
		peerMap[pid] = strings.TrimSpace(parts[1])
	}
	if len(peerMap) == 0 {
		return nil, errors.New("no peers given")
	}
	return peerMap, nil
}

// NewLogger 根据日志配置创建 logger。
func NewLogger(c Log) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	logger.SetLevel(level)

	switch c.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", c.Format)
	}
	return logger, nil
}
