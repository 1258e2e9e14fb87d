package storage

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/storage/inmemory"
	"github.com/xmh1011/go-raft-actor/storage/simplefile"
)

//go:generate mockgen -destination=mock_storage.go -package=storage github.com/xmh1011/go-raft-actor/storage Storage,StateMachine

const (
	InmemoryStorage   = "inmemory"
	SimpleFileStorage = "simplefile"
)

// Log 是复制日志的最小契约。索引从 1 开始且连续。
// 任何返回的 error 都意味着日志状态未知，调用方必须停止使用该节点。
type Log interface {
	// Append 将条目依次追加到日志末尾。
	Append(entries ...param.LogEntry) error
	// TruncateFrom 删除 index（包含）及之后的所有条目。
	TruncateFrom(index uint64) error
	// Get 返回指定索引的条目；索引不存在时返回 ErrLogNotFound。
	Get(index uint64) (*param.LogEntry, error)
	// LastIndex 返回最后一条条目的索引，空日志为 0。
	LastIndex() (uint64, error)
	// LastTerm 返回最后一条条目的任期，空日志为 0。
	LastTerm() (uint64, error)
	// Len 返回日志中条目的数量。
	Len() (int, error)
}

// Storage is an interface for stable storage providers in a Raft implementation.
// 它负责持久化 Raft 的核心状态（currentTerm 和 votedFor）以及日志条目。
type Storage interface {
	Log

	// SetState 原子地设置 HardState (currentTerm, votedFor)。
	SetState(state param.HardState) error
	// GetState 获取最后保存的 HardState。
	GetState() (param.HardState, error)

	// Close 释放底层资源。
	Close() error
}

// StateMachine 定义了应用层状态机需要实现的接口。
// Apply 对每一条已提交的 Command 条目按索引顺序恰好调用一次。
// lastApplied 不持久化，节点重启后从索引 1 重新应用整个日志，
// 所以状态机在节点启动时必须是空的，不能加载上一次运行留下的状态。
type StateMachine interface {
	Apply(command []byte)
}

// NewStorage 根据类型创建存储后端和配套的示例 KV 状态机。
func NewStorage(storageType, dataDir string, nodeID int) (Storage, StateMachine, error) {
	switch storageType {
	case InmemoryStorage:
		log.Info("Using in-memory storage")
		return inmemory.NewStorage(), inmemory.NewStateMachine(), nil
	case SimpleFileStorage:
		nodeDir := filepath.Join(dataDir, fmt.Sprintf("node-%d", nodeID))
		if err := os.MkdirAll(nodeDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		storagePath := filepath.Join(nodeDir, "raft_storage.gob")
		smPath := filepath.Join(nodeDir, "raft_sm.json")

		store, err := simplefile.NewStorage(storagePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create simplefile storage: %w", err)
		}

		stateMachine, err := simplefile.NewStateMachine(smPath)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to create simplefile state machine: %w", err)
		}
		log.WithField("dir", nodeDir).Info("Using simple file storage")
		return store, stateMachine, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
