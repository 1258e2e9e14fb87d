package inmemory

import (
	"encoding/json"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
)

var ErrKeyNotFound = errors.New("key not found")

// StateMachine 是 StateMachine 接口的一个内存实现，模拟一个简单的KV数据库。
type StateMachine struct {
	mu      sync.RWMutex
	kvStore map[string]string
	applied []string // 按顺序记录收到的原始命令，便于测试校验
}

// NewStateMachine 创建一个新的内存状态机实例。
func NewStateMachine() *StateMachine {
	return &StateMachine{
		kvStore: make(map[string]string),
	}
}

// Apply 将一条已提交的命令应用到状态机。
// 无法解析的命令只会被记录，不会影响共识层。
func (sm *StateMachine) Apply(command []byte) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.applied = append(sm.applied, string(command))

	var cmd param.KVCommand
	if err := json.Unmarshal(command, &cmd); err != nil {
		log.WithError(err).Debug("[State Machine] command is not a KV command, recorded only")
		return
	}

	switch cmd.Op {
	case param.OpSet:
		sm.kvStore[cmd.Key] = cmd.Value
	case param.OpDelete:
		delete(sm.kvStore, cmd.Key)
	default:
		log.WithField("op", cmd.Op).Warn("[State Machine] unknown operation")
	}
}

// Get 从状态机中查询一个键的值。
func (sm *StateMachine) Get(key string) (string, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if val, ok := sm.kvStore[key]; ok {
		return val, nil
	}
	return "", ErrKeyNotFound
}

// Applied 返回按应用顺序排列的所有原始命令。
func (sm *StateMachine) Applied() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return append([]string(nil), sm.applied...)
}
