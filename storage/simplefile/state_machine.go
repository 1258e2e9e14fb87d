package simplefile

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
)

var ErrKeyNotFound = errors.New("key not found")

// StateMachine implements a simple file-based key-value store.
// It persists the entire state (map) to a file on every write operation.
// The file mirrors the current state only: lastApplied is not persisted, so the node
// replays the log from index 1 after a restart and the machine starts empty on open.
type StateMachine struct {
	mu       sync.RWMutex
	filePath string
	kvStore  map[string]string
}

// NewStateMachine creates a new simple file-based state machine.
// Any state left in filePath by a previous run is discarded.
func NewStateMachine(filePath string) (*StateMachine, error) {
	sm := &StateMachine{
		filePath: filePath,
		kvStore:  make(map[string]string),
	}
	if err := sm.persist(); err != nil {
		return nil, err
	}
	return sm, nil
}

func (sm *StateMachine) persist() error {
	data, err := json.Marshal(sm.kvStore)
	if err != nil {
		return err
	}

	// Write to temp file and rename for atomicity
	tmpPath := sm.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, sm.filePath)
}

// Apply applies a committed command to the state machine.
func (sm *StateMachine) Apply(command []byte) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var cmd param.KVCommand
	if err := json.Unmarshal(command, &cmd); err != nil {
		log.WithError(err).Warn("[State Machine] skipping command that is not a KV command")
		return
	}

	switch cmd.Op {
	case param.OpSet:
		sm.kvStore[cmd.Key] = cmd.Value
	case param.OpDelete:
		delete(sm.kvStore, cmd.Key)
	default:
		log.WithField("op", cmd.Op).Warn("[State Machine] unknown operation")
		return
	}

	if err := sm.persist(); err != nil {
		log.WithError(err).WithField("file", sm.filePath).Error("[State Machine] failed to persist state")
	}
}

// Get queries a key from the state machine.
func (sm *StateMachine) Get(key string) (string, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if val, ok := sm.kvStore[key]; ok {
		return val, nil
	}
	return "", ErrKeyNotFound
}
