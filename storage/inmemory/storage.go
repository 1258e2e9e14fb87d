package inmemory

import (
	"errors"
	"sync"

	"github.com/xmh1011/go-raft-actor/param"
)

var (
	ErrLogNotFound      = errors.New("log entry not found")
	ErrIndexOutOfBounds = errors.New("index is out of bounds")
)

// Storage 是 Storage 接口的一个线程安全的内存实现，主要用于测试。
type Storage struct {
	mu sync.RWMutex

	// HardState (term, votedFor)
	hardState param.HardState

	// log[i] 对应的 Raft 索引是 i+1。
	log []param.LogEntry
}

// NewStorage 创建一个新的内存存储实例。
func NewStorage() *Storage {
	return &Storage{
		hardState: param.NewHardState(),
		log:       make([]param.LogEntry, 0),
	}
}

// --- HardState 操作 ---

func (s *Storage) SetState(state param.HardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hardState = state
	return nil
}

func (s *Storage) GetState() (param.HardState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hardState, nil
}

// --- 日志条目操作 ---

func (s *Storage) Append(entries ...param.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.log = append(s.log, cloneEntry(e))
	}
	return nil
}

func (s *Storage) Get(index uint64) (*param.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 1 || index > uint64(len(s.log)) {
		return nil, ErrLogNotFound
	}
	entry := cloneEntry(s.log[index-1])
	return &entry, nil
}

func (s *Storage) TruncateFrom(index uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 1 {
		return ErrIndexOutOfBounds
	}
	if index > uint64(len(s.log)) {
		// 如果索引超出当前日志范围，无需截断
		return nil
	}
	s.log = s.log[:index-1]
	return nil
}

// --- 日志元数据操作 ---

func (s *Storage) LastIndex() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.log)), nil
}

func (s *Storage) LastTerm() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.log) == 0 {
		return 0, nil
	}
	return s.log[len(s.log)-1].Term, nil
}

func (s *Storage) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log), nil
}

// Close 在内存实现中是无操作的。
func (s *Storage) Close() error {
	return nil
}

// cloneEntry 复制 Payload，避免调用方修改已存储的条目。
func cloneEntry(e param.LogEntry) param.LogEntry {
	if e.Payload != nil {
		e.Payload = append([]byte(nil), e.Payload...)
	}
	return e
}
