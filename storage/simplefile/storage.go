package simplefile

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xmh1011/go-raft-actor/param"
)

var (
	ErrLogNotFound      = errors.New("log entry not found")
	ErrIndexOutOfBounds = errors.New("index is out of bounds")
)

// Storage implements a simple file-based storage.
// It persists the entire state to a file on every write operation using encoding/gob.
// Suitable for small clusters and tests of crash recovery.
type Storage struct {
	mu       sync.RWMutex
	filePath string

	// In-memory cache of the state
	hardState param.HardState
	log       []param.LogEntry
}

// persistentData is the structure used for serialization.
type persistentData struct {
	HardState param.HardState
	Log       []param.LogEntry
}

// NewStorage creates a new simple file storage, loading any existing state at filePath.
func NewStorage(filePath string) (*Storage, error) {
	s := &Storage{
		filePath:  filePath,
		hardState: param.NewHardState(),
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", filePath, err)
		}
		if err := s.persist(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Storage) load() error {
	f, err := os.Open(s.filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var data persistentData
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return err
	}

	s.hardState = data.HardState
	s.log = data.Log
	return nil
}

func (s *Storage) persist() error {
	data := persistentData{
		HardState: s.hardState,
		Log:       s.log,
	}

	// Write to temp file and rename for atomicity
	tmpPath := s.filePath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.filePath)
}

// --- HardState Operations ---

func (s *Storage) SetState(state param.HardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.hardState
	s.hardState = state
	if err := s.persist(); err != nil {
		s.hardState = prev
		return err
	}
	return nil
}

func (s *Storage) GetState() (param.HardState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hardState, nil
}

// --- Log Operations ---

func (s *Storage) Append(entries ...param.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prevLen := len(s.log)
	s.log = append(s.log, entries...)
	if err := s.persist(); err != nil {
		s.log = s.log[:prevLen]
		return err
	}
	return nil
}

func (s *Storage) Get(index uint64) (*param.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 1 || index > uint64(len(s.log)) {
		return nil, ErrLogNotFound
	}
	entry := s.log[index-1]
	entry.Payload = append([]byte(nil), entry.Payload...)
	return &entry, nil
}

func (s *Storage) TruncateFrom(index uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 1 {
		return ErrIndexOutOfBounds
	}
	if index > uint64(len(s.log)) {
		return nil
	}

	prev := s.log
	s.log = s.log[:index-1:index-1]
	if err := s.persist(); err != nil {
		s.log = prev
		return err
	}
	return nil
}

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

func (s *Storage) Close() error {
	return nil
}
