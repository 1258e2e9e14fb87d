package param

// EntryKind 区分日志条目的类型。
type EntryKind uint8

const (
	// EntryCommand 是需要交给状态机执行的客户端命令。
	EntryCommand EntryKind = iota
	// EntryConfiguration 记录集群成员信息，状态机不会看到它。
	EntryConfiguration
)

func (k EntryKind) String() string {
	switch k {
	case EntryCommand:
		return "Command"
	case EntryConfiguration:
		return "Configuration"
	default:
		return "Unknown"
	}
}

// LogEntry represents a single log entry in the Raft log.
// Its index is its 1-based position in the log and is not stored in the entry.
type LogEntry struct {
	Term    uint64
	Kind    EntryKind
	Payload []byte
}

// NewLogEntry creates a new command LogEntry.
func NewLogEntry(term uint64, payload []byte) LogEntry {
	return LogEntry{
		Term:    term,
		Kind:    EntryCommand,
		Payload: payload,
	}
}

// NewConfigurationEntry creates a LogEntry carrying an encoded membership.
func NewConfigurationEntry(term uint64, payload []byte) LogEntry {
	return LogEntry{
		Term:    term,
		Kind:    EntryConfiguration,
		Payload: payload,
	}
}

// NoVote 表示当前任期内尚未投票。
const NoVote = -1

// HardState 定义需要持久化的状态（必须稳定存储）
type HardState struct {
	CurrentTerm uint64 // 当前任期号
	VotedFor    int    // 当前任期内投票给的候选者ID（NoVote 表示未投票）
}

// NewHardState returns the state of a node that has never run.
func NewHardState() HardState {
	return HardState{CurrentTerm: 0, VotedFor: NoVote}
}
