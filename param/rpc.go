package param

// Role 定义节点在共识协议中的角色。
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// RequestVoteArgs See figure 2 in the paper.
type RequestVoteArgs struct {
	Term         uint64 // 候选人的任期号
	CandidateID  int    // 候选人的ID
	LastLogIndex uint64 // 候选人最后一条日志的索引
	LastLogTerm  uint64 // 候选人最后一条日志的任期号
}

func NewRequestVoteArgs(term uint64, candidateID int, lastLogIndex, lastLogTerm uint64) *RequestVoteArgs {
	return &RequestVoteArgs{
		Term:         term,
		CandidateID:  candidateID,
		LastLogIndex: lastLogIndex,
		LastLogTerm:  lastLogTerm,
	}
}

// RequestVoteReply 定义RequestVote RPC响应 See figure 2 in the paper.
type RequestVoteReply struct {
	Term        uint64 // 当前节点的任期号（用于候选者更新自身）
	VoteGranted bool   // 是否投票给候选者
}

func NewRequestVoteReply() *RequestVoteReply {
	return &RequestVoteReply{
		Term:        0,
		VoteGranted: false,
	}
}

// AppendEntriesArgs is the RPC argument for appendEntries requests (log replication + heartbeats).
type AppendEntriesArgs struct {
	Term         uint64     // Leader's current term
	LeaderID     int        // Leader's ID (for follower redirection)
	PrevLogIndex uint64     // Index of log entry immediately preceding new ones
	PrevLogTerm  uint64     // Term of PrevLogIndex entry
	Entries      []LogEntry // Log entries to store (empty for heartbeat)
	LeaderCommit uint64     // Leader's commitIndex
}

// NewAppendEntriesArgs creates a new AppendEntriesArgs struct.
func NewAppendEntriesArgs(term uint64, leaderID int, prevLogIndex, prevLogTerm, leaderCommit uint64, entries []LogEntry) *AppendEntriesArgs {
	return &AppendEntriesArgs{
		Term:         term,
		LeaderID:     leaderID,
		PrevLogIndex: prevLogIndex,
		PrevLogTerm:  prevLogTerm,
		Entries:      entries,
		LeaderCommit: leaderCommit,
	}
}

// AppendEntriesReply is the RPC response for appendEntries requests.
type AppendEntriesReply struct {
	Term    uint64 // Current term (for leader to update itself)
	Success bool   // True if follower contained entry matching PrevLogIndex/Term
}

// NewAppendEntriesReply creates a new AppendEntriesReply struct.
func NewAppendEntriesReply() *AppendEntriesReply {
	return &AppendEntriesReply{
		Term:    0,
		Success: false,
	}
}
