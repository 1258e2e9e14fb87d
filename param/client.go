package param

// ProposeArgs 封装了客户端提交给 Leader 的命令。
type ProposeArgs struct {
	Command []byte // 需要在状态机上执行的命令（不透明字节）
}

// NewProposeArgs 创建一个新的 ProposeArgs 实例。
func NewProposeArgs(command []byte) *ProposeArgs {
	return &ProposeArgs{Command: command}
}

// ProposeReply 是 Raft 节点对 Propose 请求的响应。
type ProposeReply struct {
	Index      uint64 // 命令被追加到的日志索引
	Term       uint64 // 追加时 Leader 的任期
	IsLeader   bool   // 如果当前节点不是 Leader，此项为 false
	LeaderHint int    // 当前已知的 Leader ID，用于客户端重定向（NoVote 表示未知）
}

// KVCommand 定义了客户端与示例 KV 状态机交互的命令格式。
type KVCommand struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

const (
	OpSet    = "set"
	OpDelete = "delete"
)
