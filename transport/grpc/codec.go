package grpc

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/xmh1011/go-raft-actor/param"
)

// codecName 出现在 content-type 中：application/grpc+raftwire。
const codecName = "raftwire"

var errWireType = errors.New("raftwire: unexpected wire type")

// wireCodec 按照 raft.proto 中定义的字段编号，直接用 protobuf 的线格式编解码 param 中的消息。
// 它实现了 encoding.Codec，服务端和客户端都强制使用它。
type wireCodec struct{}

func (wireCodec) Name() string {
	return codecName
}

func (wireCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case *param.RequestVoteArgs:
		return marshalRequestVoteArgs(nil, m), nil
	case *param.RequestVoteReply:
		return marshalRequestVoteReply(nil, m), nil
	case *param.AppendEntriesArgs:
		return marshalAppendEntriesArgs(nil, m), nil
	case *param.AppendEntriesReply:
		return marshalAppendEntriesReply(nil, m), nil
	case *param.ProposeArgs:
		return marshalProposeArgs(nil, m), nil
	case *param.ProposeReply:
		return marshalProposeReply(nil, m), nil
	default:
		return nil, fmt.Errorf("raftwire: cannot marshal %T", v)
	}
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *param.RequestVoteArgs:
		*m = param.RequestVoteArgs{}
		return unmarshalRequestVoteArgs(data, m)
	case *param.RequestVoteReply:
		*m = param.RequestVoteReply{}
		return unmarshalRequestVoteReply(data, m)
	case *param.AppendEntriesArgs:
		*m = param.AppendEntriesArgs{}
		return unmarshalAppendEntriesArgs(data, m)
	case *param.AppendEntriesReply:
		*m = param.AppendEntriesReply{}
		return unmarshalAppendEntriesReply(data, m)
	case *param.ProposeArgs:
		*m = param.ProposeArgs{}
		return unmarshalProposeArgs(data, m)
	case *param.ProposeReply:
		*m = param.ProposeReply{}
		return unmarshalProposeReply(data, m)
	default:
		return fmt.Errorf("raftwire: cannot unmarshal into %T", v)
	}
}

// --- encoding ---

// 与 proto3 一致，零值字段不写入。

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendInt 按 int64 语义编码，NoVote(-1) 占 10 个字节。
func appendInt(b []byte, num protowire.Number, v int) []byte {
	return appendUint(b, num, uint64(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendUint(b, num, protowire.EncodeBool(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func marshalRequestVoteArgs(b []byte, m *param.RequestVoteArgs) []byte {
	b = appendUint(b, 1, m.Term)
	b = appendInt(b, 2, m.CandidateID)
	b = appendUint(b, 3, m.LastLogIndex)
	b = appendUint(b, 4, m.LastLogTerm)
	return b
}

func marshalRequestVoteReply(b []byte, m *param.RequestVoteReply) []byte {
	b = appendUint(b, 1, m.Term)
	b = appendBool(b, 2, m.VoteGranted)
	return b
}

func marshalLogEntry(b []byte, e *param.LogEntry) []byte {
	b = appendUint(b, 1, e.Term)
	b = appendUint(b, 2, uint64(e.Kind))
	b = appendBytes(b, 3, e.Payload)
	return b
}

func marshalAppendEntriesArgs(b []byte, m *param.AppendEntriesArgs) []byte {
	b = appendUint(b, 1, m.Term)
	b = appendInt(b, 2, m.LeaderID)
	b = appendUint(b, 3, m.PrevLogIndex)
	b = appendUint(b, 4, m.PrevLogTerm)
	for i := range m.Entries {
		// 空条目也必须占位，否则接收方会少一条日志
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalLogEntry(nil, &m.Entries[i]))
	}
	b = appendUint(b, 6, m.LeaderCommit)
	return b
}

func marshalAppendEntriesReply(b []byte, m *param.AppendEntriesReply) []byte {
	b = appendUint(b, 1, m.Term)
	b = appendBool(b, 2, m.Success)
	return b
}

func marshalProposeArgs(b []byte, m *param.ProposeArgs) []byte {
	return appendBytes(b, 1, m.Command)
}

func marshalProposeReply(b []byte, m *param.ProposeReply) []byte {
	b = appendUint(b, 1, m.Index)
	b = appendUint(b, 2, m.Term)
	b = appendBool(b, 3, m.IsLeader)
	b = appendInt(b, 4, m.LeaderHint)
	return b
}

// --- decoding ---

// fieldFunc 解析一个字段的值，返回消费的字节数。
// 未知字段交给 skipField 处理，保证向前兼容。
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func consumeMessage(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("raftwire: field %d: %w", num, err)
		}
		b = b[m:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func readUint(typ protowire.Type, b []byte, dst *uint64) (int, error) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func readInt(typ protowire.Type, b []byte, dst *int) (int, error) {
	var v uint64
	n, err := readUint(typ, b, &v)
	if err != nil {
		return 0, err
	}
	*dst = int(int64(v))
	return n, nil
}

func readBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	var v uint64
	n, err := readUint(typ, b, &v)
	if err != nil {
		return 0, err
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

// readBytes 会拷贝数据，grpc 可能在调用返回后复用底层缓冲区。
func readBytes(typ protowire.Type, b []byte, dst *[]byte) (int, error) {
	if typ != protowire.BytesType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = append([]byte(nil), v...)
	return n, nil
}

func unmarshalRequestVoteArgs(data []byte, m *param.RequestVoteArgs) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return readUint(typ, b, &m.Term)
		case 2:
			return readInt(typ, b, &m.CandidateID)
		case 3:
			return readUint(typ, b, &m.LastLogIndex)
		case 4:
			return readUint(typ, b, &m.LastLogTerm)
		default:
			return skipField(num, typ, b)
		}
	})
}

func unmarshalRequestVoteReply(data []byte, m *param.RequestVoteReply) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return readUint(typ, b, &m.Term)
		case 2:
			return readBool(typ, b, &m.VoteGranted)
		default:
			return skipField(num, typ, b)
		}
	})
}

func unmarshalLogEntry(data []byte, e *param.LogEntry) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return readUint(typ, b, &e.Term)
		case 2:
			var kind uint64
			n, err := readUint(typ, b, &kind)
			e.Kind = param.EntryKind(kind)
			return n, err
		case 3:
			return readBytes(typ, b, &e.Payload)
		default:
			return skipField(num, typ, b)
		}
	})
}

func unmarshalAppendEntriesArgs(data []byte, m *param.AppendEntriesArgs) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return readUint(typ, b, &m.Term)
		case 2:
			return readInt(typ, b, &m.LeaderID)
		case 3:
			return readUint(typ, b, &m.PrevLogIndex)
		case 4:
			return readUint(typ, b, &m.PrevLogTerm)
		case 5:
			if typ != protowire.BytesType {
				return 0, errWireType
			}
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			var entry param.LogEntry
			if err := unmarshalLogEntry(v, &entry); err != nil {
				return 0, err
			}
			m.Entries = append(m.Entries, entry)
			return n, nil
		case 6:
			return readUint(typ, b, &m.LeaderCommit)
		default:
			return skipField(num, typ, b)
		}
	})
}

func unmarshalAppendEntriesReply(data []byte, m *param.AppendEntriesReply) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return readUint(typ, b, &m.Term)
		case 2:
			return readBool(typ, b, &m.Success)
		default:
			return skipField(num, typ, b)
		}
	})
}

func unmarshalProposeArgs(data []byte, m *param.ProposeArgs) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return readBytes(typ, b, &m.Command)
		}
		return skipField(num, typ, b)
	})
}

func unmarshalProposeReply(data []byte, m *param.ProposeReply) error {
	return consumeMessage(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return readUint(typ, b, &m.Index)
		case 2:
			return readUint(typ, b, &m.Term)
		case 3:
			return readBool(typ, b, &m.IsLeader)
		case 4:
			return readInt(typ, b, &m.LeaderHint)
		default:
			return skipField(num, typ, b)
		}
	})
}
