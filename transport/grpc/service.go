package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
)

const (
	serviceName         = "raftactor.Raft"
	requestVoteMethod   = "/" + serviceName + "/RequestVote"
	appendEntriesMethod = "/" + serviceName + "/AppendEntries"
	proposeMethod       = "/" + serviceName + "/Propose"
)

// raftServiceDesc 对应 raft.proto 中的 service Raft。
// 注册时的实现就是本地的 transport.RPCServer。
var raftServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*transport.RPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RequestVote",
			Handler: unaryHandler(requestVoteMethod, param.NewRequestVoteReply,
				func(s transport.RPCServer, args *param.RequestVoteArgs, reply *param.RequestVoteReply) error {
					return s.RequestVote(args, reply)
				}),
		},
		{
			MethodName: "AppendEntries",
			Handler: unaryHandler(appendEntriesMethod, param.NewAppendEntriesReply,
				func(s transport.RPCServer, args *param.AppendEntriesArgs, reply *param.AppendEntriesReply) error {
					return s.AppendEntries(args, reply)
				}),
		},
		{
			MethodName: "Propose",
			Handler: unaryHandler(proposeMethod, func() *param.ProposeReply { return &param.ProposeReply{} },
				func(s transport.RPCServer, args *param.ProposeArgs, reply *param.ProposeReply) error {
					return s.Propose(args, reply)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "raft.proto",
}

// unaryHandler 生成一个 grpc.MethodHandler：解码请求，调用本地节点，返回响应。
func unaryHandler[Req, Resp any](
	fullMethod string,
	newReply func() *Resp,
	invoke func(transport.RPCServer, *Req, *Resp) error,
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		args := new(Req)
		if err := dec(args); err != nil {
			return nil, err
		}
		call := func(_ context.Context, req any) (any, error) {
			reply := newReply()
			if err := invoke(srv.(transport.RPCServer), req.(*Req), reply); err != nil {
				return nil, err
			}
			return reply, nil
		}
		if interceptor == nil {
			return call(ctx, args)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, args, info, call)
	}
}
