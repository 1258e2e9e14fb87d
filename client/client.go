package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultRetryInterval = 100 * time.Millisecond
)

// ErrTimeout 表示在超时之前没有任何 Leader 接受命令。
var ErrTimeout = errors.New("client: command timed out")

// clientAction 定义了客户端在处理完一次 RPC 响应后应采取的下一步动作。
type clientAction int

const (
	actionSuccess clientAction = iota // 动作：成功，可以返回结果
	actionRetry                       // 动作：重试，应继续循环
)

// Client 封装了与 Raft 集群交互的逻辑。
// 它把命令发送给已知的 Leader，遇到重定向或网络错误时换一个节点重试。
type Client struct {
	clientID      string              // 客户端的唯一ID，只用于日志关联
	servers       []int               // 集群中所有节点的 ID，升序
	next          int                 // 没有 Leader 线索时轮询的位置
	leaderHint    int                 // 当前已知的 Leader ID，NoVote 表示未知
	trans         transport.Transport // 用于网络通信的传输层
	timeout       time.Duration
	retryInterval time.Duration
	logger        *log.Entry
}

// NewClient 创建一个新的客户端实例。trans 需要已经通过 SetPeers 知道 servers 中的地址。
func NewClient(servers map[int]string, trans transport.Transport) *Client {
	ids := make([]int, 0, len(servers))
	for id := range servers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	clientID := uuid.NewString()
	return &Client{
		clientID:      clientID,
		servers:       ids,
		leaderHint:    param.NoVote, // 初始时不知道谁是 Leader
		trans:         trans,
		timeout:       DefaultTimeout,
		retryInterval: DefaultRetryInterval,
		logger:        log.WithField("client", clientID),
	}
}

// SetTimeout 设置单条命令的总超时时间。
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SendCommand 向 Raft 集群发送一个命令，返回命令被追加到的日志位置。
// 返回成功只代表 Leader 接受了命令，不代表它已经提交。
func (c *Client) SendCommand(ctx context.Context, command []byte) (*param.ProposeReply, error) {
	if len(c.servers) == 0 {
		return nil, errors.New("client: no servers configured")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request := param.NewProposeArgs(command)
	for attempt := 1; ; attempt++ {
		reply, action := c.attemptOnce(request, attempt)
		if action == actionSuccess {
			return reply, nil
		}

		select {
		case <-ctx.Done():
			c.logger.Warnf("[Client] Command timed out after %d attempts", attempt)
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-time.After(c.retryInterval):
		}
	}
}

// attemptOnce 负责执行单次向集群发送命令的尝试。
func (c *Client) attemptOnce(request *param.ProposeArgs, attempt int) (*param.ProposeReply, clientAction) {
	targetNodeID := c.selectTargetNode()
	c.logger.Debugf("[Client] Sending command (attempt %d) to node %d", attempt, targetNodeID)

	reply := &param.ProposeReply{}
	err := c.trans.SendPropose(strconv.Itoa(targetNodeID), request, reply)

	return reply, c.decideNextAction(targetNodeID, reply, err)
}

// selectTargetNode 负责根据当前已知的 Leader 信息选择一个发送请求的目标节点。
// 没有线索时按 ID 顺序轮询。
func (c *Client) selectTargetNode() int {
	if c.leaderHint != param.NoVote && c.isServer(c.leaderHint) {
		return c.leaderHint
	}
	id := c.servers[c.next%len(c.servers)]
	c.next++
	return id
}

func (c *Client) isServer(id int) bool {
	i := sort.SearchInts(c.servers, id)
	return i < len(c.servers) && c.servers[i] == id
}

// decideNextAction 封装了所有处理 RPC 响应的决策逻辑。
func (c *Client) decideNextAction(targetNodeID int, reply *param.ProposeReply, err error) clientAction {
	if err != nil {
		c.logger.Debugf("[Client] Error sending request to node %d: %v. Retrying...", targetNodeID, err)
		c.leaderHint = param.NoVote
		return actionRetry
	}

	if !reply.IsLeader {
		c.logger.Debugf("[Client] Node %d is not leader. New leader hint: %d. Retrying...", targetNodeID, reply.LeaderHint)
		c.leaderHint = reply.LeaderHint
		return actionRetry
	}

	c.logger.Infof("[Client] Command accepted by leader %d at index %d (term %d)", targetNodeID, reply.Index, reply.Term)
	c.leaderHint = targetNodeID
	return actionSuccess
}
