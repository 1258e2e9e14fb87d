package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xmh1011/go-raft-actor/client"
	"github.com/xmh1011/go-raft-actor/config"
	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/transport"
	"github.com/xmh1011/go-raft-actor/transport/factory"
)

var (
	peersStr      string
	transportType string
	op            string
	key           string
	value         string
	timeout       time.Duration
	verbose       bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "raft-client",
		Short:        "A client for the Raft cluster",
		SilenceUsage: true,
		RunE:         runClient,
	}

	rootCmd.Flags().StringVar(&peersStr, "peers", "1=127.0.0.1:8001,2=127.0.0.1:8002,3=127.0.0.1:8003", "Comma-separated list of peer ID=Address pairs")
	rootCmd.Flags().StringVar(&transportType, "transport", transport.GrpcTransport, "Transport type: tcp, grpc")
	rootCmd.Flags().StringVar(&op, "op", param.OpSet, "Operation type: set or delete")
	rootCmd.Flags().StringVar(&key, "key", "foo", "Key to operate on")
	rootCmd.Flags().StringVar(&value, "value", "", "Value to set (only for set operation)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "How long to keep retrying the command")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every attempt")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildCommand 把命令行参数编码成 KV 状态机能识别的命令。
func buildCommand(op, key, value string) ([]byte, error) {
	switch op {
	case param.OpSet:
	case param.OpDelete:
		value = ""
	default:
		return nil, fmt.Errorf("unsupported operation %q: use %s or %s", op, param.OpSet, param.OpDelete)
	}
	if key == "" {
		return nil, fmt.Errorf("key must not be empty")
	}
	return json.Marshal(param.KVCommand{Op: op, Key: key, Value: value})
}

func runClient(cmd *cobra.Command, _ []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	// 1. 解析 peers
	peerMap, err := config.ParsePeers(peersStr)
	if err != nil {
		return err
	}

	// 2. 构造命令
	cmdBytes, err := buildCommand(op, key, value)
	if err != nil {
		return err
	}

	// 3. 初始化网络传输，端口 0 让系统分配客户端自己的监听地址
	trans, err := factory.NewTransport(transportType, "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to initialize transport: %w", err)
	}
	defer trans.Close()
	trans.SetPeers(peerMap)

	// 4. 发送命令
	c := client.NewClient(peerMap, trans)
	c.SetTimeout(timeout)
	log.Debugf("Sending command: %s key=%s val=%s (via %s)", op, key, value, transportType)

	reply, err := c.SendCommand(cmd.Context(), cmdBytes)
	if err != nil {
		return err
	}
	fmt.Printf("Accepted by leader %d at index %d (term %d)\n", reply.LeaderHint, reply.Index, reply.Term)
	return nil
}
