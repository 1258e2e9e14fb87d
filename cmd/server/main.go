package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xmh1011/go-raft-actor/config"
)

// flags 保存命令行参数，只有显式设置的参数才会覆盖配置文件。
type flags struct {
	configPath    string
	nodeID        int
	peersStr      string
	dataDir       string
	transportType string
	storageType   string
	logLevel      string
	logFormat     string
}

func main() {
	if err := newRootCmd(runServer).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd 创建根命令，解析好的配置交给 run 执行。
func newRootCmd(run func(ctx context.Context, cfg config.Config) error) *cobra.Command {
	var f flags
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:          "raft-server",
		Short:        "Run a single Raft node",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	rootCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().IntVar(&f.nodeID, "id", defaults.NodeID, "Node ID")
	rootCmd.Flags().StringVar(&f.peersStr, "peers", "1=127.0.0.1:8001,2=127.0.0.1:8002,3=127.0.0.1:8003", "Comma-separated list of peer ID=Address pairs")
	rootCmd.Flags().StringVar(&f.dataDir, "data", defaults.DataDir, "Directory to store raft data")
	rootCmd.Flags().StringVar(&f.transportType, "transport", defaults.Transport, "Transport type: tcp, grpc, inmemory")
	rootCmd.Flags().StringVar(&f.storageType, "storage", defaults.Storage, "Storage type: inmemory or simplefile")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", defaults.Log.Level, "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&f.logFormat, "log-format", defaults.Log.Format, "Log format: text or json")
	return rootCmd
}

// loadConfig 读取配置文件（如果有），再用显式设置的命令行参数覆盖。
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("id") {
		cfg.NodeID = f.nodeID
	}
	if changed("peers") {
		peers, err := config.ParsePeers(f.peersStr)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse peers: %w", err)
		}
		cfg.Peers = peers
	}
	if changed("data") {
		cfg.DataDir = f.dataDir
	}
	if changed("transport") {
		cfg.Transport = f.transportType
	}
	if changed("storage") {
		cfg.Storage = f.storageType
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	srv, err := NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(ctx)
}
