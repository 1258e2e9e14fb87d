package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xmh1011/go-raft-actor/config"
	"github.com/xmh1011/go-raft-actor/raft"
	"github.com/xmh1011/go-raft-actor/storage"
	"github.com/xmh1011/go-raft-actor/transport"
	"github.com/xmh1011/go-raft-actor/transport/factory"
)

// Server 把一个 Raft 节点和它的存储、传输层组装在一起。
type Server struct {
	cfg       config.Config
	raft      *raft.Raft
	transport transport.Transport
	store     storage.Storage
	logger    *logrus.Logger
}

// NewServer creates a new Server instance
func NewServer(cfg config.Config, logger *logrus.Logger) (*Server, error) {
	// 1. Initialize storage
	store, stateMachine, err := storage.NewStorage(cfg.Storage, cfg.DataDir, cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// 2. Initialize transport
	trans, err := factory.NewTransport(cfg.Transport, cfg.LocalAddr())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize transport: %w", err)
	}
	trans.SetPeers(cfg.Peers)

	// 3. Create Raft node
	rf, err := raft.NewRaft(cfg.ToRaft(logger), store, stateMachine, trans)
	if err != nil {
		trans.Close()
		store.Close()
		return nil, fmt.Errorf("failed to create raft node: %w", err)
	}

	return &Server{
		cfg:       cfg,
		raft:      rf,
		transport: trans,
		store:     store,
		logger:    logger,
	}, nil
}

// Run 启动传输层并驱动节点，直到 ctx 结束或节点因存储故障停止。返回前释放所有资源。
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	s.transport.RegisterRaft(s.raft)
	if err := s.transport.Start(); err != nil {
		return fmt.Errorf("failed to start transport service: %w", err)
	}
	s.logger.Infof("Raft node %d serving %s transport on %s", s.cfg.NodeID, s.cfg.Transport, s.transport.Addr())

	if err := s.raft.Run(ctx); err != nil {
		return fmt.Errorf("raft node %d stopped: %w", s.cfg.NodeID, err)
	}
	return nil
}

// Stop 让 Run 返回。
func (s *Server) Stop() {
	s.raft.Stop()
}

func (s *Server) close() {
	s.logger.Info("Shutting down...")
	if err := s.transport.Close(); err != nil {
		s.logger.Warnf("Failed to close transport: %v", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warnf("Failed to close store: %v", err)
	}
	s.logger.Infof("Node %d stopped", s.cfg.NodeID)
}
