package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/raft"
	"github.com/xmh1011/go-raft-actor/storage"
	"github.com/xmh1011/go-raft-actor/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8001", cfg.LocalAddr())
	assert.Equal(t, raft.DefaultElectionTimeout, cfg.Raft.ElectionTimeout)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
id: 2
peers:
  1: 10.0.0.1:9000
  2: 10.0.0.2:9000
data_dir: /var/lib/raft
transport: tcp
storage: simplefile
raft:
  election_timeout: 500ms
  heartbeat_interval: 100ms
  apply_batch_size: 8
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.NodeID)
	assert.Equal(t, map[int]string{1: "10.0.0.1:9000", 2: "10.0.0.2:9000"}, cfg.Peers)
	assert.Equal(t, "/var/lib/raft", cfg.DataDir)
	assert.Equal(t, transport.TCPTransport, cfg.Transport)
	assert.Equal(t, storage.SimpleFileStorage, cfg.Storage)
	assert.Equal(t, 500*time.Millisecond, cfg.Raft.ElectionTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Raft.HeartbeatInterval)
	assert.Equal(t, 8, cfg.Raft.ApplyBatchSize)
	// 文件中没有的字段保留默认值
	assert.Equal(t, raft.DefaultMaxEntriesPerAppend, cfg.Raft.MaxEntriesPerAppend)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_KeepsDefaultPeers(t *testing.T) {
	cfg, err := Load(writeConfig(t, "id: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Peers, cfg.Peers)
	assert.Equal(t, "127.0.0.1:8003", cfg.LocalAddr())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "id: 1\nunknown_field: true\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = Load(writeConfig(t, "raft:\n  election_timeout: soon\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "no peers", mutate: func(c *Config) { c.Peers = nil }},
		{name: "id not in peers", mutate: func(c *Config) { c.NodeID = 7 }},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "udp" }},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage = "s3" }},
		{name: "heartbeat above timeout", mutate: func(c *Config) { c.Raft.HeartbeatInterval = time.Second }},
		{name: "negative batch", mutate: func(c *Config) { c.Raft.ApplyBatchSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestToRaft(t *testing.T) {
	cfg := Default()
	cfg.NodeID = 2
	cfg.Raft.ElectionTimeout = time.Second
	cfg.Raft.PeerQueueSize = 0
	logger := logrus.New()

	rc := cfg.ToRaft(logger)
	assert.Equal(t, 2, rc.ID)
	assert.Equal(t, cfg.Peers, rc.Peers)
	assert.Equal(t, time.Second, rc.ElectionTimeout)
	assert.Equal(t, raft.DefaultPeerQueueSize, rc.PeerQueueSize, "zero values fall back to defaults")
	assert.Same(t, logger, rc.Logger)

	// 修改返回的成员表不影响原配置
	rc.Peers[9] = "elsewhere"
	assert.NotContains(t, cfg.Peers, 9)
}

func TestParsePeers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[int]string
		wantErr bool
	}{
		{
			name:  "three peers",
			input: "1=127.0.0.1:8001,2=127.0.0.1:8002,3=127.0.0.1:8003",
			want:  map[int]string{1: "127.0.0.1:8001", 2: "127.0.0.1:8002", 3: "127.0.0.1:8003"},
		},
		{
			name:  "spaces and trailing comma",
			input: " 1 = a:1 , 2=b:2,",
			want:  map[int]string{1: "a:1", 2: "b:2"},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "missing address", input: "1=", wantErr: true},
		{name: "missing separator", input: "1:8001", wantErr: true},
		{name: "bad id", input: "one=a:1", wantErr: true},
		{name: "duplicate id", input: "1=a:1,1=b:2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeers(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Log{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, err = NewLogger(Log{Level: "debug"})
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	_, err = NewLogger(Log{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(Log{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
