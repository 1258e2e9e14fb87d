package raft

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/param"
	"github.com/xmh1011/go-raft-actor/storage"
	"github.com/xmh1011/go-raft-actor/storage/inmemory"
	"github.com/xmh1011/go-raft-actor/transport"
)

func TestApplyCommitted(t *testing.T) {
	t.Run("Applies in batches and yields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := inmemory.NewStorage()
		var calls []*gomock.Call
		sm := storage.NewMockStateMachine(ctrl)
		for i := 1; i <= 5; i++ {
			payload := []byte{byte(i)}
			require.NoError(t, store.Append(param.NewLogEntry(1, payload)))
			calls = append(calls, sm.EXPECT().Apply(payload).Times(1))
		}
		gomock.InOrder(calls...)

		cfg, _ := testConfig(1, 1, 2, 3)
		cfg.ApplyBatchSize = 2
		r := newTestRaft(t, cfg, store, sm, transport.NewMockTransport(ctrl))
		r.commitIndex = 5

		r.applyCommitted()
		assert.Equal(t, uint64(2), r.lastApplied, "one batch per run")
		assert.Len(t, r.applyCh, 1, "the applier re-arms itself while work remains")

		drain(r)
		assert.Equal(t, uint64(5), r.lastApplied)
		assert.Empty(t, r.applyCh)
	})

	t.Run("Skips configuration entries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := inmemory.NewStorage()
		require.NoError(t, store.Append(
			param.NewConfigurationEntry(1, []byte(`{"1":"a"}`)),
			param.NewLogEntry(1, []byte("cmd")),
		))
		sm := storage.NewMockStateMachine(ctrl)
		sm.EXPECT().Apply([]byte("cmd")).Times(1)

		cfg, _ := testConfig(1, 1, 2, 3)
		r := newTestRaft(t, cfg, store, sm, transport.NewMockTransport(ctrl))
		r.commitIndex = 2
		r.scheduleApply()
		drain(r)

		assert.Equal(t, uint64(2), r.lastApplied)
	})

	t.Run("Never passes commitIndex", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := inmemory.NewStorage()
		require.NoError(t, store.Append(entries(1, 1, 1)...))
		sm := storage.NewMockStateMachine(ctrl)
		sm.EXPECT().Apply(gomock.Any()).Times(1)

		cfg, _ := testConfig(1, 1, 2, 3)
		r := newTestRaft(t, cfg, store, sm, transport.NewMockTransport(ctrl))
		r.commitIndex = 1
		r.applyCommitted()
		r.applyCommitted()

		assert.Equal(t, uint64(1), r.lastApplied)
		assert.Empty(t, r.applyCh)
	})

	t.Run("Storage failure halts the applier", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := storage.NewMockStorage(ctrl)
		store.EXPECT().GetState().Return(param.NewHardState(), nil)
		store.EXPECT().Get(uint64(1)).Return(nil, errors.New("corrupted"))
		sm := storage.NewMockStateMachine(ctrl)
		sm.EXPECT().Apply(gomock.Any()).Times(0)

		cfg, _ := testConfig(1, 1, 2, 3)
		r := newTestRaft(t, cfg, store, sm, transport.NewMockTransport(ctrl))
		r.commitIndex = 1
		r.applyCommitted()

		assert.Equal(t, uint64(0), r.lastApplied)
		assert.True(t, IsStorageError(r.fatal))
	})
}

func TestScheduleApplyCoalesces(t *testing.T) {
	r := &Raft{applyCh: make(chan struct{}, 1)}
	r.scheduleApply()
	r.scheduleApply()
	r.scheduleApply()
	assert.Len(t, r.applyCh, 1)
}
