package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-raft-actor/param"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		key     string
		value   string
		want    param.KVCommand
		wantErr bool
	}{
		{name: "set", op: param.OpSet, key: "k", value: "v", want: param.KVCommand{Op: param.OpSet, Key: "k", Value: "v"}},
		{name: "delete drops value", op: param.OpDelete, key: "k", value: "ignored", want: param.KVCommand{Op: param.OpDelete, Key: "k"}},
		{name: "get is not a command", op: "get", key: "k", wantErr: true},
		{name: "empty key", op: param.OpSet, key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := buildCommand(tt.op, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var got param.KVCommand
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
