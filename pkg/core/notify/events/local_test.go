package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEvents(t *testing.T) {
	ctx := context.Background()
	l := NewLocalEvents()

	var got []string
	require.NoError(t, l.Registry(ctx, notify.MoleculeModify, func(_ context.Context, msg string) error {
		got = append(got, msg)
		return nil
	}))
	err := l.Registry(ctx, notify.MoleculeModify, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, code.NotifyActionAlreadyRegistryErr)

	msg := &notify.SendMsg{Channel: notify.MoleculeModify, Data: map[string]any{"op": "add"}}
	require.NoError(t, l.Broadcast(ctx, msg))
	require.Len(t, got, 1)
	assert.False(t, msg.UUID.IsNil())
	assert.NotZero(t, msg.Timestamp)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(got[0]), &decoded))
	assert.Equal(t, "molecule-modify", decoded["action"])
	assert.Equal(t, msg.UUID.String(), decoded["uuid"])

	// unregistered channel is dropped
	require.NoError(t, l.Broadcast(ctx, &notify.SendMsg{Channel: "other"}))
	assert.Len(t, got, 1)

	require.NoError(t, l.Close(ctx))
	require.NoError(t, l.Broadcast(ctx, msg))
	assert.Len(t, got, 1)
}
