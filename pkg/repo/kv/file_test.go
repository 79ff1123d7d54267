package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s := NewFile(path)

	_, err := s.Get(ctx, "molecules")
	assert.ErrorIs(t, err, code.RecordNotFound)

	require.NoError(t, s.Set(ctx, "molecules", []byte(`[{"id":"1"},{"id":"2"}]`)))
	require.NoError(t, s.Set(ctx, "other", []byte(`{"a":1}`)))

	got, err := s.Get(ctx, "molecules")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"},{"id":"2"}]`, string(got))

	// a second store on the same path sees the data
	got, err = NewFile(path).Get(ctx, "other")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	require.NoError(t, s.Delete(ctx, "other"))
	_, err = s.Get(ctx, "other")
	assert.ErrorIs(t, err, code.RecordNotFound)
	require.NoError(t, s.Delete(ctx, "other"))
}

func TestFileStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := NewFile(path)

	_, err := s.Get(ctx, "molecules")
	assert.ErrorIs(t, err, code.StoreReadErr)

	// a write replaces the broken file
	require.NoError(t, s.Set(ctx, "molecules", []byte(`[]`)))
	got, err := s.Get(ctx, "molecules")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	assert.ErrorIs(t, s.Set(ctx, "molecules", []byte("nope")), code.StoreWriteErr)
}
