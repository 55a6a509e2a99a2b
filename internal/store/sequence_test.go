package store

import (
	"context"
	"encoding/json"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestStoreSequencer(t *testing.T) {
	s := New(NewMemoryBackend())
	seq := NewStoreSequencer(s)
	ctx := context.Background()

	first, err := seq.Reserve(ctx, "products", 0, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	first, err = seq.Reserve(ctx, "products", 0, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), first)

	// a lower floor never rewinds the counter
	first, err = seq.Reserve(ctx, "products", 1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), first)

	// batch reservation on another collection, seeded from existing ids
	first, err = seq.Reserve(ctx, "gallery", 10, 3)
	require.NoError(t, err)
	require.Equal(t, int64(11), first)
	first, err = seq.Reserve(ctx, "gallery", 0, 1)
	require.NoError(t, err)
	require.Equal(t, int64(14), first)

	raw, err := s.Object(ctx, CountersDocument)
	require.NoError(t, err)
	require.JSONEq(t, `{"products":3,"gallery":14}`, string(raw))
}

func TestStoreSequencerRecoversDamagedCounters(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Write(context.Background(), CountersDocument, json.RawMessage(`"garbage"`)))
	seq := NewStoreSequencer(New(b))

	first, err := seq.Reserve(context.Background(), "products", 4, 1)
	require.NoError(t, err)
	require.Equal(t, int64(5), first)
}

func TestStoreSequencerRejectsEmptyBatch(t *testing.T) {
	seq := NewStoreSequencer(New(NewMemoryBackend()))
	_, err := seq.Reserve(context.Background(), "gallery", 0, 0)
	require.Error(t, err)
}

func TestRedisSequencer(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	seq := NewRedisSequencer(client, "test:seq:")
	ctx := context.Background()

	first, err := seq.Reserve(ctx, "products", 0, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	first, err = seq.Reserve(ctx, "gallery", 7, 2)
	require.NoError(t, err)
	require.Equal(t, int64(8), first)

	first, err = seq.Reserve(ctx, "gallery", 0, 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), first)

	v, err := m.Get("test:seq:gallery")
	require.NoError(t, err)
	require.Equal(t, "10", v)
}
