package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"balance/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client), mr
}

func TestIdempotencyStore_SetIfAbsent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	rec := &models.IdempotencyRecord{Key: "k1", Status: models.IdempotencyInProcess, TTLSeconds: 60}

	ok, err := store.SetIfAbsent(ctx, "k1", rec, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetIfAbsent(ctx, "k1", rec, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("idempotency:k1"))
	assert.Equal(t, time.Minute, mr.TTL("idempotency:k1"))
}

func TestIdempotencyStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	rec, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIdempotencyStore_SetAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := &models.IdempotencyRecord{
		Key:        "k2",
		Status:     models.IdempotencySuccess,
		ResultKind: "transaction",
		Payload:    json.RawMessage(`{"uid":"abc"}`),
		TTLSeconds: 3600,
	}
	require.NoError(t, store.Set(ctx, "k2", rec, time.Hour))

	got, err := store.Get(ctx, "k2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.IdempotencySuccess, got.Status)
	assert.Equal(t, "transaction", got.ResultKind)
	assert.JSONEq(t, `{"uid":"abc"}`, string(got.Payload))

	mr.FastForward(time.Hour + time.Second)
	got, err = store.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k3", &models.IdempotencyRecord{Key: "k3"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "k3"))

	got, err := store.Get(ctx, "k3")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyStore_CorruptRecord(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("idempotency:bad", "not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
}
