package booking

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, 30*time.Minute), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := &State{
		Key:           "abc-123",
		Step:          StepPayment,
		DepartmentID:  1,
		Date:          "2026-09-01",
		SlotID:        9,
		SlotToken:     "tok",
		AppointmentID: 1234,
		Payment:       PaymentState{Status: PaymentProcessing, OrderID: "order_1"},
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, StepPayment, loaded.Step)
	assert.Equal(t, int64(1234), loaded.AppointmentID)
	assert.Equal(t, PaymentProcessing, loaded.Payment.Status)
	assert.Equal(t, "order_1", loaded.Payment.OrderID)
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &State{Key: "gone"}))
	require.NoError(t, store.Delete(ctx, "gone"))

	_, err := store.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreEntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &State{Key: "ttl"}))
	mr.FastForward(31 * time.Minute)

	_, err := store.Load(ctx, "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}
