package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTracker(t *testing.T) (*StateTracker, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return New(client), client
}

func TestStateTracker_Exec(t *testing.T) {
	s, client := newTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	require.NoError(t, s.Exec(ctx, "sms:addr", fn, WithStateTTL(time.Second)))
	assert.ErrorIs(t, s.Exec(ctx, "sms:addr", fn), ErrAlreadyCompleted)
	assert.Equal(t, 1, calls)

	state, err := client.Get(ctx, "idempotency:sms:addr").Result()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted.String(), state)

	assert.Eventually(t, func() bool {
		return s.Exec(ctx, "sms:addr", fn) == nil
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, 2, calls)
}

func TestStateTracker_Failure(t *testing.T) {
	s, _ := newTracker(t)
	ctx := context.Background()
	errBoom := errors.New("boom")
	failing := func(context.Context) error { return errBoom }

	assert.ErrorIs(t, s.Exec(ctx, "marked", failing), errBoom)
	assert.ErrorIs(t, s.Exec(ctx, "marked", failing), ErrAlreadyFailed)

	assert.ErrorIs(t, s.Exec(ctx, "released", failing, WithReleaseOnFailure()), errBoom)
	assert.ErrorIs(t, s.Exec(ctx, "released", failing, WithReleaseOnFailure()), errBoom)
}

func TestStateTracker_InProgress(t *testing.T) {
	s, _ := newTracker(t)
	ctx := context.Background()

	state, err := s.Acquire(ctx, "busy", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	err = s.Exec(ctx, "busy", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyInProgress)

	require.NoError(t, s.Release(ctx, "busy"))
	assert.NoError(t, s.Exec(ctx, "busy", func(context.Context) error { return nil }))
}
