package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	token, ok, err := l.TryLock(ctx, "period-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "period-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	_, ok, _ = l.TryLock(ctx, "period-2", time.Minute)
	assert.True(t, ok, "other keys are independent")

	require.NoError(t, l.Unlock(ctx, "period-1", token))
	_, ok, _ = l.TryLock(ctx, "period-1", time.Minute)
	assert.True(t, ok)
}

func TestLocalLocker_WrongTokenDoesNotRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	_, ok, _ := l.TryLock(ctx, "k", time.Minute)
	require.True(t, ok)
	require.NoError(t, l.Unlock(ctx, "k", "not-the-token"))

	_, ok, _ = l.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok)
}

func TestLocalLocker_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.clock = func() time.Time { return now }

	_, ok, _ := l.TryLock(ctx, "k", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = l.TryLock(ctx, "k", time.Minute)
	assert.True(t, ok, "expired lock can be taken over")
}
