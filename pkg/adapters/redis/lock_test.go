package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisAdapter "github.com/davidvanstory/flowgenius/pkg/adapters/redis"
)

func newTestLocker(t *testing.T) (*redisAdapter.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redisAdapter.NewLocker(client, "test:"), mr
}

func TestLocker_LockUnlock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:s1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:s1"))
}

func TestLocker_Contention(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	// A second acquisition polls until its context expires.
	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctxTimeout, "shared", 5*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)
}

// The unlock function must not release a lock it no longer owns (the key
// expired and somebody else re-acquired it).
func TestLocker_UnlockIsOwnershipChecked(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "s1", 50*time.Millisecond)
	require.NoError(t, err)

	// Simulate expiry and re-acquisition by another holder.
	mr.FastForward(100 * time.Millisecond)
	unlock2, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)

	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:s1"), "stale unlock must leave the new holder's lock intact")
}
