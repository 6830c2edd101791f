package rediswr_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/rediswr"
)

func newLocker(t *testing.T) (*rediswr.Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := rediswr.Config{Addrs: mr.Addr(), LockTTL: time.Minute, KeyPrefix: "test:"}
	client := rediswr.New(cfg)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, rediswr.Ping(t.Context(), client))
	return rediswr.NewLocker(client, cfg), mr
}

func TestLocker_TryLock(t *testing.T) {
	l, mr := newLocker(t)
	ctx := t.Context()

	unlock, err := l.TryLock(ctx, "spells")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:spells"))
	assert.Equal(t, time.Minute, mr.TTL("test:spells"))

	_, err = l.TryLock(ctx, "spells")
	require.Error(t, err)
	assert.Equal(t, bulkload.CodeInProgress, errx.AsErrorX(err).Code())

	unlock()
	assert.False(t, mr.Exists("test:spells"))

	again, err := l.TryLock(ctx, "spells")
	require.NoError(t, err)
	again()
}

func TestLocker_ReleaseKeepsForeignLock(t *testing.T) {
	l, mr := newLocker(t)
	ctx := t.Context()

	unlock, err := l.TryLock(ctx, "classes")
	require.NoError(t, err)

	// Lock expired and another instance took it over.
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set("test:classes", "someone-else"))

	unlock()
	got, err := mr.Get("test:classes")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
