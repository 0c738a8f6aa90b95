package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{Addr: mr.Addr(), PoolSize: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(context.Background(), Config{Addr: addr, DialTimeout: time.Second}, zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis at "+addr)
}

func TestNewClient_PingFailsAfterServerStops(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{Addr: mr.Addr()}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestConfig_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := Config{Addr: "localhost:6379", PoolSize: 10}.options()

		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 10, opts.PoolSize)
		assert.Equal(t, defaultDialTimeout, opts.DialTimeout)
		assert.Equal(t, defaultIOTimeout, opts.ReadTimeout)
		assert.Equal(t, defaultIOTimeout, opts.WriteTimeout)
		assert.Equal(t, defaultIOTimeout+time.Second, opts.PoolTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		opts := Config{
			Addr:         "cache:6380",
			DB:           2,
			MinIdleConns: 3,
			DialTimeout:  time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 250 * time.Millisecond,
		}.options()

		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 3, opts.MinIdleConns)
		assert.Equal(t, time.Second, opts.DialTimeout)
		assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
		assert.Equal(t, 250*time.Millisecond, opts.WriteTimeout)
		assert.Equal(t, 1500*time.Millisecond, opts.PoolTimeout)
	})
}
