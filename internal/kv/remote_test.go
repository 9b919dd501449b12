package kv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS not set; skipping redis integration test")
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, addr)
	require.NoError(t, err)
	defer r.Close()

	s := WithPrefix(r, "test:"+uuid.NewString()+":")

	_, ok, err := s.Get("sales")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetAll(s, Entry{Key: "sales", Value: "[]"}, Entry{Key: "payments", Value: "[]"}))
	v, ok, err := s.Get("payments")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	locker := r.Locker("test:lock:"+uuid.NewString(), 500*time.Millisecond)
	release, err := locker.Obtain(ctx)
	require.NoError(t, err)
	release()

	release, err = locker.Obtain(ctx)
	require.NoError(t, err, "Expected lock to be obtainable again after release")
	release()
}

func TestPostgres_Integration(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	p, err := NewPostgres(context.Background(), dbURL)
	require.NoError(t, err)
	defer p.Close()

	s := WithPrefix(p, "test:"+uuid.NewString()+":")

	_, ok, err := s.Get("nextId")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("nextId", "1"))
	require.NoError(t, SetAll(s, Entry{Key: "nextId", Value: "2"}, Entry{Key: "sales", Value: "[]"}))

	v, ok, err := s.Get("nextId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}
