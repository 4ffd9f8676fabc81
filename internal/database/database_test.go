package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	db, err := Open("sqlite:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", db.Dialector.Name())
	assert.NoError(t, Ping(db))
}

func TestDisabledRedisStore(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore(nil)

	assert.False(t, s.Enabled())
	assert.Error(t, s.Ping(ctx))

	ok, err := s.CheckRateLimit(ctx, "generate:p1", 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	var dest map[string]int
	assert.ErrorIs(t, s.CacheGet(ctx, "progress:r1", &dest), ErrCacheMiss)
	assert.NoError(t, s.CacheSet(ctx, "progress:r1", map[string]int{"dsa": 40}, time.Minute))
	assert.NoError(t, s.CacheDelete(ctx, "progress:r1"))

	assert.NoError(t, s.BlacklistToken(ctx, "jti", time.Minute))
	assert.False(t, s.IsTokenBlacklisted(ctx, "jti"))
}
