package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "short", now.Add(time.Minute)))
	require.NoError(t, s.Revoke(ctx, "expired", now.Add(-time.Minute)))

	for id, want := range map[string]bool{"live": true, "short": true, "expired": false, "unknown": false} {
		got, err := s.IsRevoked(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, id)
	}

	now = now.Add(2 * time.Minute)
	revoked, err := s.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Equal(t, 1, s.Sweep())
	assert.Len(t, s.revoked, 1)
}

func TestStartSweeper(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.StartSweeper("every now and then"))
	require.NoError(t, s.StartSweeper("@every 1h"))
	s.Stop()
}
