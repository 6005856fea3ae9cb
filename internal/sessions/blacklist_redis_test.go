package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedisBlacklist_AddContains(t *testing.T) {
	m, client := newRedis(t)
	bl := NewRedisBlacklist(client)

	ctx := context.Background()
	token := "access-token-1"
	require.NoError(t, bl.Add(ctx, token, 2*time.Second))

	ok, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	m.FastForward(3 * time.Second)

	ok2, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	require.False(t, ok2)
}

func TestRedisBlacklist_NonPositiveTTLIsNoop(t *testing.T) {
	_, client := newRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "expired-token", 0))
	ok, err := bl.Contains(ctx, "expired-token")
	require.NoError(t, err)
	require.False(t, ok)
}
