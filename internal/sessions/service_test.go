package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, time.Hour)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, sess.RefreshToken)
	assert.Len(t, sess.RefreshToken, 64)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	stored, err := repo.TakeByRefresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, "test-agent", stored.UserAgent)
}

func TestDeleteRefresh(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.Hour)
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "user-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRefresh(ctx, sess.RefreshToken))
	_, err = svc.Rotate(ctx, sess.RefreshToken, "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRotate_UnknownAndEmpty(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.Hour)
	_, err := svc.Rotate(context.Background(), "", "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	_, err = svc.Rotate(context.Background(), "nope", "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRotate_ConsumesOldToken(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.Hour)
	ctx := context.Background()
	first, err := svc.CreateSession(ctx, "user-9", "")
	require.NoError(t, err)

	second, err := svc.Rotate(ctx, first.RefreshToken, "agent-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, "user-9", second.UserID)

	_, err = svc.Rotate(ctx, first.RefreshToken, "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRotate_ConcurrentRefreshSucceedsOnce(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.Hour)
	ctx := context.Background()
	first, err := svc.CreateSession(ctx, "user-7", "")
	require.NoError(t, err)

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Rotate(ctx, first.RefreshToken, ""); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRotate_ExpiredSessionIsConsumed(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "stale", UserID: "u", ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := svc.Rotate(ctx, "stale", "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	left, err := repo.TakeByRefresh(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, left)
}

func TestMemoryBlacklist_Expiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	now := time.Now()
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "tok", time.Minute))
	require.NoError(t, bl.Add(ctx, "ignored", 0))

	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = bl.Contains(ctx, "ignored")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.Contains(ctx, "tok")
	assert.False(t, ok)
}
