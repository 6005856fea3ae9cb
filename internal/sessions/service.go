package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/profilekit/profilekit/internal/common"
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
	ttl  time.Duration
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl}
}

// TTL is the lifetime of newly issued refresh sessions.
func (s *Service) TTL() time.Duration { return s.ttl }

// CreateSession stores a new refresh session for userID and returns it.
func (s *Service) CreateSession(ctx context.Context, userID, userAgent string) (*Session, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &Session{
		RefreshToken: hex.EncodeToString(b),
		UserID:       userID,
		UserAgent:    userAgent,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Rotate consumes refresh and issues a new session for the same user.
// The old session is taken atomically, so a refresh token can be used once
// even when two refreshes race.
func (s *Service) Rotate(ctx context.Context, refresh, userAgent string) (*Session, error) {
	if refresh == "" {
		return nil, common.ErrInvalidToken
	}
	old, err := s.repo.TakeByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if old == nil || old.Expired(time.Now().UTC()) {
		return nil, common.ErrInvalidToken
	}
	return s.CreateSession(ctx, old.UserID, userAgent)
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}
