package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsExpired decodes the exp claim of token without verifying the signature.
// Tokens that cannot be decoded or carry no exp claim count as expired.
func IsExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Before(now)
}

// startSweepLocked launches the expiry check bound to the current
// generation. It stops on its own once the generation moves on.
func (s *Store) startSweepLocked() {
	if s.stopSweep != nil {
		s.stopSweep()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	gen := s.gen

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sweep(ctx, gen)
	}()
}

func (s *Store) sweep(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if done := s.checkExpiry(ctx, gen); done {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// checkExpiry reports true when the sweep has nothing left to watch.
func (s *Store) checkExpiry(ctx context.Context, gen uint64) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return true
	}
	if !IsExpired(s.token, s.now()) {
		s.mu.Unlock()
		return false
	}
	// ctx is cancelled by the sign-out itself
	bg := context.WithoutCancel(ctx)
	ev := s.signOutLocked(bg, ReasonExpired)
	s.mu.Unlock()

	s.log.Info(bg, "session expired")
	s.notify([]Event{ev})
	return true
}
