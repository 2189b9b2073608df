// Package session runs housekeeping for stored sessions.
package session

import (
	"context"
	"log"
	"time"
)

// Expirer deletes sessions whose idle expiry has passed.
type Expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Sweep deletes expired sessions every interval until ctx is done.
func Sweep(ctx context.Context, repo Expirer, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, repo, time.Now().UTC())
		}
	}
}

func sweepOnce(ctx context.Context, repo Expirer, now time.Time) {
	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("session: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("session: swept %d expired sessions", n)
	}
}
