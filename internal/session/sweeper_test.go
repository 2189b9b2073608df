package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"medsupply/internal/session/domain"
	"medsupply/internal/session/repository"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	e.calls.Add(1)
	return 0, e.err
}

func TestSweepOnce_DeletesExpired(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	_ = repo.Create(ctx, &domain.Session{ID: "old", UserID: "u", ExpiresAt: now.Add(-time.Second)})
	_ = repo.Create(ctx, &domain.Session{ID: "live", UserID: "u", ExpiresAt: now.Add(time.Minute)})

	sweepOnce(ctx, repo, now)

	if s, _ := repo.GetByID(ctx, "old"); s != nil {
		t.Error("expired session survived the sweep")
	}
	if s, _ := repo.GetByID(ctx, "live"); s == nil {
		t.Error("live session was swept")
	}
}

func TestSweepOnce_ErrorIsLogged(t *testing.T) {
	e := &countingExpirer{err: errors.New("db down")}
	sweepOnce(context.Background(), e, time.Now())
	if e.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", e.calls.Load())
	}
}

func TestSweep_StopsOnCancel(t *testing.T) {
	e := &countingExpirer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Sweep(ctx, e, 5*time.Millisecond)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for e.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Sweep did not return after cancel")
	}
}
