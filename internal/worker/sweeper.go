// Package worker contains long-running background loops started by the
// server process.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/Gabinights/AutoMarket-sub000/internal/service"
)

type expirationSweeper interface {
	SweepExpired(ctx context.Context) (service.SweepResult, error)
}

// Sweeper periodically expires lapsed reservations. One run is one
// database transaction inside the service, so a crashed run leaves
// nothing half done and the next tick picks the same rows up again.
type Sweeper struct {
	Service  expirationSweeper
	Interval time.Duration
	Timeout  time.Duration
}

func NewSweeper(svc expirationSweeper, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{Service: svc, Interval: interval, Timeout: 30 * time.Second}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. It blocks; callers run it in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	res, err := s.Service.SweepExpired(runCtx)
	if err != nil {
		log.Printf("sweeper: run failed: %v", err)
		return
	}
	if res.Expired > 0 {
		log.Printf("sweeper: expired %d reservations, cancelled %d visits", res.Expired, res.VisitsCancelled)
	}
}
