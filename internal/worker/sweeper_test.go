package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabinights/AutoMarket-sub000/internal/service"
)

type fakeSweepService struct {
	mu    sync.Mutex
	runs  int
	err   error
	fired chan struct{}
}

func (f *fakeSweepService) SweepExpired(ctx context.Context) (service.SweepResult, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	select {
	case f.fired <- struct{}{}:
	default:
	}
	return service.SweepResult{Expired: 1}, f.err
}

func (f *fakeSweepService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	svc := &fakeSweepService{fired: make(chan struct{}, 10)}
	sweeper := NewSweeper(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	// First run happens before the first tick.
	select {
	case <-svc.fired:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not run immediately")
	}

	// At least one tick-driven run follows.
	select {
	case <-svc.fired:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not run on tick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}

	assert.GreaterOrEqual(t, svc.count(), 2)
}

func TestSweeperKeepsRunningAfterFailure(t *testing.T) {
	svc := &fakeSweepService{fired: make(chan struct{}, 10), err: errors.New("db down")}
	sweeper := NewSweeper(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-svc.fired:
		case <-time.After(time.Second):
			t.Fatalf("sweeper stopped after failure (run %d)", i)
		}
	}
}

func TestSweeperDefaultInterval(t *testing.T) {
	sweeper := NewSweeper(&fakeSweepService{fired: make(chan struct{}, 1)}, 0)
	require.Equal(t, time.Hour, sweeper.Interval)
}
