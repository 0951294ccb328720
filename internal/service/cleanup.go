package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/pkg/logger"
)

// DefaultSweepInterval is the default period between housekeeping sweeps.
const DefaultSweepInterval = 10 * time.Minute

// SweepTask is one named housekeeping job returning how many records it
// reaped.
type SweepTask struct {
	Name string
	Run  func() int
}

// Sweeper periodically runs housekeeping tasks (transfer record
// retention, stale telephony call records). The coordinator never
// schedules its own cleanup; this is the external scheduler.
type Sweeper struct {
	tasks    []SweepTask
	interval time.Duration
	logger   *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewSweeper creates a sweeper over the given tasks.
func NewSweeper(interval time.Duration, log *logger.Logger, tasks ...SweepTask) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{tasks: tasks, interval: interval, logger: log}
}

// Start begins the periodic sweep. Calling Start on a running sweeper is
// a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(sweepCtx)
}

// Stop halts the sweep and waits for the goroutine to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	for _, task := range s.tasks {
		if removed := task.Run(); removed > 0 {
			s.logger.Debug("sweep removed records",
				zap.String("task", task.Name),
				zap.Int("removed", removed),
			)
		}
	}
}
