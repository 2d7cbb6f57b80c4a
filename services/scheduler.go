package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and re-runs the given cycle on a fixed
// interval. Overlapping cycles are skipped, not queued — a run that outlives
// its interval just loses the next tick.
type Scheduler struct {
	cron  *cron.Cron
	cycle func(context.Context)
	spec  string

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a Scheduler that invokes cycle every intervalHours.
func NewScheduler(cycle func(context.Context), intervalHours int) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLogger(cron.DefaultLogger)),
		cycle: cycle,
		spec:  fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so the first bids go out without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler. In-flight cycles finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[scheduler] Previous cycle still running — skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Println("[scheduler] Bid cycle started")
	s.cycle(ctx)
	log.Println("[scheduler] Bid cycle complete")
}
