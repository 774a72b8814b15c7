package study

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler drives the claim/process cycle on a fixed interval. Any number
// of instances may run against the same database; mutual exclusion comes
// from ClaimService, not from anything in this type. A tick that fails to
// claim is logged and the loop carries on.
type Scheduler struct {
	Claims    Claimer
	Processor ScheduleProcessor

	Interval   time.Duration
	ClaimLimit int
	StaleAfter time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the tick loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)
}

// Stop halts future ticks and waits for an in-flight tick to finish.
// Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	s.doneCh = nil
}

func (s *Scheduler) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}

// Tick claims one batch of due schedules and processes them sequentially.
// One item's failure is persisted by the processor and does not stop its
// siblings.
func (s *Scheduler) Tick(ctx context.Context) {
	limit := s.ClaimLimit
	if limit <= 0 {
		limit = 20
	}
	staleAfter := s.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}

	claimed, err := s.Claims.ClaimDue(ctx, limit, staleAfter)
	if err != nil {
		log.Printf("scheduler claim error: %v\n", err)
		return
	}
	for i := range claimed {
		s.Processor.ProcessSchedule(ctx, &claimed[i])
	}
}
