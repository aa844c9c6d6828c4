// Package scheduler drives monitoring cycles on a fixed interval and carries
// the previous daily total from one cycle to the next.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

// CycleRunner runs one monitoring cycle against the carried previous total.
type CycleRunner interface {
	RunCycle(ctx context.Context, previous float64) (entity.CycleResult, error)
}

// Scheduler runs a CycleRunner immediately and then every interval. A tick
// that fires while a cycle is still running is skipped.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	console  types.ConsoleInterface

	cron    *cron.Cron
	job     cron.Job
	mu      sync.Mutex
	running atomic.Bool

	stateMu  sync.Mutex
	ctx      context.Context
	previous float64
	cycles   int
	failures int
}

// NewScheduler creates a scheduler. interval must be positive.
func NewScheduler(runner CycleRunner, interval time.Duration, console types.ConsoleInterface) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %s", types.ErrInvalidInterval, interval)
	}

	logger := cronLogger{console: console}
	s := &Scheduler{
		runner:   runner,
		interval: interval,
		console:  console,
		cron:     cron.New(cron.WithLogger(logger)),
	}
	// o mesmo job embrulhado serve o ciclo imediato e os agendados,
	// então SkipIfStillRunning cobre os dois
	s.job = cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).
		Then(cron.FuncJob(s.tick))

	return s, nil
}

// RunOnce runs a single cycle and, on success, carries its total forward.
// A failed cycle leaves the previous total untouched.
func (s *Scheduler) RunOnce(ctx context.Context) (entity.CycleResult, error) {
	result, err := s.runner.RunCycle(ctx, s.PreviousTotal())

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.cycles++
	if err != nil {
		s.failures++
		return result, err
	}
	s.previous = result.NewTotal
	return result, nil
}

// Start runs the first cycle right away and schedules the rest. Cycles stop
// when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}

	s.stateMu.Lock()
	s.ctx = ctx
	s.stateMu.Unlock()

	s.cron.Schedule(cron.Every(s.interval), s.job)
	s.cron.Start()
	s.running.Store(true)

	s.console.LogInfo("Cost monitoring started, checking every %s", s.interval)

	go s.job.Run()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop stops scheduling and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	<-s.cron.Stop().Done()
	s.console.LogInfo("Cost monitoring stopped")
}

// IsRunning reports whether cycles are being scheduled.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// NextRun returns the time of the next scheduled cycle, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	if !s.running.Load() {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return nil
	}
	next := entries[0].Next
	return &next
}

// PreviousTotal returns the total carried into the next cycle.
func (s *Scheduler) PreviousTotal() float64 {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.previous
}

// Cycles returns how many cycles ran and how many of them failed.
func (s *Scheduler) Cycles() (int, int) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.cycles, s.failures
}

func (s *Scheduler) tick() {
	s.stateMu.Lock()
	ctx := s.ctx
	s.stateMu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	if _, err := s.RunOnce(ctx); err != nil {
		s.console.LogError("Cost check failed: %s", err)
	}
	if next := s.NextRun(); next != nil {
		s.console.LogInfo("Next check at %s", next.Format("2006-01-02 15:04:05"))
	}
}

// cronLogger encaminha os logs do cron para o console.
type cronLogger struct {
	console types.ConsoleInterface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.console.LogWarning("Previous cost check still running, skipping this tick")
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.console.LogError("scheduler: %s: %s", msg, err)
}
