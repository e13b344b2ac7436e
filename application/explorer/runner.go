package explorer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"explorer-backend/domain/exploration"
)

// IntervalSource supplies the current loop timings; the config watcher can
// change them at runtime.
type IntervalSource interface {
	RefreshInterval() time.Duration
	ErrorBackoff() time.Duration
}

type triggerKind int

const (
	triggerExplore triggerKind = iota
	triggerDiscover
)

type triggerOutcome struct {
	result exploration.ExploreResult
	report *exploration.DiscoveryReport
	err    error
}

type triggerRequest struct {
	kind  triggerKind
	reply chan triggerOutcome
}

// Runner owns the single writer goroutine. Periodic refreshes and manual
// triggers are serialized through it, so the store never sees two writers.
type Runner struct {
	engine    *Engine
	intervals IntervalSource
	requests  chan triggerRequest
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewRunner creates a runner around the engine.
func NewRunner(engine *Engine, intervals IntervalSource, logger *zap.Logger) *Runner {
	return &Runner{
		engine:    engine,
		intervals: intervals,
		requests:  make(chan triggerRequest),
		logger:    logger,
	}
}

// Start launches the run loop. It stops when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
	r.logger.Info("Explorer run loop started",
		zap.Duration("interval", r.intervals.RefreshInterval()),
	)
}

// Wait blocks until the run loop has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	timer := time.NewTimer(r.intervals.RefreshInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Explorer run loop stopped")
			return

		case <-timer.C:
			next := r.intervals.RefreshInterval()
			if _, err := r.engine.Explore(ctx); err != nil {
				r.logger.Error("Scheduled exploration failed", zap.Error(err))
				next = r.intervals.ErrorBackoff()
			}
			timer.Reset(next)

		case req := <-r.requests:
			req.reply <- r.handle(ctx, req.kind)
		}
	}
}

func (r *Runner) handle(ctx context.Context, kind triggerKind) triggerOutcome {
	switch kind {
	case triggerDiscover:
		return triggerOutcome{report: r.engine.Discover(ctx)}
	default:
		result, err := r.engine.Explore(ctx)
		return triggerOutcome{result: result, err: err}
	}
}

// TriggerExplore runs one refresh cycle on the run loop goroutine and waits
// for its result.
func (r *Runner) TriggerExplore(ctx context.Context) (exploration.ExploreResult, error) {
	outcome, err := r.send(ctx, triggerExplore)
	if err != nil {
		return exploration.ExploreResult{}, err
	}
	return outcome.result, outcome.err
}

// TriggerDiscover re-runs upstream discovery on the run loop goroutine and
// waits for the report.
func (r *Runner) TriggerDiscover(ctx context.Context) (*exploration.DiscoveryReport, error) {
	outcome, err := r.send(ctx, triggerDiscover)
	if err != nil {
		return nil, err
	}
	return outcome.report, outcome.err
}

func (r *Runner) send(ctx context.Context, kind triggerKind) (triggerOutcome, error) {
	req := triggerRequest{kind: kind, reply: make(chan triggerOutcome, 1)}

	select {
	case r.requests <- req:
	case <-ctx.Done():
		return triggerOutcome{}, ctx.Err()
	}

	select {
	case outcome := <-req.reply:
		return outcome, nil
	case <-ctx.Done():
		return triggerOutcome{}, ctx.Err()
	}
}
