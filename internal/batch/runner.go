// Package batch drives evaluation passes over eligible trade signals.
package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/evaluation"
	"signal-impact-lab/internal/observability"
	"signal-impact-lab/internal/storage"
)

// Defaults for runner configuration.
const (
	DefaultPageSize = 100

	// DefaultPace is the delay between provider-rate-limited records,
	// sized for the price provider's free tier.
	DefaultPace = 1500 * time.Millisecond
)

// Summary is the aggregate result of one evaluation pass. It is the only
// thing surfaced to external callers; individual record errors are logged.
type Summary struct {
	Evaluated int `json:"evaluated"`
	Closed    int `json:"closed"`
	StillOpen int `json:"stillOpen"`
	Errors    int `json:"errors"`
}

// Runner selects eligible signals and runs the evaluation pipeline on each,
// isolating per-record failures from the pass. Records are processed
// sequentially, oldest first, with a fixed pace between provider calls.
type Runner struct {
	signals   storage.SignalStore
	evaluator *evaluation.Evaluator
	pageSize  int
	pace      time.Duration
	metrics   *observability.Metrics
	logger    *log.Logger
	now       func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Signals   storage.SignalStore
	Evaluator *evaluation.Evaluator
	PageSize  int           // default DefaultPageSize
	Pace      time.Duration // default DefaultPace; 0 keeps the default, use -1 to disable
	Metrics   *observability.Metrics
	Logger    *log.Logger
	Now       func() time.Time
}

// NewRunner creates a batch runner.
func NewRunner(opts RunnerOptions) *Runner {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pace := opts.Pace
	if pace == 0 {
		pace = DefaultPace
	} else if pace < 0 {
		pace = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		signals:   opts.Signals,
		evaluator: opts.Evaluator,
		pageSize:  pageSize,
		pace:      pace,
		metrics:   opts.Metrics,
		logger:    logger,
		now:       now,
	}
}

// RunOnce executes a single evaluation pass. Per-record failures are caught,
// counted and logged; the pass only fails as a whole on a catalog bootstrap
// error or context cancellation.
func (r *Runner) RunOnce(ctx context.Context) (*Summary, error) {
	started := r.now()
	summary := &Summary{}

	eligible, err := r.signals.FindEligible(ctx, r.pageSize)
	if err != nil {
		r.observePass("fatal", started)
		return nil, fmt.Errorf("select eligible signals: %w", err)
	}
	r.logger.Printf("evaluation pass: %d eligible signals", len(eligible))
	if r.metrics != nil {
		r.metrics.SignalsPending.Set(float64(len(eligible)))
	}

	for i, sig := range eligible {
		if i > 0 && r.pace > 0 {
			if err := sleepCtx(ctx, r.pace); err != nil {
				r.observePass("fatal", started)
				return summary, err
			}
		}

		result, err := r.evaluator.EvaluateSignal(ctx, sig)
		if err != nil {
			// Catalog bootstrap failure: fatal for the whole pass.
			r.observePass("fatal", started)
			return summary, fmt.Errorf("evaluate signal %s: %w", sig.ID, err)
		}

		if result.Skip != "" {
			r.recordSkip(sig, result)
			summary.Errors++
			continue
		}

		if err := r.persist(ctx, sig, result.Outcome); err != nil {
			r.logger.Printf("persist signal %s: %v", sig.ID, err)
			r.countSkip(evaluation.SkipPersistence)
			summary.Errors++
			continue
		}

		summary.Evaluated++
		if result.Outcome.State.Terminal() {
			summary.Closed++
			r.logger.Printf("signal %s closed %s: pnl=%.2f%% impact=%.2f",
				sig.ID, result.Outcome.State, result.Outcome.PnlPct, result.Outcome.ImpactFactor)
		} else {
			summary.StillOpen++
		}
		if r.metrics != nil {
			r.metrics.SignalsEvaluated.Inc()
			if result.Outcome.State.Terminal() {
				r.metrics.SignalsClosed.WithLabelValues(string(result.Outcome.State)).Inc()
			}
		}
	}

	r.observePass("ok", started)
	r.logger.Printf("evaluation pass done: evaluated=%d closed=%d stillOpen=%d errors=%d",
		summary.Evaluated, summary.Closed, summary.StillOpen, summary.Errors)
	return summary, nil
}

// persist writes an outcome back to the store. The evaluation flag is
// cleared and the impact factor written only on terminal states; skip and
// error paths never touch the flag.
func (r *Runner) persist(ctx context.Context, sig *domain.TradeSignal, out *evaluation.Outcome) error {
	upd := storage.SignalUpdate{
		PnlPct:      out.PnlPct,
		LifetimeMFE: out.LifetimeMFE,
		LifetimeMAE: out.LifetimeMAE,
	}
	if out.State.Terminal() {
		impact := out.ImpactFactor
		closedAt := r.now()
		upd.ImpactFactor = &impact
		upd.CloseEvaluation = true
		upd.ClosedAt = &closedAt
	}
	return r.signals.UpdateEvaluation(ctx, sig.ID, upd)
}

func (r *Runner) recordSkip(sig *domain.TradeSignal, result evaluation.Result) {
	if result.Err != nil {
		r.logger.Printf("skip signal %s (%s): %v", sig.ID, result.Skip, result.Err)
	} else {
		r.logger.Printf("skip signal %s (%s)", sig.ID, result.Skip)
	}
	r.countSkip(result.Skip)
}

func (r *Runner) countSkip(reason evaluation.SkipReason) {
	if r.metrics != nil {
		r.metrics.SignalsSkipped.WithLabelValues(string(reason)).Inc()
	}
}

func (r *Runner) observePass(result string, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.PassesTotal.WithLabelValues(result).Inc()
	r.metrics.PassDuration.Observe(r.now().Sub(started).Seconds())
	r.metrics.LastPassUnix.Set(float64(r.now().Unix()))
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
