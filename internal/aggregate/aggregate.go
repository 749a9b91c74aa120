// Package aggregate runs every registered extractor concurrently and merges
// their outcomes into a single ordered result.
package aggregate

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/gpu-prices/internal/extract"
	"github.com/sells-group/gpu-prices/internal/model"
)

// Observer receives one callback per extractor per round. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveExtraction(provider string, records int, err error, elapsed time.Duration)
}

// Aggregator holds the fixed, ordered extractor list.
type Aggregator struct {
	extractors []extract.Extractor
	observer   Observer
	now        func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithObserver reports per-extractor outcomes to o.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

// New creates an Aggregator. Output order always follows extractors.
func New(extractors []extract.Extractor, opts ...Option) *Aggregator {
	a := &Aggregator{
		extractors: append([]extract.Extractor(nil), extractors...),
		now:        time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Providers returns the registered provider names in order.
func (a *Aggregator) Providers() []string {
	out := make([]string, len(a.extractors))
	for i, e := range a.extractors {
		out[i] = e.Name()
	}
	return out
}

// AggregateProviders runs a round over the named providers only, in
// registration order. An unknown name is an error and nothing runs.
func (a *Aggregator) AggregateProviders(ctx context.Context, names []string) (*model.Result, error) {
	exts, err := extract.Select(a.extractors, names)
	if err != nil {
		return nil, err
	}
	sub := &Aggregator{extractors: exts, observer: a.observer, now: a.now}
	return sub.Aggregate(ctx), nil
}

type outcome struct {
	records []model.Record
	err     error
	elapsed time.Duration
}

// Aggregate starts every extractor at once, waits for all of them and merges
// the outcomes in registration order. It never returns partial output and
// never fails as a whole: a failing provider contributes a Failure entry.
func (a *Aggregator) Aggregate(ctx context.Context) *model.Result {
	started := a.now()
	outcomes := make([]outcome, len(a.extractors))

	// Plain Group: one provider's failure must not cancel the others.
	var g errgroup.Group
	for i, ext := range a.extractors {
		g.Go(func() error {
			outcomes[i] = a.run(ctx, ext)
			return nil
		})
	}
	_ = g.Wait()

	res := model.NewResult(started)
	for i, ext := range a.extractors {
		oc := outcomes[i]
		name := ext.Name()
		summary := model.SourceSummary{Provider: name, DurationMS: oc.elapsed.Milliseconds()}

		if oc.err != nil {
			res.Failures = append(res.Failures, model.Failure{Provider: name, Reason: oc.err.Error()})
			summary.Error = oc.err.Error()
			res.Sources = append(res.Sources, summary)
			continue
		}

		for _, rec := range oc.records {
			if err := rec.Validate(); err != nil {
				zap.L().Warn("aggregate: dropping invalid record",
					zap.String("provider", name),
					zap.Error(err),
				)
				continue
			}
			res.Records = append(res.Records, rec)
			summary.Records++
		}
		res.Sources = append(res.Sources, summary)
	}
	res.DurationMS = a.now().Sub(started).Milliseconds()

	zap.L().Info("aggregate: round complete",
		zap.Int("providers", len(a.extractors)),
		zap.Int("records", len(res.Records)),
		zap.Int("failures", len(res.Failures)),
		zap.Int64("duration_ms", res.DurationMS),
	)
	return res
}

// run invokes one extractor, converting a panic into an error.
func (a *Aggregator) run(ctx context.Context, ext extract.Extractor) (oc outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("aggregate: extractor panicked",
				zap.String("provider", ext.Name()),
				zap.Any("panic", r),
			)
			oc = outcome{err: eris.Errorf("aggregate: %s panicked: %v", ext.Name(), r)}
		}
		oc.elapsed = time.Since(start)
		if a.observer != nil {
			a.observer.ObserveExtraction(ext.Name(), len(oc.records), oc.err, oc.elapsed)
		}
	}()

	recs, err := ext.Extract(ctx)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{records: recs}
}
