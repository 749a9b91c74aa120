package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/aggregate"
	"github.com/sells-group/gpu-prices/internal/extract"
	"github.com/sells-group/gpu-prices/internal/fetcher"
	"github.com/sells-group/gpu-prices/internal/metrics"
	"github.com/sells-group/gpu-prices/internal/store"
)

// aggregateEnv holds the extractors and aggregator used by run and serve.
type aggregateEnv struct {
	Aggregator *aggregate.Aggregator
	Metrics    *metrics.Recorder
}

// initAggregator builds every enabled extractor from config, optionally
// narrowed to the named providers.
func initAggregator(providers []string) (*aggregateEnv, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout(),
	})
	renderer := extract.NewChromeRenderer(extract.ChromeOptions{
		Headless:          cfg.Browser.Headless,
		ExecPath:          cfg.Browser.ExecPath,
		UserAgent:         cfg.HTTP.UserAgent,
		NavigationTimeout: cfg.Browser.NavigationTimeout(),
		IdleConnections:   cfg.Browser.IdleConnections,
		IdleQuiet:         cfg.Browser.IdleQuiet(),
	})

	exts, err := extract.Select(extract.Build(cfg.Providers, extract.Deps{Fetcher: f, Renderer: renderer}), providers)
	if err != nil {
		return nil, err
	}
	if len(exts) == 0 {
		return nil, eris.New("no providers enabled")
	}

	rec := metrics.New()
	agg := aggregate.New(exts, aggregate.WithObserver(rec))
	zap.L().Info("providers ready", zap.Strings("providers", agg.Providers()))

	return &aggregateEnv{Aggregator: agg, Metrics: rec}, nil
}

// initStore opens and migrates the configured snapshot store. Callers close it.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
