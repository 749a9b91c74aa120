package extract

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/config"
	"github.com/sells-group/gpu-prices/internal/fetcher"
	"github.com/sells-group/gpu-prices/pkg/hyperbolic"
	"github.com/sells-group/gpu-prices/pkg/runpod"
)

// Deps are the shared clients extractors are built from.
type Deps struct {
	Fetcher  *fetcher.HTTPFetcher
	Renderer Renderer
}

// Build returns the enabled extractors in registration order: RunPod,
// Vast.ai, DigitalOcean, Hyperbolic. Output ordering follows this list.
func Build(cfg config.ProvidersConfig, deps Deps) []Extractor {
	var out []Extractor
	if cfg.RunPod.Enabled {
		out = append(out, NewRunPod(runpod.NewClient(
			runpod.WithBaseURL(cfg.RunPod.URL),
			runpod.WithHTTPClient(deps.Fetcher.Client()),
		)))
	}
	if cfg.Vast.Enabled {
		out = append(out, NewVast(deps.Fetcher, cfg.Vast.URL))
	}
	if cfg.DigitalOcean.Enabled {
		out = append(out, NewDigitalOcean(deps.Renderer, cfg.DigitalOcean.URL))
	}
	if cfg.Hyperbolic.Enabled {
		out = append(out, NewHyperbolic(hyperbolic.NewClient(
			hyperbolic.WithBaseURL(cfg.Hyperbolic.URL),
			hyperbolic.WithHTTPClient(deps.Fetcher.Client()),
		)))
	}

	names := make([]string, len(out))
	for i, e := range out {
		names[i] = e.Name()
	}
	zap.L().Debug("extract: registered providers", zap.Strings("providers", names))
	return out
}

// Select keeps only the named extractors, matched case-insensitively, and
// preserves registration order. An empty name list keeps all of them.
func Select(exts []Extractor, names []string) ([]Extractor, error) {
	if len(names) == 0 {
		return exts, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = false
	}

	var out []Extractor
	for _, e := range exts {
		key := strings.ToLower(e.Name())
		if _, ok := want[key]; ok {
			want[key] = true
			out = append(out, e)
		}
	}
	for n, seen := range want {
		if !seen {
			return nil, eris.Errorf("extract: unknown or disabled provider %q", n)
		}
	}
	return out, nil
}
