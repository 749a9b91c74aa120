// Package extract holds one Extractor per upstream price provider. Every
// extractor fetches provider-native data and maps it into model.Record.
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/model"
)

// Provider identifiers. These appear in every emitted record.
const (
	ProviderRunPod       = "RunPod"
	ProviderVast         = "Vast.ai"
	ProviderDigitalOcean = "DigitalOcean"
	ProviderHyperbolic   = "Hyperbolic"
)

// Extractor retrieves and normalizes data from exactly one provider.
//
// Extract never panics on upstream problems. Transport, shape and resource
// errors are logged and returned as errors with no records; an empty slice
// with a nil error means the provider currently lists nothing.
type Extractor interface {
	Name() string
	Extract(ctx context.Context) ([]model.Record, error)
}

// absorb logs an extraction failure and hands it back for the aggregator.
func absorb(provider string, err error) error {
	zap.L().Warn("extract: provider failed",
		zap.String("provider", provider),
		zap.Error(err),
	)
	return err
}
