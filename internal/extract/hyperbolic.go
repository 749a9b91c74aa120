package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/model"
	"github.com/sells-group/gpu-prices/pkg/hyperbolic"
)

// Hyperbolic extracts marketplace nodes from the Hyperbolic API.
type Hyperbolic struct {
	client hyperbolic.Client
}

// NewHyperbolic creates a Hyperbolic extractor backed by the given client.
func NewHyperbolic(client hyperbolic.Client) *Hyperbolic {
	return &Hyperbolic{client: client}
}

func (h *Hyperbolic) Name() string { return ProviderHyperbolic }

func (h *Hyperbolic) Extract(ctx context.Context) ([]model.Record, error) {
	instances, err := h.client.ListInstances(ctx)
	if err != nil {
		return nil, absorb(ProviderHyperbolic, err)
	}

	records := make([]model.Record, 0, len(instances))
	for _, in := range instances {
		rec, ok := MapHyperbolicInstance(in)
		if !ok {
			zap.L().Debug("extract: hyperbolic node without gpu model skipped", zap.String("id", in.ID))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// MapHyperbolicInstance converts one marketplace node into a record.
// Amounts are listed in cents per hour.
func MapHyperbolicInstance(in hyperbolic.Instance) (model.Record, bool) {
	name := model.CleanText(in.Model())
	if name == "" {
		return model.Record{}, false
	}

	price := "N/A"
	if in.Pricing.Price.Amount != nil {
		price = fmt.Sprintf("$%.2f/hr", *in.Pricing.Price.Amount/100)
	}

	var parts []string
	if region := model.CleanText(in.Location.Region); region != "" {
		parts = append(parts, "Region: "+region)
	}
	if in.GPUsTotal != nil {
		reserved := 0
		if in.GPUsReserved != nil {
			reserved = *in.GPUsReserved
		}
		parts = append(parts, fmt.Sprintf("Available: %d/%d GPUs", *in.GPUsTotal-reserved, *in.GPUsTotal))
	}

	return model.Record{
		Provider: ProviderHyperbolic,
		Item:     name,
		Price:    price,
		Specs:    strings.Join(parts, " | "),
	}, true
}
