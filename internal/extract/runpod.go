package extract

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/model"
	"github.com/sells-group/gpu-prices/pkg/runpod"
)

// RunPod extracts GPU types from the RunPod JSON API.
type RunPod struct {
	client runpod.Client
}

// NewRunPod creates a RunPod extractor backed by the given client.
func NewRunPod(client runpod.Client) *RunPod {
	return &RunPod{client: client}
}

func (r *RunPod) Name() string { return ProviderRunPod }

// Extract lists GPU types and maps each into a record. GPU types without a
// display name are skipped.
func (r *RunPod) Extract(ctx context.Context) ([]model.Record, error) {
	gpus, err := r.client.ListGPUTypes(ctx)
	if err != nil {
		return nil, absorb(ProviderRunPod, err)
	}

	records := make([]model.Record, 0, len(gpus))
	for _, g := range gpus {
		rec, ok := MapRunPodGPU(g)
		if !ok {
			zap.L().Debug("extract: runpod gpu without name skipped", zap.String("id", g.ID))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// MapRunPodGPU converts one GPU type into a record. When both price tiers
// exist the cheaper one is reported (ties go to Community).
func MapRunPodGPU(g runpod.GPUType) (model.Record, bool) {
	name := model.CleanText(g.DisplayName)
	if name == "" {
		return model.Record{}, false
	}

	price := "N/A"
	community, hasCommunity := g.CommunityPrice()
	secure, hasSecure := g.SecurePrice()
	switch {
	case hasCommunity && hasSecure && secure < community:
		price = fmt.Sprintf("$%.4f/hr (Secure)", secure)
	case hasCommunity:
		price = fmt.Sprintf("$%.4f/hr (Community)", community)
	case hasSecure:
		price = fmt.Sprintf("$%.4f/hr (Secure)", secure)
	}

	var specs string
	if g.MemoryInGb != nil {
		specs = "Memory: " + strconv.FormatFloat(*g.MemoryInGb, 'f', -1, 64) + " GB"
	}

	return model.Record{
		Provider: ProviderRunPod,
		Item:     name,
		Price:    price,
		Specs:    specs,
	}, true
}
