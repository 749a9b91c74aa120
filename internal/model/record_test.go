package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr string
	}{
		{"complete", Record{Provider: "RunPod", Item: "A100", Price: "$1/hr", Specs: "80 GB"}, ""},
		{"empty price and specs", Record{Provider: "RunPod", Item: "A100"}, ""},
		{"missing provider", Record{Item: "A100"}, "provider is required"},
		{"blank item", Record{Provider: "Vast.ai", Item: "   "}, "item is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecord_JSONKeepsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Record{Provider: "Vast.ai", Item: "RTX 4090"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"Vast.ai","item":"RTX 4090","price":"","specs":""}`, string(b))
}

func TestNewResult_EmptyCollectionsSerializeAsArrays(t *testing.T) {
	res := NewResult(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	b, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, []any{}, raw["records"])
	assert.Equal(t, []any{}, raw["failures"])
}

func TestResult_AllFailed(t *testing.T) {
	res := NewResult(time.Now())
	assert.False(t, res.AllFailed(), "no providers is not a failure")

	res.Sources = []SourceSummary{{Provider: "a", Error: "x"}, {Provider: "b", Error: "y"}}
	res.Failures = []Failure{{Provider: "a", Reason: "x"}, {Provider: "b", Reason: "y"}}
	assert.True(t, res.AllFailed())

	res.Failures = res.Failures[:1]
	assert.False(t, res.AllFailed())
}

func TestResult_Filter(t *testing.T) {
	res := NewResult(time.Now())
	res.Records = []Record{
		{Provider: "RunPod", Item: "NVIDIA A100", Specs: "Memory: 80 GB"},
		{Provider: "Vast.ai", Item: "RTX 4090", Specs: "Total Available: 12"},
		{Provider: "DigitalOcean", Item: "H100x8", Specs: "640 GB VRAM | NVIDIA"},
	}
	res.Failures = []Failure{{Provider: "Hyperbolic", Reason: "status 500"}}

	out := res.Filter("nvidia")
	require.Len(t, out.Records, 2)
	assert.Equal(t, "RunPod", out.Records[0].Provider)
	assert.Equal(t, "DigitalOcean", out.Records[1].Provider)
	assert.Len(t, out.Failures, 1)

	assert.Len(t, res.Records, 3, "receiver must not be mutated")
	assert.Len(t, res.Filter("").Records, 3)
	assert.Empty(t, res.Filter("tpu").Records)
}

func TestResult_ByProvider(t *testing.T) {
	res := NewResult(time.Now())
	res.Records = []Record{
		{Provider: "RunPod", Item: "A100"},
		{Provider: "Vast.ai", Item: "4090"},
		{Provider: "RunPod", Item: "H100"},
	}
	res.Sources = []SourceSummary{{Provider: "RunPod", Records: 2}, {Provider: "Vast.ai", Records: 1}}

	out := res.ByProvider("runpod")
	require.Len(t, out.Records, 2)
	assert.Equal(t, "A100", out.Records[0].Item)
	assert.Equal(t, "H100", out.Records[1].Item)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, 2, out.Sources[0].Records)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "RTX 4090", CleanText("  RTX 4090\n\t"))
	assert.Equal(t, "$0.35", CleanText("$0.35"))
	assert.Equal(t, "", CleanText(" \n "))
	// Fullwidth digits fold to ASCII under NFKC.
	assert.Equal(t, "24 GB", CleanText("２４ GB"))
}
