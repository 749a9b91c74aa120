package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// Record is the normalized shape every provider's output is mapped into.
// Price and Specs are free-form provider text and are never parsed.
type Record struct {
	Provider string `json:"provider" yaml:"provider"`
	Item     string `json:"item" yaml:"item"`
	Price    string `json:"price" yaml:"price"`
	Specs    string `json:"specs" yaml:"specs"`
}

// Validate checks that the record carries a provider and an item.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Provider) == "" {
		return eris.New("record: provider is required")
	}
	if strings.TrimSpace(r.Item) == "" {
		return eris.Errorf("record: item is required (provider %s)", r.Provider)
	}
	return nil
}

// Failure records a provider that produced no usable result.
type Failure struct {
	Provider string `json:"provider" yaml:"provider"`
	Reason   string `json:"reason" yaml:"reason"`
}

// SourceSummary describes how one registered provider fared in a run.
type SourceSummary struct {
	Provider   string `json:"provider" yaml:"provider"`
	Records    int    `json:"records" yaml:"records"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
}

// OK reports whether the provider settled without error.
func (s SourceSummary) OK() bool { return s.Error == "" }

// Result is the outcome of one aggregation round. Records are ordered by
// provider registration order.
type Result struct {
	Records    []Record        `json:"records" yaml:"records"`
	Failures   []Failure       `json:"failures" yaml:"failures"`
	Sources    []SourceSummary `json:"sources" yaml:"sources"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	DurationMS int64           `json:"duration_ms" yaml:"duration_ms"`
}

// NewResult returns an empty result with non-nil collections.
func NewResult(startedAt time.Time) *Result {
	return &Result{
		Records:   []Record{},
		Failures:  []Failure{},
		Sources:   []SourceSummary{},
		StartedAt: startedAt,
	}
}

// AllFailed reports whether every provider failed. A run with no providers
// is not considered failed.
func (r *Result) AllFailed() bool {
	return len(r.Sources) > 0 && len(r.Failures) == len(r.Sources)
}

// Filter returns a copy of the result keeping only records whose item or
// specs contain substr, case-insensitively. An empty substr keeps everything.
func (r *Result) Filter(substr string) *Result {
	out := &Result{
		Records:    make([]Record, 0, len(r.Records)),
		Failures:   append([]Failure{}, r.Failures...),
		Sources:    append([]SourceSummary{}, r.Sources...),
		StartedAt:  r.StartedAt,
		DurationMS: r.DurationMS,
	}
	needle := strings.ToLower(strings.TrimSpace(substr))
	for _, rec := range r.Records {
		if needle == "" ||
			strings.Contains(strings.ToLower(rec.Item), needle) ||
			strings.Contains(strings.ToLower(rec.Specs), needle) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// ByProvider returns a copy of the result restricted to one provider,
// matched case-insensitively.
func (r *Result) ByProvider(provider string) *Result {
	out := &Result{
		Records:    []Record{},
		Failures:   []Failure{},
		Sources:    []SourceSummary{},
		StartedAt:  r.StartedAt,
		DurationMS: r.DurationMS,
	}
	for _, rec := range r.Records {
		if strings.EqualFold(rec.Provider, provider) {
			out.Records = append(out.Records, rec)
		}
	}
	for _, f := range r.Failures {
		if strings.EqualFold(f.Provider, provider) {
			out.Failures = append(out.Failures, f)
		}
	}
	for _, s := range r.Sources {
		if strings.EqualFold(s.Provider, provider) {
			out.Sources = append(out.Sources, s)
		}
	}
	return out
}

// CleanText applies NFKC normalization and collapses runs of whitespace.
// Scraped cells often carry non-breaking spaces and stray newlines.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
