package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/gpu-prices/internal/model"
)

func sample() *model.Result {
	res := model.NewResult(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	res.Records = []model.Record{
		{Provider: "RunPod", Item: "A100 80GB", Price: "$1.1900/hr (Community)", Specs: "Memory: 80 GB"},
		{Provider: "Vast.ai", Item: "RTX 4090", Price: "$0.35/hr (Median)", Specs: "Total Available: 124"},
	}
	res.Failures = []model.Failure{{Provider: "DigitalOcean", Reason: "digitalocean: open browser"}}
	res.Sources = []model.SourceSummary{
		{Provider: "RunPod", Records: 1, DurationMS: 120},
		{Provider: "Vast.ai", Records: 1, DurationMS: 340},
		{Provider: "DigitalOcean", Error: "digitalocean: open browser", DurationMS: 15},
	}
	return res
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xlsx", FormatXLSX, false},
		{"", FormatTable, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatJSON))

	var got model.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample().Records, got.Records)
	assert.Equal(t, "DigitalOcean", got.Failures[0].Provider)
}

func TestWriteJSON_AllFailedKeepsEmptyRecords(t *testing.T) {
	res := model.NewResult(time.Now())
	res.Failures = []model.Failure{{Provider: "RunPod", Reason: "x"}}
	res.Sources = []model.SourceSummary{{Provider: "RunPod", Error: "x"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, FormatJSON))
	assert.Contains(t, buf.String(), `"records": []`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatYAML))

	var got struct {
		Records []model.Record `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Records, 2)
	assert.Equal(t, "RTX 4090", got.Records[1].Item)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "A100 80GB")
	assert.Contains(t, out, "$0.35/hr (Median)")
	assert.Contains(t, out, "Failed providers")
	assert.Contains(t, out, "digitalocean: open browser")
	assert.Contains(t, out, "2 records from 2 providers; 1 failed: DigitalOcean")
}

func TestWriteTable_NoFailures(t *testing.T) {
	res := sample()
	res.Failures = []model.Failure{}
	res.Sources = res.Sources[:2]

	out, err := Table(res)
	require.NoError(t, err)
	assert.NotContains(t, out, "Failed providers")
	assert.Contains(t, out, "2 records from 2 providers\n")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), FormatXLSX))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	prices := f.Sheet["Prices"]
	require.NotNil(t, prices)
	require.Len(t, prices.Rows, 3)
	assert.Equal(t, "Provider", prices.Rows[0].Cells[0].String())
	assert.Equal(t, "RTX 4090", prices.Rows[2].Cells[1].String())

	sources := f.Sheet["Sources"]
	require.NotNil(t, sources)
	require.Len(t, sources.Rows, 4)
	assert.Equal(t, "digitalocean: open browser", sources.Rows[3].Cells[3].String())
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sample(), Format("csv")))
}
