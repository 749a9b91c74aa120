// Package report renders aggregation results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/gpu-prices/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want table, json, yaml or xlsx)", s)
	}
}

// Write renders res to w in the given format.
func Write(w io.Writer, res *model.Result, f Format) error {
	switch f {
	case FormatTable:
		out, err := Table(res)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return eris.Wrap(err, "report: write table")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(res), "report: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return eris.Wrap(enc.Close(), "report: close yaml encoder")
	case FormatXLSX:
		return WriteXLSX(w, res)
	default:
		return eris.Errorf("report: unknown format %q", f)
	}
}

// Summary is a one-line account of a round, e.g.
// "42 records from 3 providers; 1 failed: DigitalOcean".
func Summary(res *model.Result) string {
	ok := len(res.Sources) - len(res.Failures)
	s := fmt.Sprintf("%d records from %d providers", len(res.Records), ok)
	if len(res.Failures) == 0 {
		return s
	}
	names := make([]string, len(res.Failures))
	for i, f := range res.Failures {
		names[i] = f.Provider
	}
	return fmt.Sprintf("%s; %d failed: %s", s, len(res.Failures), strings.Join(names, ", "))
}
