package report

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/rotisserie/eris"

	"github.com/sells-group/gpu-prices/internal/model"
)

// Table renders records, and failures when present, as boxed text tables.
func Table(res *model.Result) (string, error) {
	var b strings.Builder

	data := pterm.TableData{{"Provider", "Item", "Price", "Specs"}}
	for _, r := range res.Records {
		data = append(data, []string{r.Provider, r.Item, r.Price, r.Specs})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", eris.Wrap(err, "report: render records table")
	}
	b.WriteString(out)
	b.WriteString("\n")

	if len(res.Failures) > 0 {
		fdata := pterm.TableData{{"Provider", "Reason"}}
		for _, f := range res.Failures {
			fdata = append(fdata, []string{f.Provider, f.Reason})
		}
		out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(fdata).Srender()
		if err != nil {
			return "", eris.Wrap(err, "report: render failures table")
		}
		b.WriteString("\nFailed providers\n")
		b.WriteString(out)
		b.WriteString("\n")
	}

	b.WriteString(Summary(res))
	b.WriteString("\n")
	return b.String(), nil
}
