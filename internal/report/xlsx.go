package report

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/gpu-prices/internal/model"
)

// WriteXLSX writes a workbook with a Prices sheet and a Sources sheet.
func WriteXLSX(w io.Writer, res *model.Result) error {
	f := xlsx.NewFile()

	prices, err := f.AddSheet("Prices")
	if err != nil {
		return eris.Wrap(err, "report: add prices sheet")
	}
	addRow(prices, "Provider", "Item", "Price", "Specs")
	for _, r := range res.Records {
		addRow(prices, r.Provider, r.Item, r.Price, r.Specs)
	}

	sources, err := f.AddSheet("Sources")
	if err != nil {
		return eris.Wrap(err, "report: add sources sheet")
	}
	addRow(sources, "Provider", "Records", "Duration (ms)", "Error")
	for _, s := range res.Sources {
		addRow(sources, s.Provider, strconv.Itoa(s.Records), strconv.FormatInt(s.DurationMS, 10), s.Error)
	}

	return eris.Wrap(f.Write(w), "report: write xlsx")
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
