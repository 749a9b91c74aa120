package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/fetcher"
	"github.com/sells-group/gpu-prices/internal/model"
)

// Vast scrapes the Vast.ai pricing table.
type Vast struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewVast creates a Vast.ai extractor reading the page at url.
func NewVast(f fetcher.Fetcher, url string) *Vast {
	return &Vast{fetcher: f, url: url}
}

func (v *Vast) Name() string { return ProviderVast }

// Extract downloads the pricing page and parses its table rows. A page with
// no qualifying rows is a valid empty result; an anti-bot challenge served
// in its place is an error from the fetcher.
func (v *Vast) Extract(ctx context.Context) ([]model.Record, error) {
	body, err := v.fetcher.Download(ctx, v.url)
	if err != nil {
		return nil, absorb(ProviderVast, err)
	}
	defer func() { _ = body.Close() }()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, absorb(ProviderVast, eris.Wrap(err, "vast: parse html"))
	}

	records := ParseVastTable(doc)
	if len(records) == 0 {
		zap.L().Info("extract: vast pricing table has no rows", zap.String("url", v.url))
	}
	return records, nil
}

// ParseVastTable reads every tbody row with at least three cells: GPU name
// from the first cell's link, median price, then availability.
func ParseVastTable(doc *goquery.Document) []model.Record {
	var records []model.Record
	doc.Find("tbody > tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		name := model.CleanText(cells.Eq(0).Find("a").Text())
		if name == "" {
			return
		}
		price := model.CleanText(cells.Eq(1).Text())
		available := model.CleanText(cells.Eq(2).Text())

		records = append(records, model.Record{
			Provider: ProviderVast,
			Item:     name,
			Price:    medianHourly(price),
			Specs:    "Total Available: " + available,
		})
	})
	if records == nil {
		records = []model.Record{}
	}
	return records
}

// medianHourly labels a price cell as the hourly median. Cells may or may
// not already carry the "/hr" unit.
func medianHourly(price string) string {
	price = strings.TrimSuffix(strings.TrimSpace(price), "/hr")
	if price == "" {
		return ""
	}
	return price + "/hr (Median)"
}
