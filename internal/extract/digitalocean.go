package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/model"
)

// pricingCardScript collects the GPU droplet pricing cards. It reports
// whether the enclosing section exists so a layout change is not mistaken
// for an empty catalogue.
const pricingCardScript = `(() => {
  const section = document.querySelector('#gpu-droplets');
  if (!section) return { found: false, cards: [] };
  const text = (el) => (el && el.innerText ? el.innerText.trim() : '');
  const cards = Array.from(section.querySelectorAll('div[class*="GpuPricingCards_card"]')).map((card) => ({
    name: text(card.querySelector('h3')),
    monthly: text(card.querySelector('div[class*="PricingCard_price"] > span:nth-child(1)')),
    hourly: text(card.querySelector('div[class*="PricingCard_price"] > span:nth-child(2)')),
    specs: Array.from(card.querySelectorAll('ul li')).map(text),
  }));
  return { found: true, cards };
})()`

// PricingCard is the in-page projection of one GPU droplet card.
type PricingCard struct {
	Name    string   `json:"name"`
	Monthly string   `json:"monthly"`
	Hourly  string   `json:"hourly"`
	Specs   []string `json:"specs"`
}

type pricingCards struct {
	Found bool          `json:"found"`
	Cards []PricingCard `json:"cards"`
}

// DigitalOcean renders the GPU droplet pricing page in a browser session.
type DigitalOcean struct {
	renderer Renderer
	url      string
}

// NewDigitalOcean creates a DigitalOcean extractor.
func NewDigitalOcean(renderer Renderer, url string) *DigitalOcean {
	return &DigitalOcean{renderer: renderer, url: url}
}

func (d *DigitalOcean) Name() string { return ProviderDigitalOcean }

// Extract opens a fresh session, waits for the page to settle and reads the
// pricing cards. The session is closed on every path once opened.
func (d *DigitalOcean) Extract(ctx context.Context) ([]model.Record, error) {
	page, err := d.renderer.Open(ctx)
	if err != nil {
		return nil, absorb(ProviderDigitalOcean, eris.Wrap(err, "digitalocean: open browser"))
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			zap.L().Warn("extract: close browser session", zap.String("provider", ProviderDigitalOcean), zap.Error(cerr))
		}
	}()

	if err := page.Navigate(ctx, d.url); err != nil {
		return nil, absorb(ProviderDigitalOcean, eris.Wrap(err, "digitalocean: load pricing page"))
	}

	var out pricingCards
	if err := page.Evaluate(ctx, pricingCardScript, &out); err != nil {
		return nil, absorb(ProviderDigitalOcean, eris.Wrap(err, "digitalocean: query pricing cards"))
	}
	if !out.Found {
		return nil, absorb(ProviderDigitalOcean, eris.New("digitalocean: gpu pricing section not found"))
	}

	records := MapPricingCards(out.Cards)
	if len(records) == 0 {
		zap.L().Info("extract: digitalocean pricing section has no cards", zap.String("url", d.url))
	}
	return records, nil
}

// MapPricingCards converts rendered cards into records, skipping unnamed ones.
func MapPricingCards(cards []PricingCard) []model.Record {
	records := make([]model.Record, 0, len(cards))
	for _, c := range cards {
		name := model.CleanText(c.Name)
		if name == "" {
			continue
		}
		hourly := model.CleanText(strings.NewReplacer("(", "", ")", "").Replace(c.Hourly))

		specs := make([]string, 0, len(c.Specs))
		for _, s := range c.Specs {
			if s = model.CleanText(s); s != "" {
				specs = append(specs, s)
			}
		}

		records = append(records, model.Record{
			Provider: ProviderDigitalOcean,
			Item:     name,
			Price:    model.CleanText(c.Monthly) + "/mo or " + hourly,
			Specs:    strings.Join(specs, " | "),
		})
	}
	return records
}
