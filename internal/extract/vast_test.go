package extract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gpu-prices/internal/fetcher"
	"github.com/sells-group/gpu-prices/internal/model"
)

type stubFetcher struct {
	body string
	err  error
}

func (s stubFetcher) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

const vastPage = `<html><body><table>
<thead><tr><th>GPU</th><th>Median</th><th>Available</th></tr></thead>
<tbody>
  <tr><td><a href="/gpu/4090">RTX&nbsp;4090</a></td><td> $0.35 </td><td>
    124
  </td></tr>
  <tr><td>no link</td><td>$9</td><td>1</td></tr>
  <tr><td><a>short row</a></td><td>$1</td></tr>
  <tr><td><a>H100 SXM</a></td><td>$2.10/hr</td><td>8</td></tr>
</tbody></table></body></html>`

func TestVast_ExtractScenario(t *testing.T) {
	f := stubFetcher{body: `<table><tbody><tr><td><a>Y</a></td><td>$1.00/hr</td><td>5</td></tr></tbody></table>`}

	recs, err := NewVast(f, "https://vast.ai/pricing").Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Record{
		{Provider: "Vast.ai", Item: "Y", Price: "$1.00/hr (Median)", Specs: "Total Available: 5"},
	}, recs)
}

func TestVast_ExtractOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(vastPage))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	recs, err := NewVast(f, srv.URL).Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Record{
		{Provider: "Vast.ai", Item: "RTX 4090", Price: "$0.35/hr (Median)", Specs: "Total Available: 124"},
		{Provider: "Vast.ai", Item: "H100 SXM", Price: "$2.10/hr (Median)", Specs: "Total Available: 8"},
	}, recs)
}

func TestVast_ExtractEmptyTableIsSuccess(t *testing.T) {
	f := stubFetcher{body: `<html><body><p>maintenance</p></body></html>`}

	recs, err := NewVast(f, "https://vast.ai/pricing").Extract(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestVast_ExtractHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	recs, err := NewVast(f, srv.URL).Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
	assert.Nil(t, recs)
}

func TestVast_ExtractChallengePageIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head><title>Just a moment...</title></head>
<body><noscript>Enable JavaScript and cookies to continue</noscript>
<div id="challenge-body-text">Checking your browser before accessing vast.ai</div></body></html>`))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	recs, err := NewVast(f, srv.URL).Extract(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, fetcher.ErrBlocked))
	assert.Nil(t, recs)
}

func TestVast_ExtractFetchError(t *testing.T) {
	recs, err := NewVast(stubFetcher{err: errors.New("dial tcp: refused")}, "x").Extract(context.Background())
	require.Error(t, err)
	assert.Nil(t, recs)
}

func TestParseVastTable_Idempotent(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(vastPage))
	require.NoError(t, err)
	assert.Equal(t, ParseVastTable(doc), ParseVastTable(doc))
}

func TestMedianHourly(t *testing.T) {
	assert.Equal(t, "$1.00/hr (Median)", medianHourly("$1.00/hr"))
	assert.Equal(t, "$0.35/hr (Median)", medianHourly("$0.35"))
	assert.Equal(t, "", medianHourly(""))
}
