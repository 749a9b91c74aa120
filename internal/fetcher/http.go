package fetcher

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// maxBodyBytes caps how much of a page is read. Larger pages are rejected
// rather than parsed truncated.
const maxBodyBytes = 8 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
}

// HTTPFetcher implements Fetcher using net/http. It makes exactly one
// attempt per call.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "gpu-prices/1.0"
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &userAgentTransport{base: transport, userAgent: opts.UserAgent},
		},
		opts: opts,
	}
}

// Client returns the underlying HTTP client so API clients share the same
// transport and user agent.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body from %s", rawURL)
	}
	if len(body) > maxBodyBytes {
		return nil, eris.Errorf("fetcher: body from %s exceeds %d bytes", rawURL, maxBodyBytes)
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Wrapf(ErrBlocked, "fetcher: %s challenge at %s", blockType, rawURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return io.NopCloser(decodeCharset(bytes.NewReader(body), resp.Header.Get("Content-Type"))), nil
}

// decodeCharset wraps r in a decoder for the charset declared in the
// Content-Type header. Unknown or UTF-8 charsets pass through unchanged.
func decodeCharset(r io.Reader, contentType string) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return r
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		zap.L().Debug("fetcher: unsupported charset, reading raw",
			zap.String("charset", charset),
			zap.Error(err),
		)
		return r
	}
	return enc.NewDecoder().Reader(r)
}

// userAgentTransport sets a default User-Agent on every outbound request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
