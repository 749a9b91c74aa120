// Package fetcher provides the shared outbound HTTP layer used by the
// markup extractors and the typed API clients.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote documents.
type Fetcher interface {
	// Download fetches the URL and returns the response body decoded to
	// UTF-8. Non-2xx responses are errors.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
