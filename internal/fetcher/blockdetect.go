package fetcher

import (
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrBlocked is returned by Download when the response is an anti-bot
// interstitial rather than the requested page.
var ErrBlocked = eris.New("fetcher: blocked")

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// DetectBlock checks a response for signs of anti-bot protection. A
// challenge page is usually served with status 200, so the body markers
// matter as much as the headers.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-mitigated") != "" {
			return true, BlockCloudflare
		}
		if strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}
	if resp.Header.Get("cf-mitigated") == "challenge" {
		return true, BlockCloudflare
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cf-challenge") ||
		strings.Contains(lower, "just a moment...") && strings.Contains(lower, "cloudflare") {
		return true, BlockCloudflare
	}

	// Pricing pages may embed a captcha widget for sign-in, so only a body
	// without any table counts as a captcha wall.
	if !strings.Contains(lower, "<table") &&
		(strings.Contains(lower, "captcha") || strings.Contains(lower, "verify you are human")) {
		return true, BlockCaptcha
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
