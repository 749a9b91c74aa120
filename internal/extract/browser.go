package extract

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Renderer opens isolated browser sessions for pages that only produce their
// content after client-side scripts run.
type Renderer interface {
	Open(ctx context.Context) (Page, error)
}

// Page is a single browser session. Close must be safe to call more than once.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, script string, out any) error
	Close() error
}

// ChromeOptions configures the chromedp renderer.
type ChromeOptions struct {
	Headless          bool
	ExecPath          string
	UserAgent         string
	NavigationTimeout time.Duration
	IdleConnections   int
	IdleQuiet         time.Duration
}

// ChromeRenderer launches a fresh Chrome process per session.
type ChromeRenderer struct {
	opts ChromeOptions
}

// NewChromeRenderer creates a renderer. Zero durations fall back to 30s
// navigation and 500ms idle quiet time.
func NewChromeRenderer(opts ChromeOptions) *ChromeRenderer {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.IdleQuiet <= 0 {
		opts.IdleQuiet = 500 * time.Millisecond
	}
	return &ChromeRenderer{opts: opts}
}

// Open launches the browser and returns a session bound to ctx.
func (r *ChromeRenderer) Open(ctx context.Context) (Page, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", r.opts.Headless))
	if r.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.opts.ExecPath))
	}
	if r.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(r.opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	p := &chromePage{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		opts:          r.opts,
	}

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		// Close would block: the browser context's cancel func waits for a
		// browser that never started. Cancelling the allocator also cancels
		// browserCtx.
		p.cancelAlloc()
		return nil, eris.Wrap(err, "browser: launch")
	}
	return p, nil
}

type chromePage struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	opts          ChromeOptions

	once     sync.Once
	closeErr error
}

// Navigate loads url and blocks until the network has been idle for the
// configured quiet period, or the navigation deadline passes.
func (p *chromePage) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(p.ctx, p.opts.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	idle := newIdleTracker(p.opts.IdleConnections, p.opts.IdleQuiet)
	defer idle.stop()

	chromedp.ListenTarget(navCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			idle.started(string(e.RequestID))
		case *network.EventLoadingFinished:
			idle.finished(string(e.RequestID))
		case *network.EventLoadingFailed:
			idle.finished(string(e.RequestID))
		}
	})

	if err := chromedp.Run(navCtx, network.Enable(), chromedp.Navigate(url)); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}

	idle.arm()
	select {
	case <-idle.done():
		zap.L().Debug("browser: network idle", zap.String("url", url))
		return nil
	case <-navCtx.Done():
		return eris.Wrapf(navCtx.Err(), "browser: wait for network idle on %s", url)
	}
}

// Evaluate runs script in the page and decodes its JSON result into out.
func (p *chromePage) Evaluate(ctx context.Context, script string, out any) error {
	evalCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(evalCtx, chromedp.Evaluate(script, out)); err != nil {
		return eris.Wrap(err, "browser: evaluate")
	}
	return nil
}

// Close shuts down the browser process. Only the first call has an effect.
func (p *chromePage) Close() error {
	p.once.Do(func() {
		if err := chromedp.Cancel(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.closeErr = eris.Wrap(err, "browser: close")
		}
		p.cancelBrowser()
		p.cancelAlloc()
	})
	return p.closeErr
}
