package crawler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/proxy"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in headless Chrome. One browser process is
// shared; every Fetch opens its own tab.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	profile  *proxy.Manager
	timeout  time.Duration
	logger   *zap.Logger
}

func NewBrowserFetcher(pm *proxy.Manager, timeout time.Duration, l *zap.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(pm.UserAgent()),
	)
	if p := pm.GetProxy(); p != nil {
		opts = append(opts, chromedp.ProxyServer(p.String()))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		profile:  pm,
		timeout:  timeout,
		logger:   l,
	}
}

// Fetch navigates to pageURL and returns the serialized document.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	// The tab hangs off the shared allocator, so tie it to the caller explicitly.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	var htmlContent string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": f.profile.AcceptLanguage()}),
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}

	if code := status.Load(); code != 0 && (code < 200 || code > 299) {
		return "", fmt.Errorf("%w: upstream status %d", domain.ErrUpstreamFetch, code)
	}
	return htmlContent, nil
}

// Close shuts down the browser process.
func (f *BrowserFetcher) Close() {
	f.cancel()
}
