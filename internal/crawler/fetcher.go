package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/proxy"
	"go.uber.org/zap"
)

// MaxPageBytes bounds how much of an upstream page is read.
const MaxPageBytes = 32 << 20

// HTTPFetcher downloads pages with a plain HTTP client.
type HTTPFetcher struct {
	client  *http.Client
	profile *proxy.Manager
	logger  *zap.Logger
}

func NewHTTPFetcher(pm *proxy.Manager, timeout time.Duration, l *zap.Logger) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if pm.HasProxies() {
		transport.Proxy = pm.ProxyFunc
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		profile: pm,
		logger:  l,
	}
}

// Fetch returns the body of pageURL. Transport failures, non-2xx statuses
// and oversized bodies are reported as domain.ErrUpstreamFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	req.Header = f.profile.Headers()

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	f.logger.Debug("upstream responded",
		zap.String("url", pageURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("%w: upstream status %d", domain.ErrUpstreamFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFetch, err)
	}
	if len(body) > MaxPageBytes {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, errPageTooLarge)
	}
	return string(body), nil
}

var errPageTooLarge = errors.New("upstream page exceeds size limit")
