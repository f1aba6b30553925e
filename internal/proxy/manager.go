package proxy

import (
	"net/http"
	"net/url"
	"sync"
)

// Manager supplies the outbound request profile: the spoofed user agent,
// the preferred language, and the proxy rotation.
type Manager struct {
	userAgent      string
	acceptLanguage string
	proxies        []*url.URL
	mu             sync.Mutex
	proxyIndex     int
}

// NewManager builds a Manager. Proxy URLs that fail to parse are skipped;
// config validation rejects them earlier.
func NewManager(userAgent, acceptLanguage string, proxyURLs []string) *Manager {
	m := &Manager{
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
	}
	for _, raw := range proxyURLs {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			m.proxies = append(m.proxies, u)
		}
	}
	return m
}

// UserAgent returns the user agent sent upstream.
func (m *Manager) UserAgent() string {
	return m.userAgent
}

// AcceptLanguage returns the accept-language header sent upstream.
func (m *Manager) AcceptLanguage() string {
	return m.acceptLanguage
}

// Headers returns the browser-like headers for an upstream page request.
func (m *Manager) Headers() http.Header {
	h := http.Header{}
	if m.userAgent != "" {
		h.Set("User-Agent", m.userAgent)
	}
	if m.acceptLanguage != "" {
		h.Set("Accept-Language", m.acceptLanguage)
	}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return h
}

// HasProxies reports whether any proxy is configured.
func (m *Manager) HasProxies() bool {
	return len(m.proxies) > 0
}

// GetProxy returns the next proxy, rotating sequentially, or nil when none
// are configured.
func (m *Manager) GetProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// ProxyFunc adapts GetProxy for http.Transport.Proxy.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}
