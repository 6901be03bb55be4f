// Package source provides the concrete candle sources behind the
// fetcher: a raw uiKlines REST client and one built on the go-binance
// SDK. Both return the same market.Candle shape.
package source

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"candlefeed/internal/fetch"
)

type Config struct {
	Kind      string // "rest" or "sdk"
	BaseURL   string
	Symbol    string
	Interval  string
	PageLimit int
	Timeout   time.Duration
	ProxyURL  string
}

// New builds the source selected by cfg.Kind.
func New(cfg Config) (fetch.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "rest":
		return NewREST(cfg)
	case "sdk":
		return NewSDK(cfg)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

func newHTTPClient(timeout time.Duration, proxy string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	proxy = strings.TrimSpace(proxy)
	if proxy == "" {
		return client, nil
	}
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok || baseTransport == nil {
		return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	client.Transport = transport
	return client, nil
}
