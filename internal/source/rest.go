package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"candlefeed/internal/market"
	"candlefeed/internal/plan"

	"github.com/tidwall/gjson"
)

// REST fetches a descriptor's SourceURI directly. The uiKlines payload
// is an array of positional rows:
// [openTime, open, high, low, close, volume, closeTime, quoteVolume, trades, ...]
type REST struct {
	client *http.Client
}

func NewREST(cfg Config) (*REST, error) {
	client, err := newHTTPClient(cfg.Timeout, cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	return &REST{client: client}, nil
}

func (r *REST) Name() string { return "rest" }

func (r *REST) Fetch(ctx context.Context, desc plan.Descriptor) ([]market.Candle, error) {
	if desc.SourceURI == "" {
		return nil, fmt.Errorf("descriptor %d has no source uri", desc.Index)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.SourceURI, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("uiKlines returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseKlineRows(body)
}

func parseKlineRows(body []byte) ([]market.Candle, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("unexpected uiKlines payload: %s", truncate(body, 120))
	}
	rows := parsed.Array()
	out := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		cols := row.Array()
		if len(cols) < 7 {
			continue
		}
		c := market.Candle{
			OpenTime:  cols[0].Int(),
			Open:      cols[1].Float(),
			High:      cols[2].Float(),
			Low:       cols[3].Float(),
			Close:     cols[4].Float(),
			Volume:    cols[5].Float(),
			CloseTime: cols[6].Int(),
		}
		if len(cols) > 8 {
			c.Trades = cols[8].Int()
		}
		out = append(out, c)
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
