package source

import (
	"context"
	"strconv"
	"strings"

	"candlefeed/internal/market"
	"candlefeed/internal/plan"

	"github.com/adshao/go-binance/v2"
)

// SDK fetches klines through the go-binance spot client. The descriptor
// window bounds the request; symbol, interval and page limit come from
// the source config so they stay consistent with the planner's URLs.
type SDK struct {
	client   *binance.Client
	symbol   string
	interval string
	limit    int
}

func NewSDK(cfg Config) (*SDK, error) {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.BaseURL = base
	}
	httpClient, err := newHTTPClient(cfg.Timeout, cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	client.HTTPClient = httpClient
	return &SDK{
		client:   client,
		symbol:   strings.ToUpper(strings.TrimSpace(cfg.Symbol)),
		interval: strings.ToLower(strings.TrimSpace(cfg.Interval)),
		limit:    cfg.PageLimit,
	}, nil
}

func (s *SDK) Name() string { return "sdk" }

func (s *SDK) Fetch(ctx context.Context, desc plan.Descriptor) ([]market.Candle, error) {
	svc := s.client.NewKlinesService().
		Symbol(s.symbol).
		Interval(s.interval).
		Limit(s.limit).
		StartTime(desc.WindowStart.UnixMilli()).
		EndTime(desc.WindowEnd.UnixMilli() - 1)
	kls, err := svc.Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
			Trades:    kl.TradeNum,
		})
	}
	return out, nil
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
