// Package app wires the pipeline stages together and runs one
// acquisition batch: plan, fetch, aggregate, compute, export.
package app

import (
	"context"
	"fmt"

	"candlefeed/internal/aggregate"
	"candlefeed/internal/config"
	"candlefeed/internal/export"
	"candlefeed/internal/feature"
	"candlefeed/internal/fetch"
	"candlefeed/internal/logger"
	"candlefeed/internal/market"
	"candlefeed/internal/plan"
	"candlefeed/internal/source"
	"candlefeed/internal/store"

	"github.com/google/uuid"
)

type App struct {
	cfg     *config.Config
	source  fetch.Source
	fetcher *fetch.Fetcher
	cache   *store.Store
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	src, err := source.New(source.Config{
		Kind:      cfg.Source.Kind,
		BaseURL:   cfg.Source.BaseURL,
		Symbol:    cfg.Source.Symbol,
		Interval:  cfg.Source.Interval,
		PageLimit: cfg.Source.PageLimit,
		Timeout:   cfg.Source.Timeout(),
		ProxyURL:  cfg.Source.ProxyURL,
	})
	if err != nil {
		return nil, fmt.Errorf("building source failed: %w", err)
	}
	fetcher, err := fetch.New(src, fetch.Config{
		MaxConcurrency: cfg.Fetch.MaxConcurrency,
		MaxRetries:     cfg.Fetch.MaxRetries,
		AttemptTimeout: cfg.Fetch.AttemptTimeout(),
		RetryDelay:     cfg.Fetch.RetryDelay(),
	})
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, source: src, fetcher: fetcher}
	if cfg.Cache.Enabled {
		cache, err := store.Open(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("opening candle cache failed: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

func (a *App) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}

// Run executes one batch. Failed segments are tolerated under the skip
// gap policy and always reported, so the caller can judge coverage.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	start, end, err := a.cfg.Range.Window()
	if err != nil {
		return err
	}
	descs, err := plan.Daily(plan.Config{
		BaseURL:   a.cfg.Source.BaseURL,
		Symbol:    a.cfg.Source.Symbol,
		Interval:  a.cfg.Source.Interval,
		PageLimit: a.cfg.Source.PageLimit,
	}, start, end)
	if err != nil {
		return err
	}
	logger.Infof("[run %s] planned %d daily segments for %s %s (%s)",
		runID, len(descs), a.cfg.Source.Symbol, a.cfg.Source.Interval, a.source.Name())

	outcomes, stats, err := a.fetcher.FetchAll(ctx, descs)
	if err != nil {
		return err
	}
	logger.Infof("[run %s] fetched %d/%d segments (%d failed, %d attempts)",
		runID, stats.Succeeded, stats.Planned, stats.Failed, stats.Attempts)

	candles, err := aggregate.Collect(outcomes, aggregate.GapPolicy(a.cfg.Aggregate.GapPolicy))
	if err != nil {
		return err
	}
	if a.cache != nil {
		candles, err = a.refreshCache(ctx, candles, descs)
		if err != nil {
			return err
		}
	}
	logger.Infof("[run %s] collected %d candles", runID, len(candles))

	groups, err := aggregate.Groups(candles, a.cfg.Aggregate.GroupSize)
	if err != nil {
		return err
	}
	records, err := feature.ComputeAll(groups, a.cfg.Feature.TrendThreshold)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(a.cfg.Output.Path, a.cfg.Aggregate.GroupSize, records); err != nil {
		return fmt.Errorf("writing output failed: %w", err)
	}
	logger.Infof("[run %s] wrote %d rows (%d groups) to %s",
		runID, len(records), len(groups), a.cfg.Output.Path)
	return nil
}

// refreshCache persists the batch and reads the planned window back,
// merging this run's candles with earlier ones.
func (a *App) refreshCache(ctx context.Context, candles []market.Candle, descs []plan.Descriptor) ([]market.Candle, error) {
	written, err := a.cache.InsertCandles(ctx, candles)
	if err != nil {
		return nil, fmt.Errorf("caching candles failed: %w", err)
	}
	logger.Debugf("cached %d candles in %s", written, a.cache.Path())
	if len(descs) == 0 {
		return nil, nil
	}
	from := descs[0].WindowStart.UnixMilli()
	to := descs[len(descs)-1].WindowEnd.UnixMilli() - 1
	cached, err := a.cache.LoadRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading candle cache failed: %w", err)
	}
	return cached, nil
}
