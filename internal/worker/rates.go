// Package worker hosts the background loops of the service.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nadlan/propstat/internal/rates"
)

// RateFetcher refreshes the exchange-rate store from live providers.
type RateFetcher interface {
	FetchLiveRates(ctx context.Context, apiKey string) error
}

// RateWorker periodically refreshes live exchange rates. The provider API
// key is re-read from settings on every cycle so a key saved through the
// API takes effect without a restart.
type RateWorker struct {
	fetcher    RateFetcher
	settings   rates.SettingsRepository
	defaultKey string
	interval   time.Duration
}

// NewRateWorker creates a RateWorker. defaultKey is used when no key has
// been stored in settings.
func NewRateWorker(fetcher RateFetcher, settings rates.SettingsRepository, defaultKey string, interval time.Duration) *RateWorker {
	return &RateWorker{
		fetcher:    fetcher,
		settings:   settings,
		defaultKey: defaultKey,
		interval:   interval,
	}
}

// Run starts the refresh loop with an immediate first fetch. It blocks
// until the context is cancelled.
func (w *RateWorker) Run(ctx context.Context) {
	slog.Info("RateWorker: starting", "interval", w.interval)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RateWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RateWorker) refresh(ctx context.Context) {
	if err := w.fetcher.FetchLiveRates(ctx, w.apiKey(ctx)); err != nil {
		slog.Error("RateWorker: refresh failed", "error", err)
		return
	}
	slog.Info("RateWorker: refresh completed")
}

func (w *RateWorker) apiKey(ctx context.Context) string {
	if w.settings == nil {
		return w.defaultKey
	}
	key, err := w.settings.APIKey(ctx)
	if err != nil {
		if !errors.Is(err, rates.ErrNoAPIKey) {
			slog.Warn("RateWorker: failed to read stored API key", "error", err)
		}
		return w.defaultKey
	}
	return key
}
