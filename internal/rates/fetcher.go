package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadlan/propstat/internal/domain"
)

// ErrFetchExhausted is returned when every provider strategy failed to
// produce the required rates. It is the only failure mode of a refresh:
// provider errors along the way are soft and only logged.
var ErrFetchExhausted = errors.New("live rate fetch exhausted")

// Default provider endpoints. The primary is keyed and rate-limited; the
// fallback is free and keyless, quoting against its own USD base.
const (
	DefaultPrimaryURL  = "https://api.currencyfreaks.com"
	DefaultFallbackURL = "https://api.frankfurter.app"
)

const derivedRatePlaces = 4

// Fetcher refreshes the exchange-rate store from live providers using a
// two-strategy fallback. Both providers quote against a pivot currency
// (USD), so fetched figures are cross-derived into base-relative rates
// before storing.
type Fetcher struct {
	store       *Store
	primaryURL  string
	fallbackURL string
	pivot       domain.CurrencyCode
	httpClient  *http.Client
}

// NewFetcher creates a Fetcher writing into store. Empty URLs select the
// default providers.
func NewFetcher(store *Store, primaryURL, fallbackURL string) *Fetcher {
	if primaryURL == "" {
		primaryURL = DefaultPrimaryURL
	}
	if fallbackURL == "" {
		fallbackURL = DefaultFallbackURL
	}
	return &Fetcher{
		store:       store,
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		pivot:       domain.USD,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchLiveRates refreshes the stored rates for every foreign currency.
// The primary provider is tried first; if it leaves any required figure
// missing or zero, the keyless fallback is tried. Rates update all
// together or not at all.
func (f *Fetcher) FetchLiveRates(ctx context.Context, apiKey string) error {
	quotes, source := f.gatherQuotes(ctx, strings.TrimSpace(apiKey))

	derived, err := f.deriveRates(quotes)
	if err != nil {
		return err
	}

	for currency, rate := range derived {
		f.store.SetRate(ctx, currency, rate)
	}
	slog.Info("exchange rates updated", "source", source, "rates", derived)
	return nil
}

// gatherQuotes runs the provider strategies in order, stopping at the
// first that yields every required pivot-based figure.
func (f *Fetcher) gatherQuotes(ctx context.Context, apiKey string) (map[string]float64, string) {
	quotes, err := f.fetchPrimary(ctx, apiKey)
	if err != nil {
		slog.Warn("primary rate provider failed", "error", err)
	} else if f.complete(quotes) {
		return quotes, "primary"
	}

	quotes, err = f.fetchFallback(ctx)
	if err != nil {
		slog.Warn("fallback rate provider failed", "error", err)
		return nil, ""
	}
	return quotes, "fallback"
}

// requiredSymbols lists the pivot-quoted figures the derivation needs:
// the base currency's ISO symbol plus every foreign, non-pivot currency.
func (f *Fetcher) requiredSymbols() []string {
	symbols := []string{domain.BaseCurrency.ISOCode()}
	for _, c := range domain.Currencies() {
		if c == domain.BaseCurrency || c == f.pivot {
			continue
		}
		symbols = append(symbols, c.ISOCode())
	}
	return symbols
}

func (f *Fetcher) complete(quotes map[string]float64) bool {
	for _, sym := range f.requiredSymbols() {
		if quotes[sym] <= 0 {
			return false
		}
	}
	return true
}

// deriveRates converts pivot-based quotes into base-relative rates.
// The base figure is itself "base units per 1 pivot", so the pivot's rate
// is a direct assignment; every other foreign currency X quoted as
// "X units per 1 pivot" becomes base/X. Rates are rounded to 4 places.
func (f *Fetcher) deriveRates(quotes map[string]float64) (map[domain.CurrencyCode]float64, error) {
	basePerPivot := quotes[domain.BaseCurrency.ISOCode()]
	if basePerPivot <= 0 {
		return nil, fmt.Errorf("%w: missing %s quote", ErrFetchExhausted, domain.BaseCurrency.ISOCode())
	}
	base := decimal.NewFromFloat(basePerPivot)

	derived := make(map[domain.CurrencyCode]float64)
	for _, c := range domain.Currencies() {
		if c == domain.BaseCurrency {
			continue
		}
		if c == f.pivot {
			derived[c] = base.Round(derivedRatePlaces).InexactFloat64()
			continue
		}
		perPivot := quotes[c.ISOCode()]
		if perPivot <= 0 {
			return nil, fmt.Errorf("%w: missing %s quote", ErrFetchExhausted, c.ISOCode())
		}
		derived[c] = base.Div(decimal.NewFromFloat(perPivot)).Round(derivedRatePlaces).InexactFloat64()
	}
	return derived, nil
}

// fetchPrimary queries the keyed provider for all pivot-based symbols.
func (f *Fetcher) fetchPrimary(ctx context.Context, apiKey string) (map[string]float64, error) {
	symbols := append(f.requiredSymbols(), f.pivot.ISOCode())
	url := fmt.Sprintf("%s/v2.0/rates/latest?apikey=%s&symbols=%s",
		f.primaryURL, apiKey, strings.Join(symbols, ","))

	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}

	// The keyed provider serializes rate values as JSON strings.
	var resp struct {
		Rates map[string]any `json:"rates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing primary provider response: %w", err)
	}

	quotes := make(map[string]float64, len(resp.Rates))
	for sym, v := range resp.Rates {
		quotes[sym] = coerceRate(v)
	}
	return quotes, nil
}

// fetchFallback queries the keyless provider using its own pivot base.
func (f *Fetcher) fetchFallback(ctx context.Context) (map[string]float64, error) {
	url := fmt.Sprintf("%s/latest?from=%s&to=%s",
		f.fallbackURL, f.pivot.ISOCode(), strings.Join(f.requiredSymbols(), ","))

	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing fallback provider response: %w", err)
	}
	return resp.Rates, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from rate provider", resp.StatusCode)
	}
	return body, nil
}

func coerceRate(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}
