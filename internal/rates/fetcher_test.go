package rates

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadlan/propstat/internal/domain"
)

func TestFetchLiveRatesPrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "k123" {
			t.Errorf("apikey = %q, want %q", got, "k123")
		}
		w.Header().Set("Content-Type", "application/json")
		// The keyed provider quotes per 1 USD, with string values.
		w.Write([]byte(`{"rates": {"ILS": "3.7", "EUR": "0.925", "USD": "1.0"}}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("fallback should not be called when primary succeeds")
	}))
	defer fallback.Close()

	store := NewStore(nil)
	fetcher := NewFetcher(store, primary.URL, fallback.URL)

	if err := fetcher.FetchLiveRates(context.Background(), "k123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Rate(domain.USD); got != 3.7 {
		t.Errorf("USD rate = %v, want 3.7", got)
	}
	// 3.7 / 0.925 = 4.0
	if got := store.Rate(domain.EUR); math.Abs(got-4.0) > 1e-9 {
		t.Errorf("EUR rate = %v, want 4.0", got)
	}
}

func TestFetchLiveRatesFallbackAfterPrimaryError(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q, want USD", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"ILS": 4.5, "EUR": 0.9}}`))
	}))
	defer fallback.Close()

	store := NewStore(nil)
	fetcher := NewFetcher(store, primary.URL, fallback.URL)

	if err := fetcher.FetchLiveRates(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Rate(domain.USD); got != 4.5 {
		t.Errorf("USD rate = %v, want 4.5", got)
	}
	// 4.5 / 0.9 = 5.0
	if got := store.Rate(domain.EUR); got != 5.0 {
		t.Errorf("EUR rate = %v, want 5.0", got)
	}
}

func TestFetchLiveRatesFallbackAfterIncompletePrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"ILS": "3.7"}}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"ILS": 4.0, "EUR": 0.8}}`))
	}))
	defer fallback.Close()

	store := NewStore(nil)
	fetcher := NewFetcher(store, primary.URL, fallback.URL)

	if err := fetcher.FetchLiveRates(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Rate(domain.USD); got != 4.0 {
		t.Errorf("USD rate = %v, want 4.0 (from fallback)", got)
	}
	if got := store.Rate(domain.EUR); got != 5.0 {
		t.Errorf("EUR rate = %v, want 5.0", got)
	}
}

func TestFetchLiveRatesExhausted(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	store := NewStore(nil)
	fetcher := NewFetcher(store, broken.URL, broken.URL)

	err := fetcher.FetchLiveRates(context.Background(), "")
	if !errors.Is(err, ErrFetchExhausted) {
		t.Fatalf("err = %v, want ErrFetchExhausted", err)
	}

	// No partial application: both rates stay at the defaults.
	if got := store.Rate(domain.USD); got != 3.75 {
		t.Errorf("USD rate = %v, want default 3.75", got)
	}
	if got := store.Rate(domain.EUR); got != 4.05 {
		t.Errorf("EUR rate = %v, want default 4.05", got)
	}
}

func TestFetchLiveRatesZeroQuoteIsExhausted(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates": {"ILS": "0", "EUR": "0.9"}}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates": {"ILS": 0, "EUR": 0.9}}`))
	}))
	defer fallback.Close()

	fetcher := NewFetcher(NewStore(nil), primary.URL, fallback.URL)

	if err := fetcher.FetchLiveRates(context.Background(), ""); !errors.Is(err, ErrFetchExhausted) {
		t.Fatalf("err = %v, want ErrFetchExhausted", err)
	}
}

func TestDeriveRatesRoundsToFourPlaces(t *testing.T) {
	fetcher := NewFetcher(NewStore(nil), "http://unused", "http://unused")

	derived, err := fetcher.deriveRates(map[string]float64{"ILS": 3.7007, "EUR": 0.9177})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := derived[domain.USD]; got != 3.7007 {
		t.Errorf("USD = %v, want 3.7007", got)
	}
	// 3.7007 / 0.9177 = 4.03258... -> 4.0326
	if got := derived[domain.EUR]; got != 4.0326 {
		t.Errorf("EUR = %v, want 4.0326", got)
	}
}
