package rates

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/nadlan/propstat/internal/domain"
)

// defaultRates are the hard-coded NIS-base rates used until live or
// persisted rates replace them.
var defaultRates = map[domain.CurrencyCode]float64{
	domain.NIS: 1,
	domain.USD: 3.75,
	domain.EUR: 4.05,
}

// DefaultRates returns a copy of the hard-coded rate table.
func DefaultRates() map[domain.CurrencyCode]float64 {
	return maps.Clone(defaultRates)
}

// Store holds the current exchange-rate table. Reads return independent
// copies so callers never observe a partially updated table. Mutations go
// through SetRate/ResetRates and are persisted via the settings repository.
type Store struct {
	mu    sync.RWMutex
	table map[domain.CurrencyCode]float64
	repo  SettingsRepository
}

// NewStore creates a Store initialized to the default rates. repo may be
// nil for a purely in-memory store.
func NewStore(repo SettingsRepository) *Store {
	return &Store{
		table: maps.Clone(defaultRates),
		repo:  repo,
	}
}

// Load overlays persisted rate overrides on top of the defaults. A missing
// or corrupt settings entry leaves the defaults in place.
func (s *Store) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}

	stored, err := s.repo.LoadRates(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoStoredRates) {
			slog.Warn("stored exchange rates unusable, keeping defaults", "error", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for currency, rate := range stored {
		if !domain.ValidCurrency(currency) || currency == domain.BaseCurrency || rate <= 0 {
			continue
		}
		s.table[currency] = rate
	}
}

// Rates returns a defensive copy of the current rate table.
func (s *Store) Rates() map[domain.CurrencyCode]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.table)
}

// Rate returns the stored rate for a currency (BASE units per 1 unit of
// currency). Unknown currencies report 0.
func (s *Store) Rate(currency domain.CurrencyCode) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table[currency]
}

// SetRate updates a single currency's rate and persists the table.
// Non-positive rates and attempts to reassign the base currency are
// silently ignored.
func (s *Store) SetRate(ctx context.Context, currency domain.CurrencyCode, rate float64) {
	if rate <= 0 || currency == domain.BaseCurrency || !domain.ValidCurrency(currency) {
		return
	}

	s.mu.Lock()
	s.table[currency] = rate
	snapshot := maps.Clone(s.table)
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.SaveRates(ctx, snapshot); err != nil {
		slog.Warn("failed to persist exchange rates", "currency", currency, "error", err)
	}
}

// ResetRates restores the hard-coded defaults and clears persisted
// overrides.
func (s *Store) ResetRates(ctx context.Context) {
	s.mu.Lock()
	s.table = maps.Clone(defaultRates)
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.DeleteRates(ctx); err != nil {
		slog.Warn("failed to clear persisted exchange rates", "error", err)
	}
}
