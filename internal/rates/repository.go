package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nadlan/propstat/internal/domain"
)

// ErrNoStoredRates indicates that no rate overrides have been persisted.
var ErrNoStoredRates = errors.New("no stored exchange rates")

// ErrNoAPIKey indicates that no provider API key has been stored.
var ErrNoAPIKey = errors.New("no stored API key")

const (
	settingRates  = "exchange_rates"
	settingAPIKey = "rates_api_key"
)

// SettingsRepository is the key-value persistence collaborator for the
// rate table and the provider API key.
type SettingsRepository interface {
	LoadRates(ctx context.Context) (map[domain.CurrencyCode]float64, error)
	SaveRates(ctx context.Context, table map[domain.CurrencyCode]float64) error
	DeleteRates(ctx context.Context) error
	APIKey(ctx context.Context) (string, error)
	SaveAPIKey(ctx context.Context, key string) error
}

// PgSettingsRepository implements SettingsRepository with PostgreSQL.
type PgSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewPgSettingsRepository creates a new PostgreSQL settings repository.
func NewPgSettingsRepository(pool *pgxpool.Pool) *PgSettingsRepository {
	return &PgSettingsRepository{pool: pool}
}

func (r *PgSettingsRepository) LoadRates(ctx context.Context) (map[domain.CurrencyCode]float64, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, settingRates).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoStoredRates
		}
		return nil, fmt.Errorf("loading exchange rates: %w", err)
	}

	var table map[domain.CurrencyCode]float64
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parsing stored exchange rates: %w", err)
	}
	return table, nil
}

func (r *PgSettingsRepository) SaveRates(ctx context.Context, table map[domain.CurrencyCode]float64) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encoding exchange rates: %w", err)
	}
	if err := r.save(ctx, settingRates, string(raw)); err != nil {
		return fmt.Errorf("saving exchange rates: %w", err)
	}
	return nil
}

func (r *PgSettingsRepository) DeleteRates(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, settingRates)
	if err != nil {
		return fmt.Errorf("deleting exchange rates: %w", err)
	}
	return nil
}

func (r *PgSettingsRepository) APIKey(ctx context.Context) (string, error) {
	var key string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, settingAPIKey).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoAPIKey
		}
		return "", fmt.Errorf("loading API key: %w", err)
	}
	return key, nil
}

func (r *PgSettingsRepository) SaveAPIKey(ctx context.Context, key string) error {
	if err := r.save(ctx, settingAPIKey, key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	return nil
}

func (r *PgSettingsRepository) save(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value)
	return err
}

// MemorySettingsRepository is an in-memory SettingsRepository used by the
// demo backend and tests.
type MemorySettingsRepository struct {
	mu     sync.Mutex
	rates  []byte
	apiKey string
}

// NewMemorySettingsRepository creates an empty in-memory settings store.
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) LoadRates(ctx context.Context) (map[domain.CurrencyCode]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rates == nil {
		return nil, ErrNoStoredRates
	}
	var table map[domain.CurrencyCode]float64
	if err := json.Unmarshal(r.rates, &table); err != nil {
		return nil, fmt.Errorf("parsing stored exchange rates: %w", err)
	}
	return table, nil
}

func (r *MemorySettingsRepository) SaveRates(ctx context.Context, table map[domain.CurrencyCode]float64) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.rates = raw
	r.mu.Unlock()
	return nil
}

func (r *MemorySettingsRepository) DeleteRates(ctx context.Context) error {
	r.mu.Lock()
	r.rates = nil
	r.mu.Unlock()
	return nil
}

func (r *MemorySettingsRepository) APIKey(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.apiKey == "" {
		return "", ErrNoAPIKey
	}
	return r.apiKey, nil
}

func (r *MemorySettingsRepository) SaveAPIKey(ctx context.Context, key string) error {
	r.mu.Lock()
	r.apiKey = key
	r.mu.Unlock()
	return nil
}

// Corrupt seeds an unparseable rates entry. Test helper.
func (r *MemorySettingsRepository) Corrupt() {
	r.mu.Lock()
	r.rates = []byte(`{not json`)
	r.mu.Unlock()
}
