package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nadlan/propstat/internal/alert"
	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/income"
	"github.com/nadlan/propstat/internal/ownership"
	"github.com/nadlan/propstat/internal/rates"
	"github.com/nadlan/propstat/internal/repository"
	"github.com/nadlan/propstat/internal/tax"
	"github.com/nadlan/propstat/internal/valuation"
)

// RateRefresher triggers a live exchange-rate refresh.
type RateRefresher interface {
	FetchLiveRates(ctx context.Context, apiKey string) error
}

// Handler provides the JSON endpoints of the tracker API.
type Handler struct {
	repo           repository.Repository
	store          *rates.Store
	refresher      RateRefresher
	conv           *rates.Converter
	engine         *valuation.Engine
	estimator      *tax.Estimator
	aggregator     *income.Aggregator
	defaultAPIKey  string
	leaseAlertDays int
}

// NewHandler creates a new API handler.
func NewHandler(repo repository.Repository, store *rates.Store, refresher RateRefresher, defaultAPIKey string, leaseAlertDays int) *Handler {
	conv := rates.NewConverter(store)
	return &Handler{
		repo:           repo,
		store:          store,
		refresher:      refresher,
		conv:           conv,
		engine:         valuation.NewEngine(conv),
		estimator:      tax.NewEstimator(conv),
		aggregator:     income.NewAggregator(conv),
		defaultAPIKey:  defaultAPIKey,
		leaseAlertDays: leaseAlertDays,
	}
}

type snapshot struct {
	props     []domain.Property
	txs       []domain.Transaction
	companies []domain.Company
}

func (h *Handler) loadSnapshot(ctx context.Context) (snapshot, error) {
	props, err := h.repo.Properties(ctx)
	if err != nil {
		return snapshot{}, err
	}
	txs, err := h.repo.Transactions(ctx)
	if err != nil {
		return snapshot{}, err
	}
	companies, err := h.repo.Companies(ctx)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{props: props, txs: txs, companies: companies}, nil
}

// GetSummary handles GET /api/v1/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	display, ok := displayCurrency(w, r)
	if !ok {
		return
	}

	snap, err := h.loadSnapshot(r.Context())
	if err != nil {
		slog.Error("failed to load snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":         display,
		"propertyCount":    len(snap.props),
		"totalEquity":      h.engine.PortfolioEquity(snap.props, snap.companies, display),
		"monthlyCashFlow":  h.aggregator.NetCashFlow(snap.txs, snap.props, now.AddDate(0, 0, -30), now, display),
		"taxLiability":     h.estimator.PortfolioTax(snap.props, snap.txs, display),
		"regionAllocation": h.engine.RegionAllocation(snap.props, display),
		"expiringLeases":   alert.ExpiringLeases(snap.props, now, h.leaseAlertDays),
	})
}

// propertyView is the per-property portfolio listing entry.
type propertyView struct {
	ID          string              `json:"id"`
	Address     string              `json:"address"`
	Country     string              `json:"country"`
	Type        domain.PropertyType `json:"type"`
	Currency    domain.CurrencyCode `json:"currency"`
	MarketValue float64             `json:"marketValue"`
	UserShare   float64             `json:"userShare"`
	UserEquity  float64             `json:"userEquity"`
	CapRate     string              `json:"capRate"`
	AnnualRent  float64             `json:"projectedAnnualRent"`
}

// GetPortfolio handles GET /api/v1/portfolio.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	display, ok := displayCurrency(w, r)
	if !ok {
		return
	}

	snap, err := h.loadSnapshot(r.Context())
	if err != nil {
		slog.Error("failed to load snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]propertyView, 0, len(snap.props))
	for _, p := range snap.props {
		views = append(views, propertyView{
			ID:          p.ID,
			Address:     p.Address,
			Country:     p.Country,
			Type:        p.Type,
			Currency:    p.Currency,
			MarketValue: h.conv.Convert(p.MarketValue, p.Currency, display),
			UserShare:   ownership.ResolveUserShare(p, snap.companies),
			UserEquity:  h.engine.UserEquity(p, snap.companies, display),
			CapRate:     valuation.DisplayCapRate(h.engine.CapRate(p, snap.txs)),
			AnnualRent:  income.ProjectedAnnualRent(p),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// GetTaxReport handles GET /api/v1/tax-report.
func (h *Handler) GetTaxReport(w http.ResponseWriter, r *http.Request) {
	display, ok := displayCurrency(w, r)
	if !ok {
		return
	}

	snap, err := h.loadSnapshot(r.Context())
	if err != nil {
		slog.Error("failed to load snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows, total := h.estimator.Report(snap.props, snap.txs, display)
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":        display,
		"rows":            rows,
		"totalLiability":  total,
		"incomeByCountry": h.estimator.IncomeByCountry(snap.props, snap.txs, display),
	})
}

// GetExpiringLeases handles GET /api/v1/leases/expiring.
func (h *Handler) GetExpiringLeases(w http.ResponseWriter, r *http.Request) {
	days := h.leaseAlertDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = n
	}

	props, err := h.repo.Properties(r.Context())
	if err != nil {
		slog.Error("failed to load properties", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, alert.ExpiringLeases(props, time.Now(), days))
}

// GetPerformance handles GET /api/v1/performance.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	display, ok := displayCurrency(w, r)
	if !ok {
		return
	}

	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 60 {
			writeError(w, http.StatusBadRequest, "invalid months parameter")
			return
		}
		months = n
	}

	snap, err := h.loadSnapshot(r.Context())
	if err != nil {
		slog.Error("failed to load snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, h.aggregator.MonthlyPerformance(snap.txs, snap.props, months, time.Now(), display))
}

// GetRates handles GET /api/v1/rates.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"base":  domain.BaseCurrency,
		"rates": h.store.Rates(),
	})
}

// SetRate handles PUT /api/v1/rates/{currency}.
func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	currency := domain.CurrencyCode(r.PathValue("currency"))
	if !domain.ValidCurrency(currency) || currency == domain.BaseCurrency {
		writeError(w, http.StatusBadRequest, "unknown or non-settable currency")
		return
	}

	var body struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Non-positive rates are ignored by contract, not rejected.
	h.store.SetRate(r.Context(), currency, body.Rate)
	h.GetRates(w, r)
}

// RefreshRates handles POST /api/v1/rates/refresh.
func (h *Handler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.FetchLiveRates(r.Context(), h.defaultAPIKey); err != nil {
		if errors.Is(err, rates.ErrFetchExhausted) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		slog.Error("rate refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.GetRates(w, r)
}

// ResetRates handles POST /api/v1/rates/reset.
func (h *Handler) ResetRates(w http.ResponseWriter, r *http.Request) {
	h.store.ResetRates(r.Context())
	h.GetRates(w, r)
}

func displayCurrency(w http.ResponseWriter, r *http.Request) (domain.CurrencyCode, bool) {
	v := r.URL.Query().Get("currency")
	if v == "" {
		return domain.BaseCurrency, true
	}
	currency := domain.CurrencyCode(v)
	if !domain.ValidCurrency(currency) {
		writeError(w, http.StatusBadRequest, "unknown currency")
		return "", false
	}
	return currency, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
