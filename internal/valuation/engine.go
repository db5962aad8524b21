// Package valuation computes per-property and portfolio-level equity and
// yield metrics over read-only snapshots.
package valuation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/income"
	"github.com/nadlan/propstat/internal/ownership"
	"github.com/nadlan/propstat/internal/rates"
)

// Engine derives valuation numbers in a display currency.
type Engine struct {
	conv *rates.Converter
}

// NewEngine creates an Engine converting through conv.
func NewEngine(conv *rates.Converter) *Engine {
	return &Engine{conv: conv}
}

// Equity is market value minus loan balance, both converted.
func (e *Engine) Equity(p domain.Property, display domain.CurrencyCode) float64 {
	value := e.conv.Convert(p.MarketValue, p.Currency, display)
	loan := e.conv.Convert(p.LoanBalance, p.Currency, display)
	return value - loan
}

// UserEquity is the user's share of a property's equity, apportioned by
// the resolved ownership percentage.
func (e *Engine) UserEquity(p domain.Property, companies []domain.Company, display domain.CurrencyCode) float64 {
	return e.Equity(p, display) * ownership.ResolveUserShare(p, companies) / 100
}

// PortfolioEquity sums the user's equity across all properties.
func (e *Engine) PortfolioEquity(props []domain.Property, companies []domain.Company, display domain.CurrencyCode) float64 {
	return lo.Reduce(props, func(sum float64, p domain.Property, _ int) float64 {
		return sum + e.UserEquity(p, companies, display)
	}, 0.0)
}

// CapRate returns net operating income over market value as a percentage.
// Annual income is the projected lease rent; unleased properties fall
// back to the property's income transactions, with the transaction sum
// standing in for the annual figure. Mortgage payments are debt service,
// not operating expense, and are excluded. A zero market value yields 0.
//
// The returned value is unclamped; loss-making properties come back
// negative. The UX floor is applied only by DisplayCapRate.
func (e *Engine) CapRate(p domain.Property, txs []domain.Transaction) float64 {
	if p.MarketValue == 0 {
		return 0
	}

	propTxs := lo.Filter(txs, func(t domain.Transaction, _ int) bool {
		return t.PropertyID == p.ID
	})

	annualIncome := income.ProjectedAnnualRent(p)
	if annualIncome == 0 {
		annualIncome = lo.SumBy(propTxs, func(t domain.Transaction) float64 {
			if t.Type == domain.Income {
				return t.Amount
			}
			return 0
		})
	}

	annualExpense := lo.SumBy(propTxs, func(t domain.Transaction) float64 {
		if t.IsOperatingExpense() {
			return t.Amount
		}
		return 0
	})

	return (annualIncome - annualExpense) / p.MarketValue * 100
}

// DisplayCapRate renders a cap rate for presentation: floored at zero and
// fixed to one decimal place, e.g. "4.2" or "0.0".
func DisplayCapRate(rate float64) string {
	return decimal.NewFromFloat(max(rate, 0)).Round(1).StringFixed(1)
}

// RegionAllocation sums converted market value by country.
func (e *Engine) RegionAllocation(props []domain.Property, display domain.CurrencyCode) map[string]float64 {
	byCountry := lo.GroupBy(props, func(p domain.Property) string { return p.Country })

	allocation := make(map[string]float64, len(byCountry))
	for country, group := range byCountry {
		allocation[country] = lo.SumBy(group, func(p domain.Property) float64 {
			return e.conv.Convert(p.MarketValue, p.Currency, display)
		})
	}
	return allocation
}
