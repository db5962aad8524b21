// Package tax estimates annual tax liability per property and across the
// portfolio.
package tax

import (
	"github.com/samber/lo"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/rates"
)

// ReportRow is one property's line in the tax report.
type ReportRow struct {
	Address      string  `json:"address"`
	Country      string  `json:"country"`
	GrossNOI     float64 `json:"grossNoi"`
	EstimatedTax float64 `json:"estimatedTax"`
}

// Estimator derives estimated tax exposure in a display currency.
type Estimator struct {
	conv *rates.Converter
}

// NewEstimator creates an Estimator converting through conv.
func NewEstimator(conv *rates.Converter) *Estimator {
	return &Estimator{conv: conv}
}

// EstimatedTax computes a property's estimated annual tax liability:
// taxable income is gross NOI less annual property tax and mortgage
// interest, floored at zero, taxed at the property's income tax rate.
func (e *Estimator) EstimatedTax(p domain.Property, txs []domain.Transaction, display domain.CurrencyCode) float64 {
	_, estTax := e.propertyFigures(p, txs, display)
	return estTax
}

// PortfolioTax sums EstimatedTax across all properties.
func (e *Estimator) PortfolioTax(props []domain.Property, txs []domain.Transaction, display domain.CurrencyCode) float64 {
	return lo.Reduce(props, func(sum float64, p domain.Property, _ int) float64 {
		return sum + e.EstimatedTax(p, txs, display)
	}, 0.0)
}

// IncomeByCountry groups converted transaction income by property country.
func (e *Estimator) IncomeByCountry(props []domain.Property, txs []domain.Transaction, display domain.CurrencyCode) map[string]float64 {
	byCountry := make(map[string]float64)
	for _, p := range props {
		byCountry[p.Country] += e.txSum(p, txs, display, func(t domain.Transaction) bool {
			return t.Type == domain.Income
		})
	}
	return byCountry
}

// Report builds the per-property breakdown plus the total liability.
func (e *Estimator) Report(props []domain.Property, txs []domain.Transaction, display domain.CurrencyCode) ([]ReportRow, float64) {
	rows := make([]ReportRow, 0, len(props))
	var total float64
	for _, p := range props {
		noi, estTax := e.propertyFigures(p, txs, display)
		rows = append(rows, ReportRow{
			Address:      p.Address,
			Country:      p.Country,
			GrossNOI:     noi,
			EstimatedTax: estTax,
		})
		total += estTax
	}
	return rows, total
}

// propertyFigures returns (gross NOI, estimated tax), both converted.
func (e *Estimator) propertyFigures(p domain.Property, txs []domain.Transaction, display domain.CurrencyCode) (float64, float64) {
	incomeSum := e.txSum(p, txs, display, func(t domain.Transaction) bool {
		return t.Type == domain.Income
	})
	opEx := e.txSum(p, txs, display, domain.Transaction.IsOperatingExpense)

	grossNOI := incomeSum - opEx
	propertyTax := e.conv.Convert(p.MarketValue, p.Currency, display) * p.PropertyTaxRate / 100
	mortgageInterest := e.conv.Convert(p.LoanBalance, p.Currency, display) * p.MortgageInterestRate / 100

	taxable := max(0, grossNOI-propertyTax-mortgageInterest)
	return grossNOI, taxable * p.IncomeTaxRate / 100
}

func (e *Estimator) txSum(p domain.Property, txs []domain.Transaction, display domain.CurrencyCode, keep func(domain.Transaction) bool) float64 {
	matching := lo.Filter(txs, func(t domain.Transaction, _ int) bool {
		return t.PropertyID == p.ID && keep(t)
	})
	return lo.Reduce(matching, func(sum float64, t domain.Transaction, _ int) float64 {
		return sum + e.conv.Convert(t.Amount, p.Currency, display)
	}, 0.0)
}
