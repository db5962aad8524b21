// Package income aggregates rental income and cash flow across the
// portfolio in a chosen display currency.
package income

import (
	"time"

	"github.com/samber/lo"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/rates"
)

// ProjectedAnnualRent returns twelve months of lease rent for a property
// in its native currency. Split properties sum their unit leases; simple
// properties use the main lease; unleased properties project 0 and
// callers may fall back to transaction-derived income.
func ProjectedAnnualRent(p domain.Property) float64 {
	if p.IsSplit() {
		monthly := lo.Reduce(p.Units, func(sum float64, u domain.PropertyUnit, _ int) float64 {
			if u.Lease == nil {
				return sum
			}
			return sum + u.Lease.MonthlyRent
		}, 0.0)
		return monthly * 12
	}
	if p.Lease != nil {
		return p.Lease.MonthlyRent * 12
	}
	return 0
}

// MonthBucket is one month of converted income and expense totals.
type MonthBucket struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Aggregator computes transaction aggregates converted into a display
// currency. It never mutates its inputs.
type Aggregator struct {
	conv *rates.Converter
}

// NewAggregator creates an Aggregator converting through conv.
func NewAggregator(conv *rates.Converter) *Aggregator {
	return &Aggregator{conv: conv}
}

// NetCashFlow sums transactions dated in [from, to), income positive and
// expense negative, converted to the display currency. Transactions whose
// owning property is missing from the snapshot are valued in the fallback
// currency rather than rejected.
func (a *Aggregator) NetCashFlow(txs []domain.Transaction, props []domain.Property, from, to time.Time, display domain.CurrencyCode) float64 {
	byID := lo.KeyBy(props, func(p domain.Property) string { return p.ID })

	window := lo.Filter(txs, func(t domain.Transaction, _ int) bool {
		return t.InWindow(from, to)
	})

	return lo.Reduce(window, func(acc float64, t domain.Transaction, _ int) float64 {
		amount := a.conv.Convert(t.Amount, a.nativeCurrency(byID, t), display)
		if t.Type == domain.Income {
			return acc + amount
		}
		return acc - amount
	}, 0.0)
}

// MonthlyPerformance buckets transactions into the last `months` calendar
// months ending at now, oldest first, converted to the display currency.
func (a *Aggregator) MonthlyPerformance(txs []domain.Transaction, props []domain.Property, months int, now time.Time, display domain.CurrencyCode) []MonthBucket {
	byID := lo.KeyBy(props, func(p domain.Property) string { return p.ID })

	buckets := make([]MonthBucket, 0, months)
	index := make(map[[2]int]int, months)
	for i := months - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		index[[2]int{m.Year(), int(m.Month())}] = len(buckets)
		buckets = append(buckets, MonthBucket{Year: m.Year(), Month: int(m.Month())})
	}

	for _, t := range txs {
		i, ok := index[[2]int{t.Date.Year(), int(t.Date.Month())}]
		if !ok {
			continue
		}
		amount := a.conv.Convert(t.Amount, a.nativeCurrency(byID, t), display)
		if t.Type == domain.Income {
			buckets[i].Income += amount
		} else {
			buckets[i].Expense += amount
		}
	}

	return buckets
}

func (a *Aggregator) nativeCurrency(byID map[string]domain.Property, t domain.Transaction) domain.CurrencyCode {
	if p, ok := byID[t.PropertyID]; ok {
		return p.Currency
	}
	return domain.FallbackCurrency
}
