package income

import (
	"math"
	"testing"
	"time"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/rates"
)

func newAggregator() *Aggregator {
	store := rates.NewStore(rates.NewMemorySettingsRepository())
	return NewAggregator(rates.NewConverter(store))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestProjectedAnnualRentMainLease(t *testing.T) {
	p := domain.Property{Lease: &domain.Lease{MonthlyRent: 2000}}
	if got := ProjectedAnnualRent(p); got != 24000 {
		t.Errorf("ProjectedAnnualRent = %v, want 24000", got)
	}
}

func TestProjectedAnnualRentUnits(t *testing.T) {
	p := domain.Property{Units: []domain.PropertyUnit{
		{Name: "A", Lease: &domain.Lease{MonthlyRent: 1500}},
		{Name: "B", Lease: &domain.Lease{MonthlyRent: 1200}},
		{Name: "C"}, // vacant
	}}
	if got := ProjectedAnnualRent(p); got != 32400 {
		t.Errorf("ProjectedAnnualRent = %v, want 32400", got)
	}
}

func TestProjectedAnnualRentUnleased(t *testing.T) {
	if got := ProjectedAnnualRent(domain.Property{}); got != 0 {
		t.Errorf("ProjectedAnnualRent = %v, want 0", got)
	}
}

func TestNetCashFlowWindowBoundaries(t *testing.T) {
	a := newAggregator()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	props := []domain.Property{{ID: "p1", Currency: domain.NIS}}
	txs := []domain.Transaction{
		{ID: "t1", PropertyID: "p1", Type: domain.Income, Amount: 100, Date: from},                     // inclusive start
		{ID: "t2", PropertyID: "p1", Type: domain.Income, Amount: 50, Date: to},                        // exclusive end
		{ID: "t3", PropertyID: "p1", Type: domain.Income, Amount: 25, Date: from.AddDate(0, 0, -1)},    // before window
		{ID: "t4", PropertyID: "p1", Type: domain.Expense, Amount: 40, Date: from.AddDate(0, 0, 10)},   // in window
	}

	got := a.NetCashFlow(txs, props, from, to, domain.NIS)
	if !almostEqual(got, 60) {
		t.Errorf("NetCashFlow = %v, want 60", got)
	}
}

func TestNetCashFlowConvertsToDisplayCurrency(t *testing.T) {
	a := newAggregator()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	props := []domain.Property{{ID: "p1", Currency: domain.USD}}
	txs := []domain.Transaction{
		{ID: "t1", PropertyID: "p1", Type: domain.Income, Amount: 100, Date: from},
	}

	got := a.NetCashFlow(txs, props, from, to, domain.NIS)
	if !almostEqual(got, 375) {
		t.Errorf("NetCashFlow = %v, want 375 (100 USD at the default rate)", got)
	}
}

func TestNetCashFlowOrphanTransactionFallsBackToUSD(t *testing.T) {
	a := newAggregator()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	txs := []domain.Transaction{
		{ID: "t1", PropertyID: "missing", Type: domain.Income, Amount: 10, Date: from},
	}

	got := a.NetCashFlow(txs, nil, from, to, domain.NIS)
	if !almostEqual(got, 37.5) {
		t.Errorf("NetCashFlow = %v, want 37.5 (orphan valued in USD)", got)
	}
}

func TestMonthlyPerformance(t *testing.T) {
	a := newAggregator()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	props := []domain.Property{{ID: "p1", Currency: domain.NIS}}
	txs := []domain.Transaction{
		{ID: "t1", PropertyID: "p1", Type: domain.Income, Amount: 900, Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "t2", PropertyID: "p1", Type: domain.Expense, Amount: 200, Date: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
		{ID: "t3", PropertyID: "p1", Type: domain.Income, Amount: 300, Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}, // outside window
	}

	buckets := a.MonthlyPerformance(txs, props, 3, now, domain.NIS)
	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3", len(buckets))
	}

	// Oldest first: April, May, June.
	if buckets[0].Year != 2025 || buckets[0].Month != 4 {
		t.Errorf("buckets[0] = %d-%02d, want 2025-04", buckets[0].Year, buckets[0].Month)
	}
	if buckets[1].Expense != 200 {
		t.Errorf("May expense = %v, want 200", buckets[1].Expense)
	}
	if buckets[2].Income != 900 {
		t.Errorf("June income = %v, want 900", buckets[2].Income)
	}
	if buckets[0].Income != 0 || buckets[0].Expense != 0 {
		t.Errorf("April bucket = %+v, want empty", buckets[0])
	}
}
