// Package alert surfaces leases approaching expiration.
package alert

import (
	"math"
	"sort"
	"time"

	"github.com/nadlan/propstat/internal/domain"
)

// DefaultThresholdDays is the near-term window for expiry alerts.
const DefaultThresholdDays = 60

// ExpiringLease describes a lease expiring within the threshold window.
type ExpiringLease struct {
	Address       string              `json:"address"`
	UnitName      string              `json:"unitName,omitempty"`
	TenantName    string              `json:"tenantName"`
	ExpiryDate    time.Time           `json:"expiryDate"`
	DaysRemaining int                 `json:"daysRemaining"`
	MonthlyRent   float64             `json:"monthlyRent"`
	Currency      domain.CurrencyCode `json:"currency"`
}

// ExpiringLeases scans main and unit leases and returns those expiring
// within thresholdDays of asOf, soonest first. Already-expired leases are
// excluded. A non-positive threshold selects the default. The scan is
// stateless; asOf is an explicit input.
func ExpiringLeases(props []domain.Property, asOf time.Time, thresholdDays int) []ExpiringLease {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}

	var expiring []ExpiringLease
	for _, p := range props {
		if entry, ok := check(p, "", p.Lease, asOf, thresholdDays); ok {
			expiring = append(expiring, entry)
		}
		for _, u := range p.Units {
			if entry, ok := check(p, u.Name, u.Lease, asOf, thresholdDays); ok {
				expiring = append(expiring, entry)
			}
		}
	}

	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].DaysRemaining < expiring[j].DaysRemaining
	})
	return expiring
}

func check(p domain.Property, unitName string, lease *domain.Lease, asOf time.Time, thresholdDays int) (ExpiringLease, bool) {
	if lease == nil || lease.ExpirationDate.IsZero() {
		return ExpiringLease{}, false
	}

	days := daysUntil(lease.ExpirationDate, asOf)
	if days < 0 || days > thresholdDays {
		return ExpiringLease{}, false
	}

	return ExpiringLease{
		Address:       p.Address,
		UnitName:      unitName,
		TenantName:    lease.TenantName,
		ExpiryDate:    lease.ExpirationDate,
		DaysRemaining: days,
		MonthlyRent:   lease.MonthlyRent,
		Currency:      p.Currency,
	}, true
}

// daysUntil counts whole days from asOf to expiry, rounding partial days
// up: a lease expiring later today reports 1.
func daysUntil(expiry, asOf time.Time) int {
	return int(math.Ceil(expiry.Sub(asOf).Hours() / 24))
}
