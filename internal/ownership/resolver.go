// Package ownership computes the user's effective percentage stake in a
// property from partner records and holding-company overrides.
package ownership

import (
	"github.com/samber/lo"

	"github.com/nadlan/propstat/internal/domain"
)

// ResolveUserShare returns the acting user's stake in a property as a
// percentage (0-100).
//
// Precedence: a partner record carrying the access flag wins; otherwise,
// with no partners at all, a holding-company match supplies the company's
// user ownership; otherwise the user is assumed sole owner.
func ResolveUserShare(p domain.Property, companies []domain.Company) float64 {
	partner, ok := lo.Find(p.Partners, func(pt domain.Partner) bool { return pt.HasAccess })
	if ok {
		return partner.Percentage
	}

	if len(p.Partners) == 0 && p.HoldingCompany != "" {
		company, ok := lo.Find(companies, func(c domain.Company) bool { return c.Name == p.HoldingCompany })
		if ok {
			return company.UserOwnership
		}
	}

	return 100
}

// ResolvePartnerShare is like ResolveUserShare but identifies the acting
// user by an explicit partner ID instead of scanning for the access flag.
// An empty or unmatched ID falls back to the flag-based resolution.
func ResolvePartnerShare(p domain.Property, partnerID string, companies []domain.Company) float64 {
	if partnerID != "" {
		partner, ok := lo.Find(p.Partners, func(pt domain.Partner) bool { return pt.ID == partnerID })
		if ok {
			return partner.Percentage
		}
	}
	return ResolveUserShare(p, companies)
}
