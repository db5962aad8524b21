package domain

import "time"

// PropertyType classifies a property by its use.
type PropertyType string

const (
	TypeResidential PropertyType = "Residential"
	TypeCommercial  PropertyType = "Commercial"
	TypeLogistics   PropertyType = "Logistics"
	TypeShop        PropertyType = "Shop"
)

// Partner is a co-owner of a property. Percentage is in the 0-100 range.
// HasAccess marks the record that represents the acting user.
type Partner struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	HasAccess  bool    `json:"hasAccess"`
}

// Company is an indirect holding vehicle. UserOwnership is the percentage
// of the company the user owns (0-100).
type Company struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	UserOwnership float64 `json:"userOwnership"`
}

// Lease binds a tenant to a property or unit until ExpirationDate.
// MonthlyRent is in the owning property's native currency.
type Lease struct {
	ExpirationDate time.Time `json:"expirationDate"`
	TenantName     string    `json:"tenantName"`
	MonthlyRent    float64   `json:"monthlyRent"`
}

// PropertyUnit is a sub-division of a split property with its own lease.
type PropertyUnit struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Size  float64 `json:"size,omitempty"`
	Lease *Lease  `json:"lease,omitempty"`
}

// MortgageMix describes how a mortgage splits across track types.
// Informational only; no calculation consumes it.
type MortgageMix struct {
	FixedPercent    float64 `json:"fixedPercent"`
	VariablePercent float64 `json:"variablePercent"`
	PrimePercent    float64 `json:"primePercent"`
}

// Property is the aggregate root of the portfolio. Monetary fields are in
// the property's native Currency; rate fields are percentages (0-100).
// A property is either simple (optional Lease) or split (Units), not both.
type Property struct {
	ID                   string         `json:"id"`
	Address              string         `json:"address"`
	Country              string         `json:"country"`
	Type                 PropertyType   `json:"type"`
	Currency             CurrencyCode   `json:"currency"`
	PurchasePrice        float64        `json:"purchasePrice"`
	MarketValue          float64        `json:"marketValue"`
	IncomeTaxRate        float64        `json:"incomeTaxRate"`
	PropertyTaxRate      float64        `json:"propertyTaxRate"`
	LoanBalance          float64        `json:"loanBalance,omitempty"`
	MortgageInterestRate float64        `json:"mortgageInterestRate,omitempty"`
	MonthlyMortgage      float64        `json:"monthlyMortgage,omitempty"`
	BankName             string         `json:"bankName,omitempty"`
	MortgageMix          *MortgageMix   `json:"mortgageMix,omitempty"`
	HoldingCompany       string         `json:"holdingCompany,omitempty"`
	Partners             []Partner      `json:"partners,omitempty"`
	Lease                *Lease         `json:"lease,omitempty"`
	Units                []PropertyUnit `json:"units,omitempty"`
}

// IsSplit reports whether the property is divided into independently
// leased units.
func (p Property) IsSplit() bool { return len(p.Units) > 0 }

// PartnerTotal returns the sum of all partner percentages.
func (p Property) PartnerTotal() float64 {
	var total float64
	for _, partner := range p.Partners {
		total += partner.Percentage
	}
	return total
}
