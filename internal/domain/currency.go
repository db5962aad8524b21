package domain

// CurrencyCode identifies one of the currencies the tracker understands.
type CurrencyCode string

const (
	NIS CurrencyCode = "NIS"
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
)

// BaseCurrency is the currency all stored exchange rates are expressed in:
// a stored rate is the number of BASE units per 1 foreign unit.
const BaseCurrency = NIS

// FallbackCurrency is assumed for transactions whose owning property
// cannot be found in the snapshot.
const FallbackCurrency = USD

// Currencies lists every supported currency, base first.
func Currencies() []CurrencyCode {
	return []CurrencyCode{NIS, USD, EUR}
}

// ValidCurrency reports whether code is one of the supported currencies.
func ValidCurrency(code CurrencyCode) bool {
	switch code {
	case NIS, USD, EUR:
		return true
	}
	return false
}

// ISOCode maps a currency to its real-world ISO 4217 code for formatting.
// NIS is a synthetic base unit internally but formats as ILS.
func (c CurrencyCode) ISOCode() string {
	if c == NIS {
		return "ILS"
	}
	return string(c)
}
