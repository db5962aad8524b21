package rates

import (
	"math"

	"github.com/Rhymond/go-money"

	"github.com/nadlan/propstat/internal/domain"
)

var symbols = map[domain.CurrencyCode]string{
	domain.NIS: "₪",
	domain.USD: "$",
	domain.EUR: "€",
}

// Converter performs currency conversion and display formatting over a
// rate store. Conversion pivots through the base currency; any supported
// pair is convertible.
type Converter struct {
	store *Store
}

// NewConverter creates a Converter reading rates from store.
func NewConverter(store *Store) *Converter {
	return &Converter{store: store}
}

// Convert translates amount from one currency to another. The result is
// not rounded; rounding happens only at the display step.
func (c *Converter) Convert(amount float64, from, to domain.CurrencyCode) float64 {
	if from == to {
		return amount
	}
	inBase := amount * c.store.Rate(from)
	return inBase / c.store.Rate(to)
}

// Format renders amount as a monetary string with the currency glyph and
// no fractional digits, e.g. "₪1,234". NIS formats under its real-world
// ISO code ILS.
func (c *Converter) Format(amount float64, currency domain.CurrencyCode) string {
	cur := money.GetCurrency(currency.ISOCode())
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	f := money.NewFormatter(0, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(int64(math.Round(amount)))
}

// Symbol returns the display glyph for a currency.
func (c *Converter) Symbol(currency domain.CurrencyCode) string {
	return symbols[currency]
}
