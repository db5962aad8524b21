package domain

import "time"

// TransactionType separates money coming in from money going out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// CategoryMortgage marks debt-service expenses. They sit below the NOI
// line and are excluded from operating-expense aggregation.
const CategoryMortgage = "Mortgage"

// Transaction is an immutable cash fact against a property. Amount is
// positive and denominated in the owning property's native currency.
type Transaction struct {
	ID         string          `json:"id"`
	PropertyID string          `json:"propertyId"`
	Date       time.Time       `json:"date"`
	Amount     float64         `json:"amount"`
	Type       TransactionType `json:"type"`
	Category   string          `json:"category"`
	Notes      string          `json:"notes,omitempty"`
}

// IsOperatingExpense reports whether the transaction counts against net
// operating income.
func (t Transaction) IsOperatingExpense() bool {
	return t.Type == Expense && t.Category != CategoryMortgage
}

// InWindow reports whether the transaction date falls in [from, to).
func (t Transaction) InWindow(from, to time.Time) bool {
	return !t.Date.Before(from) && t.Date.Before(to)
}
