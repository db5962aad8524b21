package domain

import (
	"testing"
	"time"
)

func TestValidCurrency(t *testing.T) {
	for _, c := range Currencies() {
		if !ValidCurrency(c) {
			t.Errorf("ValidCurrency(%s) = false, want true", c)
		}
	}
	if ValidCurrency("GBP") {
		t.Error("ValidCurrency(GBP) = true, want false")
	}
	if ValidCurrency("") {
		t.Error("ValidCurrency(\"\") = true, want false")
	}
}

func TestISOCode(t *testing.T) {
	tests := []struct {
		code CurrencyCode
		want string
	}{
		{NIS, "ILS"},
		{USD, "USD"},
		{EUR, "EUR"},
	}
	for _, tt := range tests {
		if got := tt.code.ISOCode(); got != tt.want {
			t.Errorf("ISOCode(%s) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestIsOperatingExpense(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{"maintenance", Transaction{Type: Expense, Category: "Maintenance"}, true},
		{"mortgage payment", Transaction{Type: Expense, Category: CategoryMortgage}, false},
		{"income", Transaction{Type: Income, Category: "Rent"}, false},
	}
	for _, tt := range tests {
		if got := tt.tx.IsOperatingExpense(); got != tt.want {
			t.Errorf("%s: IsOperatingExpense = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInWindow(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"at start", from, true},
		{"inside", from.AddDate(0, 0, 15), true},
		{"at end", to, false},
		{"before", from.AddDate(0, 0, -1), false},
	}
	for _, tt := range tests {
		tx := Transaction{Date: tt.date}
		if got := tx.InWindow(from, to); got != tt.want {
			t.Errorf("%s: InWindow = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsSplitAndPartnerTotal(t *testing.T) {
	p := Property{Units: []PropertyUnit{{Name: "A"}}}
	if !p.IsSplit() {
		t.Error("IsSplit = false for a property with units")
	}
	if (Property{}).IsSplit() {
		t.Error("IsSplit = true for a property without units")
	}

	p = Property{Partners: []Partner{{Percentage: 25}, {Percentage: 75}}}
	if got := p.PartnerTotal(); got != 100 {
		t.Errorf("PartnerTotal = %v, want 100", got)
	}
}
