// Package repository provides snapshot reads and validated writes for
// properties, transactions, and companies. Two variants exist: an
// in-memory demo backend and a PostgreSQL backend, selected at the
// composition root. The calculation packages only ever see snapshots.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nadlan/propstat/internal/domain"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrOwnershipExceeded indicates partner percentages summing above 100.
var ErrOwnershipExceeded = errors.New("partner ownership exceeds 100%")

// Repository is the persistence collaborator the engine consumes.
type Repository interface {
	Properties(ctx context.Context) ([]domain.Property, error)
	Transactions(ctx context.Context) ([]domain.Transaction, error)
	Companies(ctx context.Context) ([]domain.Company, error)

	SaveProperty(ctx context.Context, p domain.Property) (domain.Property, error)
	SaveTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	SaveCompany(ctx context.Context, c domain.Company) (domain.Company, error)
}

// validateProperty rejects records the calculation core would otherwise
// have to guess about. Over-allocated partnerships are refused here, at
// data entry, rather than clamped downstream.
func validateProperty(p domain.Property) error {
	if !domain.ValidCurrency(p.Currency) {
		return fmt.Errorf("invalid currency %q", p.Currency)
	}
	if p.MarketValue < 0 {
		return fmt.Errorf("negative market value %v", p.MarketValue)
	}
	if p.Lease != nil && p.IsSplit() {
		return fmt.Errorf("property cannot carry both a main lease and units")
	}
	if total := p.PartnerTotal(); total > 100 {
		return fmt.Errorf("%w: %.1f", ErrOwnershipExceeded, total)
	}
	return nil
}

func validateTransaction(t domain.Transaction) error {
	if t.Amount <= 0 {
		return fmt.Errorf("transaction amount must be positive, got %v", t.Amount)
	}
	if t.Type != domain.Income && t.Type != domain.Expense {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	return nil
}

func validateCompany(c domain.Company) error {
	if c.UserOwnership < 0 || c.UserOwnership > 100 {
		return fmt.Errorf("company ownership out of range: %v", c.UserOwnership)
	}
	return nil
}
