// Package export writes the tax report to spreadsheet destinations.
package export

import (
	"context"
	"fmt"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/repository"
	"github.com/nadlan/propstat/internal/tax"
)

// ReportWriter writes tax-report rows to a spreadsheet destination.
type ReportWriter interface {
	Write(ctx context.Context, rows []tax.ReportRow, total float64, display domain.CurrencyCode) error
}

// Service builds the tax report from the current snapshot and delegates
// writing to a ReportWriter.
type Service struct {
	repo      repository.Repository
	estimator *tax.Estimator
	writer    ReportWriter
}

// NewService creates a new export Service.
func NewService(repo repository.Repository, estimator *tax.Estimator, writer ReportWriter) *Service {
	return &Service{
		repo:      repo,
		estimator: estimator,
		writer:    writer,
	}
}

// Export loads the portfolio snapshot, computes the tax report in the
// display currency, and writes it out.
func (s *Service) Export(ctx context.Context, display domain.CurrencyCode) error {
	props, err := s.repo.Properties(ctx)
	if err != nil {
		return fmt.Errorf("loading properties: %w", err)
	}
	txs, err := s.repo.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}

	rows, total := s.estimator.Report(props, txs, display)
	if err := s.writer.Write(ctx, rows, total, display); err != nil {
		return fmt.Errorf("writing tax report: %w", err)
	}
	return nil
}
