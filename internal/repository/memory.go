package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadlan/propstat/internal/domain"
)

// Memory is the in-memory Repository variant backing the demo mode and
// tests. Reads return copies; writes assign IDs when absent.
type Memory struct {
	mu           sync.RWMutex
	properties   []domain.Property
	transactions []domain.Transaction
	companies    []domain.Company
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

// NewDemo creates an in-memory repository seeded with the demo portfolio.
func NewDemo(now time.Time) *Memory {
	days := func(n int) time.Time { return now.AddDate(0, 0, n) }

	return &Memory{
		properties: []domain.Property{
			{
				ID: "p1", Address: "123 Main St", Country: "USA", Type: domain.TypeResidential,
				Currency: domain.USD, PurchasePrice: 250000, MarketValue: 320000,
				IncomeTaxRate: 25, PropertyTaxRate: 1.2,
				LoanBalance: 200000, MortgageInterestRate: 4.5, MonthlyMortgage: 1200, BankName: "Chase Bank",
				MortgageMix: &domain.MortgageMix{FixedPercent: 60, VariablePercent: 40},
				Partners: []domain.Partner{
					{ID: "user1", Name: "Me", Percentage: 50, HasAccess: true},
					{ID: "pt2", Name: "John Doe", Percentage: 50},
				},
				Lease: &domain.Lease{ExpirationDate: days(45), TenantName: "Alice Smith", MonthlyRent: 2000},
			},
			{
				ID: "p2", Address: "45 High St", Country: "UK", Type: domain.TypeShop,
				Currency: domain.EUR, PurchasePrice: 180000, MarketValue: 210000,
				IncomeTaxRate: 40, PropertyTaxRate: 0,
				LoanBalance: 140000, MortgageInterestRate: 3.8, MonthlyMortgage: 850, BankName: "HSBC",
				MortgageMix: &domain.MortgageMix{FixedPercent: 100},
				Partners: []domain.Partner{
					{ID: "user1", Name: "Me", Percentage: 100, HasAccess: true},
				},
				Lease: &domain.Lease{ExpirationDate: days(200), TenantName: "Bob Jones", MonthlyRent: 1400},
			},
			{
				ID: "p3", Address: "77 Rothschild Blvd", Country: "Israel", Type: domain.TypeCommercial,
				Currency: domain.NIS, PurchasePrice: 1500000, MarketValue: 1950000,
				IncomeTaxRate: 30, PropertyTaxRate: 2.5,
				LoanBalance: 1200000, MortgageInterestRate: 5.0, MonthlyMortgage: 6500, BankName: "Leumi",
				MortgageMix: &domain.MortgageMix{FixedPercent: 33, VariablePercent: 33, PrimePercent: 34},
				Partners: []domain.Partner{
					{ID: "user1", Name: "Me", Percentage: 25, HasAccess: true},
					{ID: "inv1", Name: "Inv Group A", Percentage: 75},
				},
				Lease: &domain.Lease{ExpirationDate: days(30), TenantName: "Tech Startup Ltd", MonthlyRent: 9000},
			},
		},
		transactions: []domain.Transaction{
			{ID: "t1", PropertyID: "p1", Date: days(-2), Amount: 2000, Type: domain.Income, Category: "Rent"},
			{ID: "t2", PropertyID: "p1", Date: days(-5), Amount: 150, Type: domain.Expense, Category: "Maintenance"},
			{ID: "t3", PropertyID: "p2", Date: days(-10), Amount: 1400, Type: domain.Income, Category: "Rent"},
			{ID: "t4", PropertyID: "p3", Date: days(-12), Amount: 9000, Type: domain.Income, Category: "Rent"},
			{ID: "t5", PropertyID: "p3", Date: days(-15), Amount: 3500, Type: domain.Expense, Category: domain.CategoryMortgage},
			{ID: "t6", PropertyID: "p1", Date: days(-45), Amount: 2000, Type: domain.Income, Category: "Rent"},
		},
	}
}

func (m *Memory) Properties(ctx context.Context) ([]domain.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.properties), nil
}

func (m *Memory) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.transactions), nil
}

func (m *Memory) Companies(ctx context.Context) ([]domain.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.companies), nil
}

func (m *Memory) SaveProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := validateProperty(p); err != nil {
		return domain.Property{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.properties {
		if existing.ID == p.ID {
			m.properties[i] = p
			return p, nil
		}
	}
	m.properties = append(m.properties, p)
	return p, nil
}

func (m *Memory) SaveTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if err := validateTransaction(t); err != nil {
		return domain.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.transactions {
		if existing.ID == t.ID {
			m.transactions[i] = t
			return t, nil
		}
	}
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m *Memory) SaveCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	if err := validateCompany(c); err != nil {
		return domain.Company{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.companies {
		if existing.ID == c.ID {
			m.companies[i] = c
			return c, nil
		}
	}
	m.companies = append(m.companies, c)
	return c, nil
}
