package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nadlan/propstat/internal/domain"
)

// Postgres implements Repository with PostgreSQL. Properties carry nested
// partner/unit/lease structures and are stored as JSONB documents;
// transactions are flat rows.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL repository.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Properties(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.pool.Query(ctx, `SELECT data FROM properties ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var props []domain.Property
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		var p domain.Property
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (r *Postgres) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, property_id, date, amount, type, category, notes
		 FROM transactions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.PropertyID, &t.Date, &t.Amount, &t.Type, &t.Category, &t.Notes); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *Postgres) Companies(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, user_ownership FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.UserOwnership); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *Postgres) SaveProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := validateProperty(p); err != nil {
		return domain.Property{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return domain.Property{}, fmt.Errorf("encoding property: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO properties (id, data)
		 VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = $2::jsonb, updated_at = NOW()`,
		p.ID, raw)
	if err != nil {
		return domain.Property{}, fmt.Errorf("saving property %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *Postgres) SaveTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if err := validateTransaction(t); err != nil {
		return domain.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, property_id, date, amount, type, category, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   property_id = $2, date = $3, amount = $4, type = $5, category = $6, notes = $7`,
		t.ID, t.PropertyID, t.Date, t.Amount, t.Type, t.Category, t.Notes)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("saving transaction %s: %w", t.ID, err)
	}
	return t, nil
}

func (r *Postgres) SaveCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	if err := validateCompany(c); err != nil {
		return domain.Company{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (id, name, user_ownership)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = $2, user_ownership = $3`,
		c.ID, c.Name, c.UserOwnership)
	if err != nil {
		return domain.Company{}, fmt.Errorf("saving company %s: %w", c.ID, err)
	}
	return c, nil
}
