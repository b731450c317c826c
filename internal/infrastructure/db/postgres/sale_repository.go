package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

var _ ports.SaleRepository = (*SaleRepository)(nil)

const saleColumns = `num_produit, design, prix::float8, quantite, created_at, updated_at`

// SaleRepository stores sales in the ventes table. Every operation is a
// single auto-committed statement.
type SaleRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSaleRepository(db *sql.DB, timeout time.Duration) *SaleRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SaleRepository{db: db, timeout: timeout}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var s domain.Sale
	if err := row.Scan(&s.NumProduit, &s.Design, &s.Prix, &s.Quantite, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+saleColumns+` FROM ventes ORDER BY num_produit`)
	if err != nil {
		return nil, translateError("list sales", err)
	}
	defer rows.Close()

	sales := make([]*domain.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, translateError("scan sale", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list sales", err)
	}
	return sales, nil
}

func (r *SaleRepository) Get(ctx context.Context, numProduit int64) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	s, err := scanSale(r.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM ventes WHERE num_produit = $1`, numProduit,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, translateError("get sale", err)
	}
	return s, nil
}

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	s, err := scanSale(r.db.QueryRowContext(ctx,
		`INSERT INTO ventes (design, prix, quantite, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+saleColumns,
		sale.Design, sale.Prix, sale.Quantite, sale.CreatedAt, sale.UpdatedAt,
	))
	if err != nil {
		return nil, translateError("insert sale", err)
	}
	return s, nil
}

// Update replaces design, prix and quantite and stamps updated_at. Missing
// rows are reported as domain.ErrSaleNotFound; nothing is inserted.
func (r *SaleRepository) Update(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	s, err := scanSale(r.db.QueryRowContext(ctx,
		`UPDATE ventes SET design = $1, prix = $2, quantite = $3, updated_at = $4
		 WHERE num_produit = $5
		 RETURNING `+saleColumns,
		sale.Design, sale.Prix, sale.Quantite, sale.UpdatedAt, sale.NumProduit,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, translateError("update sale", err)
	}
	return s, nil
}

func (r *SaleRepository) Delete(ctx context.Context, numProduit int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM ventes WHERE num_produit = $1`, numProduit)
	if err != nil {
		return translateError("delete sale", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translateError("delete sale", err)
	}
	if n == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}
