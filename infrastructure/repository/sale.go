package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/salestrack/sales-tracker-api/infrastructure/database/postgres"
	"github.com/salestrack/sales-tracker-api/internal/domain"
)

const salesTable = "sales"

var (
	ErrNotFound    = errors.New("record not found")
	ErrUnknownUser = errors.New("referenced user does not exist")
)

var saleColumns = []string{
	"s.id", "s.client", "s.total_amount", "s.sale_date", "s.user_id", "s.created_at", "s.updated_at",
	"u.id", "u.name", "u.email",
}

type SaleRepository interface {
	CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, sale *domain.Sale) error
	DeleteSale(ctx context.Context, saleID int) (bool, error)
	GetSaleByID(ctx context.Context, saleID int) (*domain.Sale, error)
	ListSales(ctx context.Context, filters domain.SaleFilters) ([]*domain.Sale, error)
}

type saleRepository struct {
	conn postgres.Queryer
}

func NewSaleRepository(conn postgres.Queryer) SaleRepository {
	return &saleRepository{
		conn: conn,
	}
}

func (r *saleRepository) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	salesSQL, salesArgs, err := squirrel.
		Insert(salesTable).
		Columns("client", "total_amount", "sale_date", "user_id").
		Values(sale.Client, sale.TotalAmount, sale.SaleDate, sale.UserID).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.conn.QueryRowContext(ctx, salesSQL, salesArgs...).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		if postgres.IsErrorCode(err, postgres.ForeignKeyViolation) {
			return nil, ErrUnknownUser
		}
		return nil, errors.Wrap(err, "insert sale")
	}

	return sale, nil
}

// UpdateSale overwrites every column of the sale identified by sale.ID.
func (r *saleRepository) UpdateSale(ctx context.Context, sale *domain.Sale) error {
	salesSQL, salesArgs, err := squirrel.
		Update(salesTable).
		Set("client", sale.Client).
		Set("total_amount", sale.TotalAmount).
		Set("sale_date", sale.SaleDate).
		Set("user_id", sale.UserID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": sale.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.conn.ExecContext(ctx, salesSQL, salesArgs...)
	if err != nil {
		if postgres.IsErrorCode(err, postgres.ForeignKeyViolation) {
			return ErrUnknownUser
		}
		return errors.Wrapf(err, "update sale %d", sale.ID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *saleRepository) DeleteSale(ctx context.Context, saleID int) (bool, error) {
	salesSQL, salesArgs, err := squirrel.
		Delete(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	result, err := r.conn.ExecContext(ctx, salesSQL, salesArgs...)
	if err != nil {
		return false, errors.Wrapf(err, "delete sale %d", saleID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// GetSaleByID returns nil, nil when the sale does not exist.
func (r *saleRepository) GetSaleByID(ctx context.Context, saleID int) (*domain.Sale, error) {
	salesSQL, salesArgs, err := selectSales().
		Where(squirrel.Eq{"s.id": saleID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, salesSQL, salesArgs...)
	if err != nil {
		return nil, errors.Wrapf(err, "select sale %d", saleID)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	return scanSale(rows)
}

// ListSales returns the sales matching filters with their users, oldest first.
func (r *saleRepository) ListSales(ctx context.Context, filters domain.SaleFilters) ([]*domain.Sale, error) {
	query := selectSales()

	if filters.StartDate != nil {
		query = query.Where(squirrel.GtOrEq{"s.sale_date": *filters.StartDate})
	}

	if filters.EndDate != nil {
		query = query.Where(squirrel.LtOrEq{"s.sale_date": *filters.EndDate})
	}

	if filters.UserID != nil {
		query = query.Where(squirrel.Eq{"s.user_id": *filters.UserID})
	}

	salesSQL, salesArgs, err := query.OrderBy("s.sale_date ASC", "s.id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, salesSQL, salesArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

func selectSales() squirrel.SelectBuilder {
	return squirrel.
		Select(saleColumns...).
		From(salesTable + " s").
		Join(usersTable + " u ON u.id = s.user_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanSale(rows *sql.Rows) (*domain.Sale, error) {
	var sale domain.Sale
	var user domain.User

	if err := rows.Scan(
		&sale.ID,
		&sale.Client,
		&sale.TotalAmount,
		&sale.SaleDate,
		&sale.UserID,
		&sale.CreatedAt,
		&sale.UpdatedAt,
		&user.ID,
		&user.Name,
		&user.Email,
	); err != nil {
		return nil, err
	}

	sale.User = &user
	return &sale, nil
}
