package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type PostgresCatalog struct {
	db *sql.DB
}

const (
	getProductByIDQuery = `
		SELECT product_id, product_name, product_price, stock, product_pic
		FROM product
		WHERE product_id = $1
	`
	// legacy installs still keep some rows only in the camelCase `products` table
	getLegacyProductByIDQuery = `
		SELECT "productID", "productName", "productPrice", "productImg"
		FROM products
		WHERE "productID" = $1
	`
)

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (r *PostgresCatalog) GetByID(ctx context.Context, id int) (Product, error) {
	var (
		p     Product
		name  sql.NullString
		price decimal.NullDecimal
		stock sql.NullInt64
		pic   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, getProductByIDQuery, id).Scan(&p.ID, &name, &price, &stock, &pic)
	if errors.Is(err, sql.ErrNoRows) {
		return r.getLegacy(ctx, id)
	}
	if err != nil {
		return Product{}, fmt.Errorf("product.GetByID: %w", err)
	}

	p.Name = name.String
	p.Price = price.Decimal
	p.ImageRef = pic.String
	if stock.Valid {
		s := int(stock.Int64)
		p.Stock = &s
	}
	return p, nil
}

func (r *PostgresCatalog) getLegacy(ctx context.Context, id int) (Product, error) {
	var (
		p     Product
		name  sql.NullString
		price decimal.NullDecimal
		img   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, getLegacyProductByIDQuery, id).Scan(&p.ID, &name, &price, &img)
	if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("product.getLegacy: %w", err)
	}
	p.Name = name.String
	p.Price = price.Decimal
	p.ImageRef = img.String
	return p, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
