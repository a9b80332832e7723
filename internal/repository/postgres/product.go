package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	"github.com/damkaswim/storefront/pkg/database"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

const productColumns = `id, title, description, category, collections, price, sale_price, currency,
	images, sizes, colors, tags, in_stock, active, featured, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Category,
		marshalList(p.Collections),
		p.Price,
		p.SalePrice,
		p.Currency,
		marshalList(p.Images),
		marshalList(p.Sizes),
		marshalList(p.Colors),
		marshalList(p.Tags),
		p.InStock,
		p.Active,
		p.Featured,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs retrieves the products whose ids are in the given set. Missing ids
// are silently skipped.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// List returns products matching the filter plus the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argIndex))
		args = append(args, *filter.Active)
		argIndex++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() gives the total count in a single query.
	query := fmt.Sprintf(`
		SELECT `+productColumns+`, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		p, err := scanProductRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, totalCount, nil
}

// ActiveProducts returns the full active product set for catalog filtering.
func (r *ProductRepository) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active = true ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load active products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Featured returns active featured products, newest first.
func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active = true AND featured = true
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("load featured products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// RelatedByCategory returns active products sharing a category, excluding the
// product itself.
func (r *ProductRepository) RelatedByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active = true AND category = $1 AND id <> $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, category, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("load related products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET title = $1, description = $2, category = $3, collections = $4, price = $5,
		    sale_price = $6, currency = $7, images = $8, sizes = $9, colors = $10,
		    tags = $11, in_stock = $12, active = $13, featured = $14, updated_at = $15
		WHERE id = $16`

	ct, err := r.pool.Exec(ctx, query,
		p.Title,
		p.Description,
		p.Category,
		marshalList(p.Collections),
		p.Price,
		p.SalePrice,
		p.Currency,
		marshalList(p.Images),
		marshalList(p.Sizes),
		marshalList(p.Colors),
		marshalList(p.Tags),
		p.InStock,
		p.Active,
		p.Featured,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	return scanProductInto(row, nil)
}

func scanProductRow(row rowScanner, totalCount *int) (*domain.Product, error) {
	return scanProductInto(row, totalCount)
}

func scanProductInto(row rowScanner, totalCount *int) (*domain.Product, error) {
	var (
		p           domain.Product
		collections []byte
		images      []byte
		sizes       []byte
		colors      []byte
		tags        []byte
	)

	dest := []any{
		&p.ID, &p.Title, &p.Description, &p.Category, &collections, &p.Price, &p.SalePrice,
		&p.Currency, &images, &sizes, &colors, &tags, &p.InStock, &p.Active, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		raw []byte
		out *[]string
	}{
		{collections, &p.Collections},
		{images, &p.Images},
		{sizes, &p.Sizes},
		{tags, &p.Tags},
	} {
		if err := unmarshalList(pair.raw, pair.out); err != nil {
			return nil, err
		}
	}
	if err := unmarshalList(colors, &p.Colors); err != nil {
		return nil, err
	}

	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// marshalList encodes a slice as a jsonb value, never null.
func marshalList[T any](values []T) []byte {
	if values == nil {
		values = []T{}
	}
	data, _ := json.Marshal(values)
	return data
}

func unmarshalList[T any](raw []byte, out *[]T) error {
	if len(raw) == 0 {
		*out = nil
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal list column: %w", err)
	}
	if len(*out) == 0 {
		*out = nil
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
