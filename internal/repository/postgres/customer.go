package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/pkg/database"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

const customerColumns = `id, email, name, phone, address, city, password_hash, created_at, updated_at`

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer. Emails are unique.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Email,
		c.Name,
		c.Phone,
		c.Address,
		c.City,
		c.PasswordHash,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("customer", "email", c.Email)
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by its ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, id), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", id)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByEmail retrieves a customer by email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, email), nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", email)
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return c, nil
}

// List returns customers plus the total count, newest first.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, int, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + customerColumns + `, count(*) OVER() AS total_count
		FROM customers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var (
		customers  []domain.Customer
		totalCount int
	)

	for rows.Next() {
		c, err := scanCustomer(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}

	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, totalCount, nil
}

// Update modifies an existing customer.
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customers
		SET email = $1, name = $2, phone = $3, address = $4, city = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query, c.Email, c.Name, c.Phone, c.Address, c.City, c.UpdatedAt, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("customer", "email", c.Email)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", c.ID)
	}

	return nil
}

// Delete removes a customer.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", id)
	}
	return nil
}

func scanCustomer(row rowScanner, totalCount *int) (*domain.Customer, error) {
	var c domain.Customer

	dest := []any{
		&c.ID, &c.Email, &c.Name, &c.Phone, &c.Address, &c.City, &c.PasswordHash,
		&c.CreatedAt, &c.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

// AdminRepository implements repository.AdminRepository using PostgreSQL.
type AdminRepository struct {
	pool database.DBTX
}

// NewAdminRepository creates a PostgreSQL-backed admin account repository.
func NewAdminRepository(pool database.DBTX) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByEmail retrieves an admin account by email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM admins WHERE email = $1`

	var a domain.Admin
	err := r.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("admin", email)
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &a, nil
}
