package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/domain"
)

type customerRepository struct {
	ext sqlx.ExtContext
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT id, name, surname, username, password_hash, role, credit_limit, used_credit_limit, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.ext, &customer, query, id); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) GetByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	query := `
		SELECT id, name, surname, username, password_hash, role, credit_limit, used_credit_limit, created_at, updated_at
		FROM customers
		WHERE username = $1
	`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.ext, &customer, query, username); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) UpdateUsedCredit(ctx context.Context, id uuid.UUID, used decimal.Decimal) error {
	query := `
		UPDATE customers
		SET used_credit_limit = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.ext.ExecContext(ctx, query, id, used, time.Now().UTC())
	return err
}
