package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-engine/internal/domain"
)

type loanRepository struct {
	ext sqlx.ExtContext
}

const loanColumns = `id, customer_id, principal_amount, interest_rate, loan_amount, number_of_installment, create_date, is_paid, created_at, updated_at`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, customer_id, principal_amount, interest_rate, loan_amount, number_of_installment, create_date, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.ext.ExecContext(ctx, query,
		loan.ID,
		loan.CustomerID,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.LoanAmount,
		loan.NumberOfInstallment,
		loan.CreateDate,
		loan.IsPaid,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.ext, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.ext, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE loans
		SET is_paid = true, updated_at = $2
		WHERE id = $1
	`

	_, err := r.ext.ExecContext(ctx, query, id, time.Now().UTC())
	return err
}

func (r *loanRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter domain.ListLoansFilter, limit, offset int) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1`
	args := []interface{}{customerID}

	if filter.NumberOfInstallment != nil {
		args = append(args, *filter.NumberOfInstallment)
		query += fmt.Sprintf(" AND number_of_installment = $%d", len(args))
	}
	if filter.CreateDateFrom != nil {
		args = append(args, *filter.CreateDateFrom)
		query += fmt.Sprintf(" AND create_date >= $%d", len(args))
	}
	if filter.CreateDateTo != nil {
		args = append(args, *filter.CreateDateTo)
		query += fmt.Sprintf(" AND create_date <= $%d", len(args))
	}
	if filter.IsPaid != nil {
		args = append(args, *filter.IsPaid)
		query += fmt.Sprintf(" AND is_paid = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY create_date DESC, created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	loans := []*domain.Loan{}
	if err := sqlx.SelectContext(ctx, r.ext, &loans, query, args...); err != nil {
		return nil, err
	}

	return loans, nil
}
