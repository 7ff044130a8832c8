package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-engine/internal/domain"
)

type installmentRepository struct {
	ext sqlx.ExtContext
}

const installmentColumns = `id, loan_id, amount, paid_amount, due_date, payment_date, is_paid, principal_portion, interest_portion, installment_interest_rate, created_at`

func (r *installmentRepository) CreateBatch(ctx context.Context, installments []*domain.LoanInstallment) error {
	query := `
		INSERT INTO loan_installments (id, loan_id, amount, paid_amount, due_date, payment_date, is_paid, principal_portion, interest_portion, installment_interest_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, inst := range installments {
		_, err := r.ext.ExecContext(ctx, query,
			inst.ID,
			inst.LoanID,
			inst.Amount,
			inst.PaidAmount,
			inst.DueDate,
			inst.PaymentDate,
			inst.IsPaid,
			inst.PrincipalPortion,
			inst.InterestPortion,
			inst.InstallmentInterestRate,
			inst.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *installmentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY due_date ASC
	`

	installments := []*domain.LoanInstallment{}
	if err := sqlx.SelectContext(ctx, r.ext, &installments, query, loanID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) ListByLoanPage(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY due_date ASC
		LIMIT $2 OFFSET $3
	`

	installments := []*domain.LoanInstallment{}
	if err := sqlx.SelectContext(ctx, r.ext, &installments, query, loanID, limit, offset); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) MarkPaid(ctx context.Context, installment *domain.LoanInstallment) error {
	query := `
		UPDATE loan_installments
		SET paid_amount = $2, payment_date = $3, is_paid = $4
		WHERE id = $1
	`

	_, err := r.ext.ExecContext(ctx, query,
		installment.ID,
		installment.PaidAmount,
		installment.PaymentDate,
		installment.IsPaid,
	)

	return err
}

func (r *installmentRepository) CountOverdueUnpaid(ctx context.Context, asOf time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loan_installments
		WHERE is_paid = false AND due_date < $1
	`

	var count int
	if err := sqlx.GetContext(ctx, r.ext, &count, query, asOf); err != nil {
		return 0, err
	}

	return count, nil
}
