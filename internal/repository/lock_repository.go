package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/loan-engine/internal/domain"
	apierrors "github.com/segyhp/loan-engine/pkg/errors"
)

const pqUniqueViolation = "23505"

// isActiveLockViolation reports whether err is the partial unique index
// rejecting a second IN_PROGRESS row for the same key.
func isActiveLockViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type loanApplicationLockRepository struct {
	ext sqlx.ExtContext
}

func (r *loanApplicationLockRepository) Acquire(ctx context.Context, customerID uuid.UUID) error {
	// Insert-if-absent rather than find-then-insert: the partial unique index
	// on (customer_id) WHERE status = 'IN_PROGRESS' closes the race between
	// two concurrent acquirers.
	query := `
		INSERT INTO loan_application_lock (id, customer_id, status, created_date)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.ext.ExecContext(ctx, query, uuid.New(), customerID, domain.LockStatusInProgress, time.Now().UTC())
	if isActiveLockViolation(err) {
		return apierrors.Conflict("customer %s already has a loan application in progress", customerID)
	}

	return err
}

func (r *loanApplicationLockRepository) MarkDone(ctx context.Context, customerID uuid.UUID) error {
	query := `
		UPDATE loan_application_lock
		SET status = $2, updated_date = $3
		WHERE customer_id = $1 AND status = $4
	`

	res, err := r.ext.ExecContext(ctx, query, customerID, domain.LockStatusDone, time.Now().UTC(), domain.LockStatusInProgress)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierrors.NotFound("no active loan application lock for customer %s", customerID)
	}

	return nil
}

func (r *loanApplicationLockRepository) MarkFailed(ctx context.Context, customerID uuid.UUID) error {
	// Idempotent: zero affected rows is fine, failure cleanup must not throw.
	query := `
		UPDATE loan_application_lock
		SET status = $2, updated_date = $3
		WHERE customer_id = $1 AND status = $4
	`

	_, err := r.ext.ExecContext(ctx, query, customerID, domain.LockStatusFailed, time.Now().UTC(), domain.LockStatusInProgress)
	return err
}

func (r *loanApplicationLockRepository) HasInProgress(ctx context.Context, customerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM loan_application_lock
			WHERE customer_id = $1 AND status = $2
		)
	`

	var exists bool
	if err := sqlx.GetContext(ctx, r.ext, &exists, query, customerID, domain.LockStatusInProgress); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *loanApplicationLockRepository) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE loan_application_lock
		SET status = $1, updated_date = $2
		WHERE status = $3 AND created_date < $4
	`

	res, err := r.ext.ExecContext(ctx, query, domain.LockStatusFailed, time.Now().UTC(), domain.LockStatusInProgress, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

type installmentPaymentLockRepository struct {
	ext sqlx.ExtContext
}

func (r *installmentPaymentLockRepository) Acquire(ctx context.Context, loanID, customerID uuid.UUID) error {
	query := `
		INSERT INTO installment_payment_lock (id, loan_id, customer_id, status, created_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.ext.ExecContext(ctx, query, uuid.New(), loanID, customerID, domain.LockStatusInProgress, time.Now().UTC())
	if isActiveLockViolation(err) {
		return apierrors.Conflict("loan %s already has an installment payment in progress", loanID)
	}

	return err
}

func (r *installmentPaymentLockRepository) MarkDone(ctx context.Context, loanID uuid.UUID) error {
	query := `
		UPDATE installment_payment_lock
		SET status = $2, updated_date = $3
		WHERE loan_id = $1 AND status = $4
	`

	res, err := r.ext.ExecContext(ctx, query, loanID, domain.LockStatusDone, time.Now().UTC(), domain.LockStatusInProgress)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierrors.NotFound("no active installment payment lock for loan %s", loanID)
	}

	return nil
}

func (r *installmentPaymentLockRepository) MarkFailed(ctx context.Context, loanID uuid.UUID) error {
	query := `
		UPDATE installment_payment_lock
		SET status = $2, updated_date = $3
		WHERE loan_id = $1 AND status = $4
	`

	_, err := r.ext.ExecContext(ctx, query, loanID, domain.LockStatusFailed, time.Now().UTC(), domain.LockStatusInProgress)
	return err
}

func (r *installmentPaymentLockRepository) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE installment_payment_lock
		SET status = $1, updated_date = $2
		WHERE status = $3 AND created_date < $4
	`

	res, err := r.ext.ExecContext(ctx, query, domain.LockStatusFailed, time.Now().UTC(), domain.LockStatusInProgress, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
