package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/domain"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// GetByID retrieves a customer by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)

	// GetByUsername retrieves a customer by username
	GetByUsername(ctx context.Context, username string) (*domain.Customer, error)

	// UpdateUsedCredit sets the customer's used credit limit
	UpdateUsedCredit(ctx context.Context, id uuid.UUID, used decimal.Decimal) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByIDForUpdate retrieves a loan with a pessimistic exclusive row lock.
	// Only meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// MarkPaid sets is_paid on the loan
	MarkPaid(ctx context.Context, id uuid.UUID) error

	// ListByCustomer lists a customer's loans with optional filters, newest first
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filter domain.ListLoansFilter, limit, offset int) ([]*domain.Loan, error)
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// CreateBatch inserts a loan's full installment schedule
	CreateBatch(ctx context.Context, installments []*domain.LoanInstallment) error

	// ListByLoan retrieves all installments of a loan ordered by due date ascending
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanInstallment, error)

	// ListByLoanPage retrieves a page of installments ordered by due date ascending
	ListByLoanPage(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*domain.LoanInstallment, error)

	// MarkPaid persists the paid fields of an installment
	MarkPaid(ctx context.Context, installment *domain.LoanInstallment) error

	// CountOverdueUnpaid counts unpaid installments due before asOf
	CountOverdueUnpaid(ctx context.Context, asOf time.Time) (int, error)
}

// LoanApplicationLockRepository manages the per-customer loan application
// lock rows.
type LoanApplicationLockRepository interface {
	// Acquire inserts an IN_PROGRESS row; returns Conflict if the customer
	// already has one. Atomic via the partial unique index.
	Acquire(ctx context.Context, customerID uuid.UUID) error

	// MarkDone transitions the IN_PROGRESS row to DONE; NotFound if absent
	MarkDone(ctx context.Context, customerID uuid.UUID) error

	// MarkFailed transitions the IN_PROGRESS row to FAILED; no-op if absent
	MarkFailed(ctx context.Context, customerID uuid.UUID) error

	// HasInProgress reports whether the customer has an IN_PROGRESS row
	HasInProgress(ctx context.Context, customerID uuid.UUID) (bool, error)

	// FailStale marks IN_PROGRESS rows created before cutoff as FAILED
	FailStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// InstallmentPaymentLockRepository manages the per-loan installment payment
// lock rows.
type InstallmentPaymentLockRepository interface {
	// Acquire inserts an IN_PROGRESS row; returns Conflict if the loan
	// already has one
	Acquire(ctx context.Context, loanID, customerID uuid.UUID) error

	// MarkDone transitions the IN_PROGRESS row to DONE; NotFound if absent
	MarkDone(ctx context.Context, loanID uuid.UUID) error

	// MarkFailed transitions the IN_PROGRESS row to FAILED; no-op if absent
	MarkFailed(ctx context.Context, loanID uuid.UUID) error

	// FailStale marks IN_PROGRESS rows created before cutoff as FAILED
	FailStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repos bundles one executor-scoped instance of every repository. Inside
// Store.WithinTx all of them share the same transaction.
type Repos struct {
	Customers    CustomerRepository
	Loans        LoanRepository
	Installments InstallmentRepository
	AppLocks     LoanApplicationLockRepository
	PayLocks     InstallmentPaymentLockRepository
}

// Store gives services plain and transactional access to the repositories.
type Store interface {
	// Repos returns repositories bound to the connection pool
	Repos() Repos

	// WithinTx runs fn with repositories bound to one transaction, committing
	// on nil and rolling back on error
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
