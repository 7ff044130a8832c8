package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lock row states. A row never leaves DONE or FAILED; every attempt gets a
// fresh row, so the lock tables double as an audit trail.
const (
	LockStatusInProgress = "IN_PROGRESS"
	LockStatusDone       = "DONE"
	LockStatusFailed     = "FAILED"
)

// LoanApplicationLock serializes loan creation per customer: at most one row
// with status IN_PROGRESS may exist for a customer at a time.
type LoanApplicationLock struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CustomerID  uuid.UUID  `json:"customer_id" db:"customer_id"`
	Status      string     `json:"status" db:"status"`
	CreatedDate time.Time  `json:"created_date" db:"created_date"`
	UpdatedDate *time.Time `json:"updated_date" db:"updated_date"`
}

// InstallmentPaymentLock serializes installment payments per loan.
type InstallmentPaymentLock struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	LoanID      uuid.UUID  `json:"loan_id" db:"loan_id"`
	CustomerID  uuid.UUID  `json:"customer_id" db:"customer_id"`
	Status      string     `json:"status" db:"status"`
	CreatedDate time.Time  `json:"created_date" db:"created_date"`
	UpdatedDate *time.Time `json:"updated_date" db:"updated_date"`
}
