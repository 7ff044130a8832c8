package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanInstallment is one scheduled payment of a loan. Installments are
// ordered by due date ascending within a loan; payment allocation depends on
// that ordering. Each row transitions unpaid to paid exactly once.
type LoanInstallment struct {
	ID                      uuid.UUID       `json:"id" db:"id"`
	LoanID                  uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount                  decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount              decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueDate                 time.Time       `json:"due_date" db:"due_date"`
	PaymentDate             *time.Time      `json:"payment_date" db:"payment_date"`
	IsPaid                  bool            `json:"is_paid" db:"is_paid"`
	PrincipalPortion        decimal.Decimal `json:"principal_portion" db:"principal_portion"`
	InterestPortion         decimal.Decimal `json:"interest_portion" db:"interest_portion"`
	InstallmentInterestRate decimal.Decimal `json:"installment_interest_rate" db:"installment_interest_rate"`
	CreatedAt               time.Time       `json:"created_at" db:"created_at"`
}
