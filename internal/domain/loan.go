package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan represents an issued consumer loan. LoanAmount is the contract total
// principal * (1 + rate); it is stored as-is and may differ by rounding from
// the sum of the generated installments.
type Loan struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	CustomerID          uuid.UUID       `json:"customer_id" db:"customer_id"`
	PrincipalAmount     decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	InterestRate        decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	LoanAmount          decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	NumberOfInstallment int             `json:"number_of_installment" db:"number_of_installment"`
	CreateDate          time.Time       `json:"create_date" db:"create_date"`
	IsPaid              bool            `json:"is_paid" db:"is_paid"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	CustomerID          uuid.UUID       `json:"customer_id" validate:"required"`
	PrincipalAmount     decimal.Decimal `json:"principal_amount" validate:"required"`
	InterestRate        decimal.Decimal `json:"interest_rate" validate:"required"`
	NumberOfInstallment int             `json:"number_of_installment" validate:"required"`
}

type PayInstallmentsRequest struct {
	PayAmount decimal.Decimal `json:"pay_amount" validate:"required"`
}

type PayInstallmentsResponse struct {
	PaidInstallments int             `json:"paid_installments"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	LoanFullyPaid    bool            `json:"loan_fully_paid"`
}

// ListLoansFilter carries the optional criteria of the loan listing endpoint.
// Nil fields are not applied.
type ListLoansFilter struct {
	NumberOfInstallment *int
	CreateDateFrom      *time.Time
	CreateDateTo        *time.Time
	IsPaid              *bool
}
