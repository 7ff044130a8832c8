package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// Customer represents a credit customer. UsedCreditLimit tracks the
// outstanding principal across all of the customer's loans and must never
// exceed CreditLimit.
type Customer struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Surname         string          `json:"surname" db:"surname"`
	Username        string          `json:"username" db:"username"`
	PasswordHash    string          `json:"-" db:"password_hash"`
	Role            string          `json:"role" db:"role"`
	CreditLimit     decimal.Decimal `json:"credit_limit" db:"credit_limit"`
	UsedCreditLimit decimal.Decimal `json:"used_credit_limit" db:"used_credit_limit"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token      string    `json:"token"`
	CustomerID uuid.UUID `json:"customer_id"`
	Role       string    `json:"role"`
}
