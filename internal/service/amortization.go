package service

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/domain"
	apierrors "github.com/segyhp/loan-engine/pkg/errors"
	"github.com/segyhp/loan-engine/pkg/utils"
)

// AllowedInstallmentCounts are the only loan terms the product offers.
var AllowedInstallmentCounts = []int{6, 9, 12, 24}

var (
	minInterestRate = decimal.RequireFromString("0.1")
	maxInterestRate = decimal.RequireFromString("0.5")
	twelve          = decimal.NewFromInt(12)
)

// ValidateLoanTerms rejects a loan request before any row is materialized.
func ValidateLoanTerms(principal, annualRate decimal.Decimal, numberOfInstallment int) error {
	if !principal.IsPositive() {
		return apierrors.Validation("principal amount must be greater than 0")
	}

	if annualRate.LessThan(minInterestRate) || annualRate.GreaterThan(maxInterestRate) {
		return apierrors.Validation("interest rate must be between 0.1 and 0.5")
	}

	allowed := false
	for _, n := range AllowedInstallmentCounts {
		if numberOfInstallment == n {
			allowed = true
			break
		}
	}
	if !allowed {
		return apierrors.Validation("installment count must be one of 6, 9, 12, 24")
	}

	return nil
}

// TotalLoanAmount is the contract total persisted on the loan:
// principal * (1 + annualRate). It is independent of the installment sum and
// both values are displayed to callers.
func TotalLoanAmount(principal, annualRate decimal.Decimal) decimal.Decimal {
	return principal.Mul(decimal.NewFromInt(1).Add(annualRate))
}

// BuildSchedule generates the full amortization schedule for a loan.
//
// Monthly rate i = annualRate / 12. Level payment via the standard annuity
// formula P * i * (1+i)^n / ((1+i)^n - 1), rounded to 2dp half-up. The power
// term is computed in float64, monetary arithmetic stays in decimal. The
// first due date is the first day of the month after issuance, then one per
// calendar month. Interest per installment is the running balance times the
// monthly rate; the principal portion never exceeds the remaining balance and
// the final installment takes the whole remainder, so the principal portions
// sum to exactly P.
func BuildSchedule(loanID uuid.UUID, principal, annualRate decimal.Decimal, numberOfInstallment int, issueDate time.Time) []*domain.LoanInstallment {
	monthlyRate := annualRate.Div(twelve)
	rateSnapshot := monthlyRate.Round(4)

	monthlyRateFloat := monthlyRate.InexactFloat64()
	var payment decimal.Decimal
	if monthlyRateFloat == 0 {
		payment = principal.Div(decimal.NewFromInt(int64(numberOfInstallment))).Round(2)
	} else {
		factor := math.Pow(1+monthlyRateFloat, float64(numberOfInstallment))
		paymentFloat := principal.InexactFloat64() * monthlyRateFloat * factor / (factor - 1)
		payment = decimal.NewFromFloat(paymentFloat).Round(2)
	}

	now := time.Now().UTC()
	balance := principal
	installments := make([]*domain.LoanInstallment, 0, numberOfInstallment)

	for k := 0; k < numberOfInstallment; k++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPortion := payment.Sub(interest)

		if k == numberOfInstallment-1 {
			// Last installment absorbs the rounding residue.
			principalPortion = balance
		} else if principalPortion.GreaterThan(balance) {
			principalPortion = balance
		}

		balance = balance.Sub(principalPortion)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		installments = append(installments, &domain.LoanInstallment{
			ID:                      uuid.New(),
			LoanID:                  loanID,
			Amount:                  payment,
			PaidAmount:              decimal.Zero,
			DueDate:                 utils.AddCalendarMonths(issueDate, k+1),
			PaymentDate:             nil,
			IsPaid:                  false,
			PrincipalPortion:        principalPortion,
			InterestPortion:         interest,
			InstallmentInterestRate: rateSnapshot,
			CreatedAt:               now,
		})
	}

	return installments
}
