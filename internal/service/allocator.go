package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/pkg/utils"
)

// adjustmentRate is the per-day early discount / late penalty factor.
var adjustmentRate = decimal.RequireFromString("0.001")

// AllocationResult summarizes one allocation pass over a loan's installments.
type AllocationResult struct {
	PaidCount          int
	TotalSpent         decimal.Decimal
	TotalPrincipalPaid decimal.Decimal

	// Paid holds the installments settled by this pass, in payment order.
	Paid []*domain.LoanInstallment
}

// AdjustedAmount returns the amount actually owed for an installment on a
// given day: the scheduled amount discounted by 0.001 per day when paid
// early, increased by 0.001 per day when paid late, unchanged when due today.
func AdjustedAmount(inst *domain.LoanInstallment, today time.Time) decimal.Decimal {
	days := utils.DaysBetween(today, inst.DueDate)
	if days == 0 {
		return inst.Amount
	}

	// days > 0 means early: the adjustment subtracts. days < 0 means late:
	// subtracting a negative adds the penalty.
	adjustment := inst.Amount.Mul(adjustmentRate).Mul(decimal.NewFromInt(int64(days)))
	return inst.Amount.Sub(adjustment)
}

func withinPaymentWindow(inst *domain.LoanInstallment, today time.Time) bool {
	return !utils.DateOnly(inst.DueDate).After(utils.PaymentWindowLimit(today))
}

// Allocate walks installments in due-date order and greedily applies
// payAmount. Paid installments are skipped; the walk stops at the first
// installment outside the 3-month payment window and at the first whose
// adjusted amount exceeds the remaining funds. No partial payments: an
// installment is either covered in full or left untouched. Paid rows are
// mutated in place (paid amount, payment date, is_paid).
func Allocate(installments []*domain.LoanInstallment, payAmount decimal.Decimal, today time.Time) AllocationResult {
	result := AllocationResult{
		TotalSpent:         decimal.Zero,
		TotalPrincipalPaid: decimal.Zero,
	}

	remaining := payAmount
	paymentDate := utils.DateOnly(today)

	for _, inst := range installments {
		if inst.IsPaid {
			continue
		}

		if !withinPaymentWindow(inst, today) {
			break
		}

		adjusted := AdjustedAmount(inst, today)
		if remaining.LessThan(adjusted) {
			break
		}

		inst.PaidAmount = adjusted
		inst.IsPaid = true
		inst.PaymentDate = &paymentDate

		remaining = remaining.Sub(adjusted)
		result.PaidCount++
		result.TotalSpent = result.TotalSpent.Add(adjusted)
		result.TotalPrincipalPaid = result.TotalPrincipalPaid.Add(inst.PrincipalPortion)
		result.Paid = append(result.Paid, inst)
	}

	return result
}
