package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-engine/internal/domain"
)

func newInstallment(dueDate time.Time, amount, principal string) *domain.LoanInstallment {
	return &domain.LoanInstallment{
		ID:               uuid.New(),
		Amount:           decimal.RequireFromString(amount),
		PaidAmount:       decimal.Zero,
		DueDate:          dueDate,
		PrincipalPortion: decimal.RequireFromString(principal),
		InterestPortion:  decimal.Zero,
	}
}

func TestAdjustedAmount(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		want    string
	}{
		{name: "10 days early gets discount", dueDate: today.AddDate(0, 0, 10), want: "990"},
		{name: "10 days late gets penalty", dueDate: today.AddDate(0, 0, -10), want: "1010"},
		{name: "due today unchanged", dueDate: today, want: "1000"},
		{name: "1 day early", dueDate: today.AddDate(0, 0, 1), want: "999"},
		{name: "1 day late", dueDate: today.AddDate(0, 0, -1), want: "1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := newInstallment(tt.dueDate, "1000", "900")

			got := AdjustedAmount(inst, today)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "want %s got %s", tt.want, got)
		})
	}
}

func TestAllocate_PaysInDueDateOrder(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := newInstallment(today, "100", "90")
	second := newInstallment(today.AddDate(0, 1, 0), "100", "92")
	third := newInstallment(today.AddDate(0, 2, 0), "100", "94")
	installments := []*domain.LoanInstallment{first, second, third}

	// Funds cover the first two: 100 due today plus 97 for the second
	// (30 days early, discount 3).
	result := Allocate(installments, decimal.RequireFromString("197"), today)

	assert.Equal(t, 2, result.PaidCount)
	assert.True(t, result.TotalSpent.Equal(decimal.RequireFromString("197")), "spent %s", result.TotalSpent)
	assert.True(t, result.TotalPrincipalPaid.Equal(decimal.RequireFromString("182")), "principal %s", result.TotalPrincipalPaid)

	require.Len(t, result.Paid, 2)
	assert.True(t, first.IsPaid)
	assert.True(t, second.IsPaid)
	assert.False(t, third.IsPaid)

	assert.True(t, first.PaidAmount.Equal(decimal.RequireFromString("100")))
	assert.True(t, second.PaidAmount.Equal(decimal.RequireFromString("97")))
	require.NotNil(t, first.PaymentDate)
	assert.Equal(t, today, *first.PaymentDate)
}

func TestAllocate_NoPartialPayments(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	inst := newInstallment(today, "100", "90")

	result := Allocate([]*domain.LoanInstallment{inst}, decimal.RequireFromString("99.99"), today)

	assert.Equal(t, 0, result.PaidCount)
	assert.True(t, result.TotalSpent.IsZero())
	assert.False(t, inst.IsPaid)
	assert.True(t, inst.PaidAmount.IsZero())
}

func TestAllocate_StopsAtUnaffordableInstallment(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// First unpaid is late (costs 1010); the walk must stop there even
	// though the second would be affordable on its own.
	late := newInstallment(today.AddDate(0, 0, -10), "1000", "900")
	early := newInstallment(today.AddDate(0, 0, 10), "1000", "910")

	result := Allocate([]*domain.LoanInstallment{late, early}, decimal.RequireFromString("1000"), today)

	assert.Equal(t, 0, result.PaidCount)
	assert.False(t, late.IsPaid)
	assert.False(t, early.IsPaid)
}

func TestAllocate_SkipsPaidInstallments(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	paid := newInstallment(today.AddDate(0, -1, 0), "100", "90")
	paid.IsPaid = true
	paid.PaidAmount = decimal.RequireFromString("100")

	unpaid := newInstallment(today, "100", "92")

	result := Allocate([]*domain.LoanInstallment{paid, unpaid}, decimal.RequireFromString("100"), today)

	assert.Equal(t, 1, result.PaidCount)
	assert.True(t, unpaid.IsPaid)
	assert.True(t, result.TotalPrincipalPaid.Equal(decimal.RequireFromString("92")))
}

func TestAllocate_PaymentWindow(t *testing.T) {
	// Today June 15th: the window closes after September 1st.
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	inside := newInstallment(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), "100", "90")
	outside := newInstallment(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), "100", "92")

	result := Allocate([]*domain.LoanInstallment{inside, outside}, decimal.RequireFromString("1000"), today)

	assert.Equal(t, 1, result.PaidCount)
	assert.True(t, inside.IsPaid)
	assert.False(t, outside.IsPaid, "installments beyond the 3-month window are untouchable regardless of funds")
}

func TestAllocate_Deterministic(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	build := func() []*domain.LoanInstallment {
		return []*domain.LoanInstallment{
			newInstallment(today, "100", "90"),
			newInstallment(today.AddDate(0, 1, 0), "100", "92"),
		}
	}

	a := Allocate(build(), decimal.RequireFromString("150"), today)
	b := Allocate(build(), decimal.RequireFromString("150"), today)

	assert.Equal(t, a.PaidCount, b.PaidCount)
	assert.True(t, a.TotalSpent.Equal(b.TotalSpent))
	assert.True(t, a.TotalPrincipalPaid.Equal(b.TotalPrincipalPaid))
}
