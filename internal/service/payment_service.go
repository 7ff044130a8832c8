package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/cache"
	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
	apierrors "github.com/segyhp/loan-engine/pkg/errors"
)

type PaymentService struct {
	store  repository.Store
	cache  *cache.Cache
	logger *slog.Logger

	// now is the clock used for allocation; replaceable in tests.
	now func() time.Time
}

func NewPaymentService(store repository.Store, cache *cache.Cache, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// PayInstallments applies payAmount to the loan's unpaid installments in
// due-date order. The loan's payment lock and a pessimistic read on the loan
// row serialize concurrent payment attempts; an in-flight loan application
// for the same customer blocks the payment with Conflict. Paid principal
// replenishes the customer's used credit. Any failure after lock acquisition
// marks the lock FAILED and re-raises the original error.
func (s *PaymentService) PayInstallments(ctx context.Context, loanID uuid.UUID, payAmount decimal.Decimal) (*domain.PayInstallmentsResponse, error) {
	if !payAmount.IsPositive() {
		return nil, apierrors.Validation("pay amount must be greater than 0")
	}

	repos := s.store.Repos()

	loan, err := repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, asNotFound(err, "loan %s not found", loanID)
	}

	// A loan application in flight for the customer mutates the same credit
	// balance; do not let a payment race it.
	inProgress, err := repos.AppLocks.HasInProgress(ctx, loan.CustomerID)
	if err != nil {
		return nil, err
	}
	if inProgress {
		return nil, apierrors.Conflict("customer %s has a loan application in progress", loan.CustomerID)
	}

	if err := repos.PayLocks.Acquire(ctx, loanID, loan.CustomerID); err != nil {
		return nil, err
	}

	var response *domain.PayInstallmentsResponse

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		locked, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return asNotFound(err, "loan %s not found", loanID)
		}

		installments, err := r.Installments.ListByLoan(ctx, loanID)
		if err != nil {
			return err
		}

		result := Allocate(installments, payAmount, s.now())

		for _, inst := range result.Paid {
			if err := r.Installments.MarkPaid(ctx, inst); err != nil {
				return err
			}
		}

		if result.TotalPrincipalPaid.IsPositive() {
			if err := s.replenishCredit(ctx, r, locked.CustomerID, result.TotalPrincipalPaid); err != nil {
				return err
			}
		}

		fullyPaid := allInstallmentsPaid(installments)
		if fullyPaid && !locked.IsPaid {
			if err := r.Loans.MarkPaid(ctx, loanID); err != nil {
				return err
			}
		}

		response = &domain.PayInstallmentsResponse{
			PaidInstallments: result.PaidCount,
			TotalSpent:       result.TotalSpent,
			LoanFullyPaid:    fullyPaid,
		}

		return r.PayLocks.MarkDone(ctx, loanID)
	})
	if err != nil {
		if failErr := repos.PayLocks.MarkFailed(ctx, loanID); failErr != nil {
			s.logger.Error("marking payment lock failed", "loan_id", loanID, "error", failErr)
		}
		return nil, err
	}

	s.invalidateCaches(ctx, loan.CustomerID, loanID)

	return response, nil
}

// replenishCredit lowers the customer's used credit by the principal paid,
// floored at zero.
func (s *PaymentService) replenishCredit(ctx context.Context, r repository.Repos, customerID uuid.UUID, principalPaid decimal.Decimal) error {
	customer, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		return asNotFound(err, "customer %s not found", customerID)
	}

	newUsed := customer.UsedCreditLimit.Sub(principalPaid)
	if newUsed.IsNegative() {
		newUsed = decimal.Zero
	}

	return r.Customers.UpdateUsedCredit(ctx, customerID, newUsed)
}

// allInstallmentsPaid rescans the full installment set, not just the rows
// touched by this pass.
func allInstallmentsPaid(installments []*domain.LoanInstallment) bool {
	for _, inst := range installments {
		if !inst.IsPaid {
			return false
		}
	}
	return len(installments) > 0
}

func (s *PaymentService) invalidateCaches(ctx context.Context, customerID, loanID uuid.UUID) {
	for _, prefix := range []string{
		fmt.Sprintf("loans:%s", customerID),
		fmt.Sprintf("installments:%s", loanID),
	} {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			s.logger.Warn("cache invalidation", "prefix", prefix, "error", err)
		}
	}
}
