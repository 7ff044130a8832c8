package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/loan-engine/internal/cache"
	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
	apierrors "github.com/segyhp/loan-engine/pkg/errors"
	"github.com/segyhp/loan-engine/pkg/utils"
)

// asNotFound translates a missing-row error into the API taxonomy.
func asNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(format, args...)
	}
	return err
}

type LoanService struct {
	store  repository.Store
	cache  *cache.Cache
	logger *slog.Logger
}

func NewLoanService(store repository.Store, cache *cache.Cache, logger *slog.Logger) *LoanService {
	return &LoanService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// CreateLoan issues a loan: acquires the customer's application lock, checks
// the credit limit, generates the amortization schedule and persists loan,
// installments and updated credit balance in one transaction. Any failure
// after lock acquisition marks the lock FAILED and re-raises the original
// error; the attempt is terminal and a retry starts with a fresh lock row.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.LoanInstallment, error) {
	if err := s.store.Repos().AppLocks.Acquire(ctx, request.CustomerID); err != nil {
		return nil, nil, err
	}

	var (
		loan     *domain.Loan
		schedule []*domain.LoanInstallment
	)

	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		if err := ValidateLoanTerms(request.PrincipalAmount, request.InterestRate, request.NumberOfInstallment); err != nil {
			return err
		}

		customer, err := r.Customers.GetByID(ctx, request.CustomerID)
		if err != nil {
			return asNotFound(err, "customer %s not found", request.CustomerID)
		}

		newUsedCredit := customer.UsedCreditLimit.Add(request.PrincipalAmount)
		if newUsedCredit.GreaterThan(customer.CreditLimit) {
			return apierrors.LimitExceeded("loan of %s exceeds remaining credit limit of %s",
				request.PrincipalAmount, customer.CreditLimit.Sub(customer.UsedCreditLimit))
		}

		now := time.Now().UTC()
		loan = &domain.Loan{
			ID:                  uuid.New(),
			CustomerID:          customer.ID,
			PrincipalAmount:     request.PrincipalAmount,
			InterestRate:        request.InterestRate,
			LoanAmount:          TotalLoanAmount(request.PrincipalAmount, request.InterestRate),
			NumberOfInstallment: request.NumberOfInstallment,
			CreateDate:          utils.DateOnly(now),
			IsPaid:              false,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		if err := r.Loans.Create(ctx, loan); err != nil {
			return err
		}

		if err := r.Customers.UpdateUsedCredit(ctx, customer.ID, newUsedCredit); err != nil {
			return err
		}

		schedule = BuildSchedule(loan.ID, loan.PrincipalAmount, loan.InterestRate, loan.NumberOfInstallment, loan.CreateDate)
		if err := r.Installments.CreateBatch(ctx, schedule); err != nil {
			return err
		}

		return r.AppLocks.MarkDone(ctx, customer.ID)
	})
	if err != nil {
		if failErr := s.store.Repos().AppLocks.MarkFailed(ctx, request.CustomerID); failErr != nil {
			s.logger.Error("marking application lock failed", "customer_id", request.CustomerID, "error", failErr)
		}
		return nil, nil, err
	}

	s.invalidateLoanCaches(ctx, request.CustomerID, loan.ID)

	return loan, schedule, nil
}

// GetLoan retrieves a loan by id.
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.store.Repos().Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, asNotFound(err, "loan %s not found", loanID)
	}
	return loan, nil
}

// IsLoanOwner reports whether the loan belongs to the customer.
func (s *LoanService) IsLoanOwner(ctx context.Context, loanID, customerID uuid.UUID) (bool, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return false, err
	}
	return loan.CustomerID == customerID, nil
}

// ListLoans returns a page of the customer's loans, cached.
func (s *LoanService) ListLoans(ctx context.Context, customerID uuid.UUID, filter domain.ListLoansFilter, page, size int) ([]*domain.Loan, error) {
	key := loansCacheKey(customerID, filter, page, size)

	var loans []*domain.Loan
	if s.cache.Get(ctx, key, &loans) {
		return loans, nil
	}

	loans, err := s.store.Repos().Loans.ListByCustomer(ctx, customerID, filter, size, page*size)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, loans)
	return loans, nil
}

// ListInstallments returns a page of a loan's installments in due-date
// order, cached. NotFound if the loan does not exist.
func (s *LoanService) ListInstallments(ctx context.Context, loanID uuid.UUID, page, size int) ([]*domain.LoanInstallment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("installments:%s:p%d:s%d", loanID, page, size)

	var installments []*domain.LoanInstallment
	if s.cache.Get(ctx, key, &installments) {
		return installments, nil
	}

	installments, err := s.store.Repos().Installments.ListByLoanPage(ctx, loanID, size, page*size)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, installments)
	return installments, nil
}

func (s *LoanService) invalidateLoanCaches(ctx context.Context, customerID, loanID uuid.UUID) {
	for _, prefix := range []string{
		fmt.Sprintf("loans:%s", customerID),
		fmt.Sprintf("installments:%s", loanID),
	} {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			s.logger.Warn("cache invalidation", "prefix", prefix, "error", err)
		}
	}
}

func loansCacheKey(customerID uuid.UUID, filter domain.ListLoansFilter, page, size int) string {
	key := fmt.Sprintf("loans:%s:p%d:s%d", customerID, page, size)
	if filter.NumberOfInstallment != nil {
		key += fmt.Sprintf(":n%d", *filter.NumberOfInstallment)
	}
	if filter.CreateDateFrom != nil {
		key += ":f" + filter.CreateDateFrom.Format("2006-01-02")
	}
	if filter.CreateDateTo != nil {
		key += ":t" + filter.CreateDateTo.Format("2006-01-02")
	}
	if filter.IsPaid != nil {
		key += fmt.Sprintf(":paid%t", *filter.IsPaid)
	}
	return key
}
