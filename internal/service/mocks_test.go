package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
)

// mockStore satisfies repository.Store with a fixed set of mock repositories.
// WithinTx simply runs fn against the same repositories.
type mockStore struct {
	repos repository.Repos
}

func newMockStore(
	customers *MockCustomerRepository,
	loans *MockLoanRepository,
	installments *MockInstallmentRepository,
	appLocks *MockLoanApplicationLockRepository,
	payLocks *MockInstallmentPaymentLockRepository,
) *mockStore {
	return &mockStore{repos: repository.Repos{
		Customers:    customers,
		Loans:        loans,
		Installments: installments,
		AppLocks:     appLocks,
		PayLocks:     payLocks,
	}}
}

func (s *mockStore) Repos() repository.Repos {
	return s.repos
}

func (s *mockStore) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	return fn(s.repos)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdateUsedCredit(ctx context.Context, id uuid.UUID, used decimal.Decimal) error {
	args := m.Called(ctx, id, used)
	return args.Error(0)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter domain.ListLoansFilter, limit, offset int) ([]*domain.Loan, error) {
	args := m.Called(ctx, customerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, installments []*domain.LoanInstallment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanInstallment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) ListByLoanPage(ctx context.Context, loanID uuid.UUID, limit, offset int) ([]*domain.LoanInstallment, error) {
	args := m.Called(ctx, loanID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) MarkPaid(ctx context.Context, installment *domain.LoanInstallment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) CountOverdueUnpaid(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

type MockLoanApplicationLockRepository struct {
	mock.Mock
}

func (m *MockLoanApplicationLockRepository) Acquire(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockLoanApplicationLockRepository) MarkDone(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockLoanApplicationLockRepository) MarkFailed(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockLoanApplicationLockRepository) HasInProgress(ctx context.Context, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanApplicationLockRepository) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockInstallmentPaymentLockRepository struct {
	mock.Mock
}

func (m *MockInstallmentPaymentLockRepository) Acquire(ctx context.Context, loanID, customerID uuid.UUID) error {
	args := m.Called(ctx, loanID, customerID)
	return args.Error(0)
}

func (m *MockInstallmentPaymentLockRepository) MarkDone(ctx context.Context, loanID uuid.UUID) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockInstallmentPaymentLockRepository) MarkFailed(ctx context.Context, loanID uuid.UUID) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockInstallmentPaymentLockRepository) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
