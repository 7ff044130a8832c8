package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/loan-engine/internal/auth"
	"github.com/segyhp/loan-engine/internal/config"
	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/service"
	"github.com/segyhp/loan-engine/pkg/response"
)

type LoanHandler struct {
	loans     *service.LoanService
	payments  *service.PaymentService
	validator *validator.Validate
	cfg       *config.Config
}

func NewLoanHandler(loans *service.LoanService, payments *service.PaymentService, cfg *config.Config) *LoanHandler {
	return &LoanHandler{
		loans:     loans,
		payments:  payments,
		validator: validator.New(),
		cfg:       cfg,
	}
}

type createLoanResponse struct {
	Loan     *domain.Loan              `json:"loan"`
	Schedule []*domain.LoanInstallment `json:"schedule"`
}

// CreateLoan handles POST /api/v1/loans. Admin only.
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		response.Forbidden(w, "loan creation requires admin role")
		return
	}

	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	loan, schedule, err := h.loans.CreateLoan(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, createLoanResponse{Loan: loan, Schedule: schedule})
}

// ListLoans handles GET /api/v1/loans?customer_id=... Admin or the customer
// themselves.
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.URL.Query().Get("customer_id"))
	if err != nil {
		response.BadRequest(w, "customer_id must be a valid uuid")
		return
	}

	if !h.authorizedForCustomer(r, customerID) {
		response.Forbidden(w, "not allowed to list another customer's loans")
		return
	}

	filter, err := parseLoansFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	page, size := h.pagination(r)

	loans, err := h.loans.ListLoans(r.Context(), customerID, filter, page, size)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// ListInstallments handles GET /api/v1/loans/{loanId}/installments. Admin or
// the loan's owner.
func (h *LoanHandler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "loanId must be a valid uuid")
		return
	}

	if ok := h.authorizedForLoan(w, r, loanID); !ok {
		return
	}

	page, size := h.pagination(r)

	installments, err := h.loans.ListInstallments(r.Context(), loanID, page, size)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, installments)
}

// PayInstallments handles POST /api/v1/loans/{loanId}/pay. Admin or the
// loan's owner.
func (h *LoanHandler) PayInstallments(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "loanId must be a valid uuid")
		return
	}

	if ok := h.authorizedForLoan(w, r, loanID); !ok {
		return
	}

	var request domain.PayInstallmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.payments.PayInstallments(r.Context(), loanID, request.PayAmount)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LoanHandler) authorizedForCustomer(r *http.Request, customerID uuid.UUID) bool {
	if auth.IsAdmin(r.Context()) {
		return true
	}
	id, ok := auth.CustomerID(r.Context())
	return ok && id == customerID
}

// authorizedForLoan writes the error response itself and reports whether the
// caller may proceed.
func (h *LoanHandler) authorizedForLoan(w http.ResponseWriter, r *http.Request, loanID uuid.UUID) bool {
	if auth.IsAdmin(r.Context()) {
		return true
	}

	customerID, ok := auth.CustomerID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return false
	}

	owner, err := h.loans.IsLoanOwner(r.Context(), loanID, customerID)
	if err != nil {
		response.FromError(w, err)
		return false
	}
	if !owner {
		response.Forbidden(w, "not the owner of this loan")
		return false
	}

	return true
}

func (h *LoanHandler) pagination(r *http.Request) (page, size int) {
	page = h.cfg.Pagination.DefaultPage
	size = h.cfg.Pagination.DefaultSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		}
	}
	if size > h.cfg.Pagination.MaxSize {
		size = h.cfg.Pagination.MaxSize
	}

	return page, size
}

func parseLoansFilter(r *http.Request) (domain.ListLoansFilter, error) {
	var filter domain.ListLoansFilter
	q := r.URL.Query()

	if v := q.Get("number_of_installment"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("number_of_installment must be an integer")
		}
		filter.NumberOfInstallment = &n
	}
	if v := q.Get("create_date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("create_date_from must be YYYY-MM-DD")
		}
		filter.CreateDateFrom = &t
	}
	if v := q.Get("create_date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("create_date_to must be YYYY-MM-DD")
		}
		filter.CreateDateTo = &t
	}
	if v := q.Get("is_paid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("is_paid must be a boolean")
		}
		filter.IsPaid = &b
	}

	return filter, nil
}
