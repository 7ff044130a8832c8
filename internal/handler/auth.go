package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/loan-engine/internal/auth"
	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
	"github.com/segyhp/loan-engine/pkg/response"
)

type AuthHandler struct {
	store     repository.Store
	tokens    *auth.TokenManager
	validator *validator.Validate
}

func NewAuthHandler(store repository.Store, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		store:     store,
		tokens:    tokens,
		validator: validator.New(),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	customer, err := h.store.Repos().Customers.GetByUsername(r.Context(), request.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Unauthorized(w, "invalid username or password")
			return
		}
		response.FromError(w, err)
		return
	}

	if err := auth.VerifyPassword(request.Password, customer.PasswordHash); err != nil {
		response.Unauthorized(w, "invalid username or password")
		return
	}

	token, err := h.tokens.Generate(customer.ID, customer.Role)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.LoginResponse{
		Token:      token,
		CustomerID: customer.ID,
		Role:       customer.Role,
	})
}
