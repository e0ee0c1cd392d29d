package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mealbuddy/server/internal/auth/emailotp"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister handles POST /v1/auth/register
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleVerifyEmail handles POST /v1/auth/verify-email
func (h *Handlers) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.VerifyEmail(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /v1/auth/login
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	token, challenge, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	if challenge != nil {
		writeJSON(w, http.StatusOK, challenge)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// HandleTwoFactorVerify handles POST /v1/auth/2fa/verify
func (h *Handlers) HandleTwoFactorVerify(w http.ResponseWriter, r *http.Request) {
	var req TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.VerifyTwoFactor(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeAuthError(w http.ResponseWriter, err error) {
	if serviceErr, ok := emailotp.AsServiceError(err); ok {
		writeErrorResponse(w, serviceErr.Status, serviceErr.Code, serviceErr.Message)
		return
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		writeErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, ErrEmailNotVerified):
		writeErrorResponse(w, http.StatusForbidden, "email_not_verified", err.Error())
	case errors.Is(err, ErrEmailTaken):
		writeErrorResponse(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, ErrUserNotFound):
		writeErrorResponse(w, http.StatusNotFound, "user_not_found", err.Error())
	default:
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
