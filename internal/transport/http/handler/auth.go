package handler

import (
	"net/http"

	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/application/verification"
	"github.com/go-otp-auth/internal/pkg/validate"
)

type RequestVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type TokenRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verification_code" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthHandler handles code requests, code exchange and token refresh.
type AuthHandler struct {
	svc        auth.Service
	codeLength int
}

func NewAuthHandler(svc auth.Service, codeLength int) *AuthHandler {
	return &AuthHandler{svc: svc, codeLength: codeLength}
}

func (h *AuthHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	var req RequestVerificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, issued, err := h.svc.RequestVerification(r.Context(), req.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if !issued {
		writeError(w, http.StatusBadRequest, "verification code already sent, try again later")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !verification.ValidCodeFormat(req.VerificationCode, h.codeLength) {
		writeError(w, http.StatusBadRequest, "invalid verification code format")
		return
	}
	pair, err := h.svc.ExchangeCode(r.Context(), req.Email, req.VerificationCode)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pair, err := h.svc.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Ping confirms the bearer token is a valid access token.
func (h *AuthHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "authenticated"})
}
