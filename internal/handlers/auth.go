package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ahmedoumar/storify/internal/auth"
)

type signupRequest struct {
	Email string `json:"email"`
}

type confirmRequest struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	addr := strings.TrimSpace(req.Email)
	if addr == "" {
		respondError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	if _, err := h.auth.RequestSignup(r.Context(), addr); err != nil {
		h.authFailure(w, "signup", err)
		return
	}

	authAttempts.WithLabelValues("signup", "ok").Inc()
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "confirmation sent"})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.Password == "" {
		respondError(w, http.StatusBadRequest, errors.New("password is required"))
		return
	}
	if req.Password != req.ConfirmPassword {
		respondError(w, http.StatusBadRequest, errors.New("passwords do not match"))
		return
	}

	if err := h.auth.Confirm(r.Context(), strings.TrimSpace(req.Email), req.Token, req.Password); err != nil {
		h.authFailure(w, "confirm", err)
		return
	}

	authAttempts.WithLabelValues("confirm", "ok").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"status": "account active"})
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := h.auth.ResendConfirmation(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		h.authFailure(w, "resend", err)
		return
	}

	authAttempts.WithLabelValues("resend", "ok").Inc()
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "confirmation sent"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	account, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.authFailure(w, "login", err)
		return
	}

	token, err := h.issueAccessToken(account.ID, account.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("could not issue token"))
		return
	}

	authAttempts.WithLabelValues("login", "ok").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"access_token": token})
}

func (h *Handler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := h.auth.RequestReset(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		h.authFailure(w, "reset_request", err)
		return
	}

	authAttempts.WithLabelValues("reset_request", "ok").Inc()
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "reset token sent"})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, errors.New("new password is required"))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondError(w, http.StatusBadRequest, errors.New("passwords do not match"))
		return
	}

	if err := h.auth.ResetPassword(r.Context(), strings.TrimSpace(req.Email), req.Token, req.NewPassword); err != nil {
		h.authFailure(w, "reset", err)
		return
	}

	authAttempts.WithLabelValues("reset", "ok").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"status": "password changed"})
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("missing credentials"))
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), claims.Email); err != nil {
		h.authFailure(w, "delete", err)
		return
	}

	authAttempts.WithLabelValues("delete", "ok").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"status": "account deleted"})
}

func (h *Handler) handleAccountExists(w http.ResponseWriter, r *http.Request) {
	addr := strings.TrimSpace(r.URL.Query().Get("email"))
	if addr == "" {
		respondError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	exists, err := h.auth.AccountExists(r.Context(), addr)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("storage failure"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"exists": exists})
}

// authFailure maps the lifecycle error taxonomy onto HTTP statuses and
// records the outcome.
func (h *Handler) authFailure(w http.ResponseWriter, operation string, err error) {
	status := http.StatusInternalServerError
	result := "storage_failure"

	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		status, result = http.StatusNotFound, "user_not_found"
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		status, result = http.StatusConflict, "email_exists"
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		status, result = http.StatusForbidden, "email_not_confirmed"
	case errors.Is(err, auth.ErrIncorrectPassword):
		status, result = http.StatusUnauthorized, "incorrect_password"
	case errors.Is(err, auth.ErrInvalidToken):
		status, result = http.StatusUnauthorized, "invalid_token"
	}

	authAttempts.WithLabelValues(operation, result).Inc()

	if status == http.StatusInternalServerError {
		// do not leak storage internals to clients
		respondError(w, status, errors.New("internal error"))
		return
	}
	respondError(w, status, err)
}
