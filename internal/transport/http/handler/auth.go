package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/plant-catalog-api/internal/application/auth"
	"github.com/plant-catalog-api/internal/domain"
	"github.com/plant-catalog-api/internal/pkg/validate"
)

const msgInternal = "Internal server error"

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthHandler handles register, login and logout.
type AuthHandler struct {
	svc    auth.Service
	cookie SessionCookie
}

func NewAuthHandler(svc auth.Service, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	_, err := h.svc.Register(r.Context(), req)
	switch {
	case err == nil:
		writeMessage(w, "Registration successful")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, "Email already exists")
	default:
		slog.ErrorContext(r.Context(), "register failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	default:
		slog.ErrorContext(r.Context(), "login failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	http.SetCookie(w, h.sessionCookie(result.Token, int(h.cookie.TTL/time.Second)))
	writeMessage(w, "Login successful")
}

// Logout only removes the cookie; the token itself stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeMessage(w, "Logout successful")
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (domain.CredentialsRequest, bool) {
	var req domain.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}
