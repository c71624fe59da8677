package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/telemetry"
)

// SessionEnder tears down the browsing session on logout.
type SessionEnder interface {
	End(ctx context.Context, id string) error
}

type Handler struct {
	provider *Provider
	sessions SessionEnder
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

func NewHandler(provider *Provider, sessions SessionEnder, metrics *telemetry.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		provider: provider,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	*SignIn
	Message string `json:"message"`
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "Please fill in all fields")
		return req, false
	}
	return req, true
}

// HandleSignup creates an account. When the email is already registered it
// signs the caller in with the same credentials instead.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	signIn, err := h.provider.Signup(r.Context(), req.Email, req.Password)
	if err == nil {
		h.writeJSON(w, http.StatusCreated, signInResponse{SignIn: signIn, Message: "Account created successfully!"})
		return
	}
	if !IsKind(err, KindEmailInUse) {
		h.handleAuthError(w, r, err)
		return
	}

	signIn, err = h.provider.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if IsKind(err, KindWrongPassword) {
			h.metrics.AuthFailed(r.Context(), string(KindWrongPassword))
			h.writeError(w, http.StatusUnauthorized, "Account exists, but password is incorrect.")
			return
		}
		h.handleAuthError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, signInResponse{SignIn: signIn, Message: "Account exists. You have been logged in."})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	signIn, err := h.provider.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleAuthError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, signInResponse{SignIn: signIn, Message: "Logged in successfully."})
}

// HandleLogout revokes the bearer token and ends the browsing session, which
// empties the cart.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		if err := h.provider.Logout(r.Context(), token); err != nil {
			h.logger.Error("failed to revoke token", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	if id := cart.SessionID(r.Context()); id != "" {
		if err := h.sessions.End(r.Context(), id); err != nil {
			h.logger.Error("failed to end session", "error", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cart.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity := FromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	gate := NewGate(identity)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user":     identity,
		"is_admin": gate.IsAdmin(),
	})
}

func (h *Handler) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	kind := KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case KindInvalidEmail, KindWeakPassword:
		status = http.StatusBadRequest
	case KindUserNotFound, KindWrongPassword, KindInvalidToken:
		status = http.StatusUnauthorized
	case KindEmailInUse:
		status = http.StatusConflict
	}

	h.metrics.AuthFailed(r.Context(), string(kind))
	if status == http.StatusInternalServerError {
		h.logger.Error("authentication failed", "error", err)
	}
	h.writeError(w, status, Message(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
