package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

func newTestRouter(t *testing.T) (http.Handler, *cart.Sessions) {
	t.Helper()
	p, _ := newTestProvider(t)
	sessions := cart.NewSessions(cart.NewMemorySessionStore(time.Hour))
	h := NewHandler(p, sessions, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(cart.SessionMiddleware)
	r.Use(Authenticate(p))
	r.Post("/api/auth/signup", h.HandleSignup)
	r.Post("/api/auth/login", h.HandleLogin)
	r.Post("/api/auth/logout", h.HandleLogout)
	r.Get("/api/auth/me", h.HandleMe)
	return r, sessions
}

func send(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_SignupFallsBackToLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	creds := `{"email":"racer@example.com","password":"secret1"}`

	rec := send(router, http.MethodPost, "/api/auth/signup", creds, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Account created successfully!", decodeBody(t, rec)["message"])

	rec = send(router, http.MethodPost, "/api/auth/signup", creds, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Account exists. You have been logged in.", body["message"])
	assert.NotEmpty(t, body["token"])

	rec = send(router, http.MethodPost, "/api/auth/signup", `{"email":"racer@example.com","password":"wrong!!"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Account exists, but password is incorrect.", decodeBody(t, rec)["error"])
}

func TestHandler_SignupErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
		msg  string
	}{
		{"malformed body", `{`, http.StatusBadRequest, "invalid request body"},
		{"missing fields", `{"email":"","password":""}`, http.StatusBadRequest, "Please fill in all fields"},
		{"invalid email", `{"email":"nope","password":"secret1"}`, http.StatusBadRequest, "Invalid email format."},
		{"weak password", `{"email":"a@b.com","password":"123"}`, http.StatusBadRequest, "Password must be at least 6 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(router, http.MethodPost, "/api/auth/signup", tt.body, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.msg, decodeBody(t, rec)["error"])
		})
	}
}

func TestHandler_LoginMeLogout(t *testing.T) {
	router, _ := newTestRouter(t)
	creds := `{"email":"racer@example.com","password":"secret1"}`
	require.Equal(t, http.StatusCreated, send(router, http.MethodPost, "/api/auth/signup", creds, "").Code)

	rec := send(router, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No account found with this email.", decodeBody(t, rec)["error"])

	rec = send(router, http.MethodPost, "/api/auth/login", creds, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = send(router, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["is_admin"])

	rec = send(router, http.MethodPost, "/api/auth/logout", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(router, http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_LogoutEndsSession(t *testing.T) {
	router, sessions := newTestRouter(t)
	sessionID := "6f1c1c64-36a8-4d38-9c2b-1d6f0ad8b0a1"

	_, err := sessions.Update(t.Context(), sessionID, func(s *cart.Session) error {
		s.Cart.AddItem(domain.Product{ID: "1", Name: "Turbo Racer", Price: decimal.NewFromInt(10)})
		return nil
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: cart.SessionCookie, Value: sessionID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	session, err := sessions.Get(t.Context(), sessionID)
	require.NoError(t, err)
	assert.True(t, session.Cart.IsEmpty())
}
