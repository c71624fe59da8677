// Package server assembles the storefront HTTP API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joao-fontenele/hotwheels-storefront/internal/auth"
	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/catalog"
	"github.com/joao-fontenele/hotwheels-storefront/internal/checkout"
	"github.com/joao-fontenele/hotwheels-storefront/internal/contact"
	"github.com/joao-fontenele/hotwheels-storefront/internal/orders"
	"github.com/joao-fontenele/hotwheels-storefront/internal/telemetry"
)

type Handlers struct {
	Catalog  *catalog.Handler
	Cart     *cart.Handler
	Checkout *checkout.Handler
	Auth     *auth.Handler
	Orders   *orders.Handler
	Contact  *contact.Handler

	Authenticator auth.TokenAuthenticator
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.WithHTTPRoute)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cart.SessionMiddleware)
		r.Use(auth.Authenticate(h.Authenticator))

		r.Get("/products", h.Catalog.HandleList)
		r.Get("/products/{id}", h.Catalog.HandleGet)

		r.Get("/cart", h.Cart.HandleGet)
		r.Delete("/cart", h.Cart.HandleClear)
		r.Post("/cart/items", h.Cart.HandleAddItem)
		r.Put("/cart/items/{productId}", h.Cart.HandleUpdateQuantity)
		r.Delete("/cart/items/{productId}", h.Cart.HandleRemoveItem)

		r.Get("/currency", h.Cart.HandleGetCurrency)
		r.Put("/currency", h.Cart.HandleSetCurrency)
		r.Post("/currency/toggle", h.Cart.HandleToggleCurrency)

		r.Get("/checkout/summary", h.Checkout.HandleSummary)
		r.Post("/checkout", h.Checkout.HandlePlaceOrder)

		r.Post("/auth/signup", h.Auth.HandleSignup)
		r.Post("/auth/login", h.Auth.HandleLogin)
		r.Post("/auth/logout", h.Auth.HandleLogout)
		r.With(auth.RequireAuth).Get("/auth/me", h.Auth.HandleMe)

		r.Post("/contact", h.Contact.HandleSubmit)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Post("/products", h.Catalog.HandleCreate)
			r.Put("/products/{id}", h.Catalog.HandleUpdate)
			r.Delete("/products/{id}", h.Catalog.HandleDelete)

			r.Get("/orders", h.Orders.HandleList)
			r.Get("/orders/{id}", h.Orders.HandleGet)
			r.Patch("/orders/{id}/status", h.Orders.HandleUpdateStatus)

			r.Get("/messages", h.Contact.HandleList)
			r.Delete("/messages/{id}", h.Contact.HandleDelete)
		})
	})

	return r
}
