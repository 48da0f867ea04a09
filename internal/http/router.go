package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/slips"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Deps is everything the API needs from the composition root.
type Deps struct {
	Logger   *zap.Logger
	Catalog  catalog.Provider
	Orders   orders.Service
	Tracker  *orders.Tracker
	Auth     Authenticator
	Sessions Sessions
	Slips    slips.Store
	Pricing  pricing.Policy
	Cookies  sessions.Store

	PublicBaseURL  string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	jar := cookieJar{store: d.Cookies}

	catalogHandler := NewCatalogHandler(d.Catalog, d.RequestTimeout)
	cartHandler := NewCartHandler(d.Catalog, d.Pricing, d.RequestTimeout)
	cartFeed := NewCartFeed(d.Pricing, d.PublicBaseURL)
	authHandler := NewAuthHandler(d.Auth, jar, d.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(d.Slips, d.RequestTimeout)
	ordersHandler := NewOrdersHandler(d.Orders, d.Tracker, d.PublicBaseURL, d.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(LoadSession(jar, d.Sessions, d.Auth))

		// The cart feed is long lived and stays outside the request timeout.
		r.Get("/cart/ws", cartFeed.Serve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(d.RequestTimeout))
			r.Use(middleware.Compress(5))

			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Use(RequireUser)
				r.Get("/", checkoutHandler.GetCheckout)
				r.Put("/shipping", checkoutHandler.PutShipping)
				r.Put("/payment", checkoutHandler.PutPayment)
				r.Post("/slip", checkoutHandler.UploadSlip)
				r.Post("/next", checkoutHandler.Next)
				r.Post("/back", checkoutHandler.Back)
				r.Post("/submit", checkoutHandler.Submit)
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(RequireUser).Get("/", ordersHandler.ListOrders)
				r.Get("/{order_id}", ordersHandler.TrackOrder)
				r.Get("/{order_id}/qr", ordersHandler.QRCode)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
