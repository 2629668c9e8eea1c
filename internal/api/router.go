package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/api/middleware"
	"github.com/example/ksd-storefront/internal/auth"
)

func NewRouter(handlers *Handlers, tokens *auth.TokenService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(logger.Named("http")))
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", handlers.Health)

	// Checkout (method is checked by the handler)
	r.HandleFunc("/api/create-checkout-session", handlers.CreateCheckoutSession)

	// Catalog
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/", handlers.ListCategories)
		r.Get("/{category}", handlers.GetCategory)
		r.Get("/{category}/{slug}", handlers.GetProduct)
	})

	// Contact
	r.Post("/api/contact", handlers.SubmitContact)

	// Bag
	r.Route("/api/bag", func(r chi.Router) {
		r.Use(middleware.BagMiddleware(tokens, logger.Named("bag")))
		r.Get("/", handlers.GetBag)
		r.Delete("/", handlers.ClearBag)
		r.Post("/items", handlers.AddBagItem)
		r.Patch("/items/{slug}", handlers.SetBagItemQuantity)
		r.Delete("/items/{slug}", handlers.RemoveBagItem)
		r.Post("/checkout", handlers.CheckoutBag)
	})

	return otelhttp.NewHandler(r, "storefront")
}
