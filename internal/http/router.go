package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MrJamesThe3rd/invoicer/internal/http/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/http/export"
	"github.com/MrJamesThe3rd/invoicer/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	transactionsV1 *transaction.Handler,
	deliveriesV1 *delivery.Handler,
	exportsV1 *export.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
			deliveriesV1.Routes(r)
		})

		r.Route("/templates", deliveriesV1.TemplateRoutes)

		r.Route("/exports", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			exportsV1.Routes(r)
		})
	})

	return otelhttp.NewHandler(router, "invoicer.api")
}
