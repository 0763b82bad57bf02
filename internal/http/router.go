package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/expenso/internal/auth"
	accounthttp "github.com/MrJamesThe3rd/expenso/internal/http/account"
	categoryhttp "github.com/MrJamesThe3rd/expenso/internal/http/category"
	exchangehttp "github.com/MrJamesThe3rd/expenso/internal/http/exchange"
	operationhttp "github.com/MrJamesThe3rd/expenso/internal/http/operation"
	"github.com/MrJamesThe3rd/expenso/internal/http/session"
	userhttp "github.com/MrJamesThe3rd/expenso/internal/http/user"
)

func New(
	tokens *auth.TokenManager,
	usersV1 *userhttp.Handler,
	accountsV1 *accounthttp.Handler,
	categoriesV1 *categoryhttp.Handler,
	operationsV1 *operationhttp.Handler,
	exchangeV1 *exchangehttp.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			usersV1.PublicRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(tokens))

			usersV1.Routes(r)

			r.Route("/accounts", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				accountsV1.Routes(r)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				categoriesV1.Routes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				operationsV1.Routes(r)
			})

			r.Route("/exchange", exchangeV1.Routes)
		})
	})

	return router
}
