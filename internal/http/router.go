package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecar-admin/admin-gateway/internal/config"
	"github.com/ecar-admin/admin-gateway/internal/guard"
	"github.com/ecar-admin/admin-gateway/internal/http/handlers"
	"github.com/ecar-admin/admin-gateway/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Cookies config.CookieConfig
	Routes  config.RoutesConfig
	// FrontendDir — каталог собранного фронтенда; пустой — статика не раздаётся.
	FrontendDir string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, res middleware.CredentialResolver, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	root.Route("/api", func(r chi.Router) {
		registerSessionRoutes(r, h)
		registerPublicRoutes(r, h)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Credentials(res, opts.Cookies))
			registerResourceRoutes(r, h)
		})
	})

	if opts.FrontendDir != "" {
		static := guard.Middleware(opts.Routes.AuthPrefixes, opts.Routes.SignInPath)(
			http.FileServer(http.Dir(opts.FrontendDir)),
		)
		root.Handle("/*", static)
	}

	return root
}

// registerSessionRoutes — сессия на cookie: сами управляют токенами.
func registerSessionRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/me", h.Me)
	r.Post("/logout", h.Logout)
	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)
	r.Post("/password/reset", h.ResetPassword)
}

// registerPublicRoutes — справочники, доступные upstream без токена.
func registerPublicRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/makes", h.ListMakes)
	r.Get("/models", h.ListModels)
	r.Get("/cars/popular", h.PopularCars)
}

// registerResourceRoutes — ресурсы, требующие access-токена.
func registerResourceRoutes(r chi.Router, h *handlers.Handlers) {
	// cars
	r.Get("/cars", h.ListCars)
	r.Post("/cars", h.CreateCar)
	r.Get("/cars/{id}", h.GetCar)
	r.Delete("/cars/{id}", h.DeleteCar)
	r.Patch("/cars/{id}/verify", h.VerifyCar)
	r.Post("/cars/{id}/views", h.RecordCarView)

	// favorites
	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites", h.AddFavorite)
	r.Delete("/favorites/{id}", h.RemoveFavorite)

	// makes / models
	r.Post("/makes", h.CreateMake)
	r.Patch("/makes/{id}", h.UpdateMake)
	r.Delete("/makes/{id}", h.DeleteMake)
	r.Post("/models", h.CreateModel)
	r.Patch("/models/{id}", h.UpdateModel)
	r.Delete("/models/{id}", h.DeleteModel)

	// sales
	r.Get("/sales", h.ListSales)
	r.Post("/sales", h.CreateSale)
	r.Get("/sales/{id}", h.GetSale)
	r.Patch("/sales/{id}", h.UpdateSale)
	r.Delete("/sales/{id}", h.DeleteSale)

	// profiles
	r.Get("/profiles", h.ListProfiles)
	r.Get("/profiles/me", h.MyProfile)
	r.Get("/profiles/{id}", h.GetProfile)
	r.Patch("/profiles/{id}", h.UpdateProfile)
	r.Post("/profiles/upgrade/{role}", h.UpgradeProfile)
}
