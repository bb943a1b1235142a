package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Hylozoic/entitlements-service/internal/http/handlers"
	"github.com/Hylozoic/entitlements-service/internal/http/middleware"
	"github.com/Hylozoic/entitlements-service/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики/гистограммы запросов
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// grants
	r.Post("/grants", h.GrantAccess)
	r.Post("/purchases", h.RecordPurchase)
	r.Post("/grants/{id}/revoke", h.RevokeGrant)
	r.Post("/grants/{id}/extend", h.ExtendGrant)
	r.Get("/access", h.CheckAccess)

	// users
	r.Get("/users/{id}/grants", h.UserGrants)
	r.Get("/users/{id}/subscriptions", h.UserSubscriptions)
	r.Get("/users/{id}/scopes", h.UserScopes)
	r.Get("/users/{id}/scopes/check", h.HasScope)

	// billing
	r.Get("/sessions/{id}/grants", h.SessionGrants)
	r.Get("/subscriptions/{id}/grants", h.SubscriptionGrants)
	r.Post("/subscriptions/{id}/renew", h.RenewSubscription)
	r.Post("/subscriptions/{id}/cancel", h.CancelSubscription)
}
