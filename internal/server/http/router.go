// Package http exposes the authentication API over HTTP. Handlers stay
// thin: decode, validate, call a service, map errors to status codes.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quollsoft/passgate/internal/server/service"
	"github.com/quollsoft/passgate/internal/server/store"
	"github.com/quollsoft/passgate/pkg/httpx"
	"github.com/quollsoft/passgate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	startTime time.Time
	logger    *slog.Logger

	store           store.Store
	AuthService     *service.AuthService
	PasswordService *service.PasswordService
	AccountService  *service.AccountService
	SessionService  *service.SessionService
}

func NewRouter(st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPassword()
	r.registerAccount()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
	}

	// Credential endpoints take the strict limit; they are the brute
	// force surface.
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /verify-2fa",
		httpx.Chain(http.HandlerFunc(h.HandleVerify2FA),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{PasswordService: r.PasswordService}

	r.Mux.Handle("POST /forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgot),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AccountService: r.AccountService,
		SessionService: r.SessionService,
	}

	secured := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			r.requireSession,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /account/settings", secured(http.HandlerFunc(h.HandleGetSettings)))
	r.Mux.Handle("PATCH /account/settings", secured(http.HandlerFunc(h.HandleUpdateSettings)))
	r.Mux.Handle("DELETE /delete-account", secured(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.store),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}
