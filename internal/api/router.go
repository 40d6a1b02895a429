package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
)

// RouterConfig tunes the rate limit applied to the credential endpoints.
type RouterConfig struct {
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// DefaultRouterConfig allows 10 attempts per source address per 15 minutes on
// sign-in and password change.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		AuthRateLimit:  10,
		AuthRateWindow: 15 * time.Minute,
	}
}

// NewRouter assembles the full HTTP surface.
func NewRouter(h *Handler, cfg RouterConfig, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Credential endpoints share a per-IP budget so a brute force against
	// sign-in cannot be continued against password change.
	authLimiter := httprate.Limit(
		cfg.AuthRateLimit,
		cfg.AuthRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		}),
	)

	// Public reads
	r.Get("/api/addresses", h.GetAddresses)
	r.Get("/api/rules", h.GetRules)
	r.Post("/api/signout", h.SignOut)

	// Session-gated mutations
	r.Group(func(r chi.Router) {
		r.Use(h.requireAPISession)
		r.Post("/api/addresses", h.PostAddresses)
		r.Post("/api/rules", h.PostRules)
		r.With(authLimiter).Post("/api/change-password", h.ChangePassword)
	})

	r.With(authLimiter).Post("/signin", h.SignIn)

	// Pages
	r.Get("/", h.Index)
	r.Get("/signin", h.SignInPage)
	r.With(h.requirePageSession).Get("/admin", h.AdminPage)

	return r
}
