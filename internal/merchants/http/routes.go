package merchanthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/maxp/merchant-portal/internal/shared"
)

// MountRoutes registers merchant endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleList)
	r.Post("/merchants/query", h.handleQuery)
	r.Post("/merchants/search", h.handleSearch)
	r.Get("/create", h.showCreate)
	r.Post("/create", h.handleCreate)
	r.Get("/api/merchants", h.handleAPIList)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/merchants/report", h.handleReport)
	})
}

// rateLimitKey limits report exports per browser session, falling back to the client IP.
func rateLimitKey(r *http.Request) (string, error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return "session:" + sess.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
