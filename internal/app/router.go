package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	charthttp "github.com/maxp/merchant-portal/internal/charts/http"
	merchanthttp "github.com/maxp/merchant-portal/internal/merchants/http"
	"github.com/maxp/merchant-portal/internal/observability"
	"github.com/maxp/merchant-portal/internal/shared"
	"github.com/maxp/merchant-portal/internal/view"
	"github.com/maxp/merchant-portal/web"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	MerchantsHandler *merchanthttp.Handler
	ChartsHandler    *charthttp.Handler
	Metrics          *observability.Metrics
	// HealthChecks are run by /healthz, keyed by component name.
	HealthChecks map[string]HealthCheck
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", healthHandler(params.HealthChecks))

	r.Post("/ui/sidebar", func(w http.ResponseWriter, r *http.Request) {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.ToggleSidebar()
		}
		http.Redirect(w, r, safeReturnPath(r.PostFormValue("return")), http.StatusSeeOther)
	})

	params.MerchantsHandler.MountRoutes(r)
	params.ChartsHandler.MountRoutes(r)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		data := view.TemplateData{
			Title:       "Not Found",
			CSRFToken:   csrfToken,
			CurrentPath: r.URL.Path,
			SidebarOpen: sess == nil || sess.SidebarOpen(),
			Data:        "The page you are looking for does not exist.",
		}
		if err := params.Templates.RenderStatus(w, http.StatusNotFound, "pages/error.html", data); err != nil {
			params.Logger.Error("render not found", slog.Any("error", err))
			http.NotFound(w, r)
		}
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		status := http.StatusOK
		body := `{"status":"ok"}`
		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body = `{"status":"degraded","component":"` + name + `"}`
				break
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// safeReturnPath keeps sidebar redirects on this site.
func safeReturnPath(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets (JS, CSS) are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
