package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pualine/Ellah-art-studio/internal/http/handlers"
	"github.com/pualine/Ellah-art-studio/internal/infra"
	"github.com/pualine/Ellah-art-studio/internal/middleware"
	"github.com/pualine/Ellah-art-studio/web"
)

// NewRouter builds the route table with the middleware chain the service
// runs behind.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger, lookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.I18N("en", lookup))
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Post("/image", app.UploadImage)
			r.Post("/example", app.LoadExample)
			r.Post("/generate", app.Generate)
			r.Post("/clear", app.ClearSession)
			r.Get("/result", app.DownloadResult)
			r.Get("/export", app.ExportSession)
		})
	})

	r.Get("/v1/history", app.HistoryList)

	// single-page shell
	r.Handle("/*", web.Handler())

	return r
}
