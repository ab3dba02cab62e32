package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/carenotify/pkg/httpserver"
	"github.com/dmitrymomot/carenotify/pkg/jwt"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/ratelimiter"
	"github.com/dmitrymomot/carenotify/pkg/requestid"
	"github.com/dmitrymomot/carenotify/pkg/tenant"
)

func (a *App) router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware())
	r.Use(middleware.RealIP)
	r.Use(accessLog(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.settings.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", tenant.DefaultHeader, requestid.Header},
		ExposedHeaders: []string{requestid.Header},
		MaxAge:         300,
	}))

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(a.logger, a.backend.probes))

	r.Group(func(r chi.Router) {
		if a.connectLimit != nil {
			r.Use(ratelimiter.Middleware(a.connectLimit, ratelimiter.ByIP, a.logger))
		}
		r.Get("/ws", a.ws.ServeHTTP)
		r.Get("/sse", a.sse.ServeHTTP)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(jwt.Middleware(a.tokens))
		r.Use(tenant.Middleware(tenant.DefaultResolver()))
		r.Use(tenant.RequireTenant(func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, err)
		}))
		r.Use(requireAudience(DispatchAudience))
		if a.dispatchLimit != nil {
			r.Use(ratelimiter.Middleware(a.dispatchLimit, ratelimiter.ByTenant, a.logger))
		}

		r.Post("/dispatch", a.dispatch)
		r.Post("/announce", a.announce)
		r.Post("/users/{userID}/stats", a.pushStats)
	})
	return r
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.String("remote_ip", r.RemoteAddr),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
