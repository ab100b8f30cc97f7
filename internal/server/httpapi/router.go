package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter wires the auth endpoints with the shared middleware stack.
// When apiKey is non-empty, the auth routes require a matching X-Api-Key
// header; these are internal endpoints called by sibling services.
func NewRouter(h *Handler, log *zap.Logger, apiKey string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"auth-service"}`))
	})

	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(requireAPIKey(apiKey))
		}
		r.Post("/api/auth/signup/email", h.SignupEmail)
		r.Post("/api/auth/confirm/email", h.ConfirmEmail)
		r.Post("/api/auth/signin/email", h.SigninEmail)
		r.Post("/api/auth/refresh/token", h.RefreshToken)
		r.Post("/api/auth/revoke/token", h.RevokeToken)
	})

	return r
}

func requireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Api-Key") != key {
				writeJSON(w, http.StatusForbidden, errEnvelope("SYS_INVALID_API_KEY", "invalid api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs request metadata only, never payloads.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
