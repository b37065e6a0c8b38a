package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/user-directory/internal/service"
)

type contextKey string

const visitorContextKey contextKey = "visitor"

const visitorCookieName = "visitor_token"

// VisitorFromContext returns the visitor ID injected by WithVisitor, or ""
// outside of it.
func VisitorFromContext(ctx context.Context) string {
	id, _ := ctx.Value(visitorContextKey).(string)
	return id
}

// WithVisitor identifies the browser making the request. A valid
// visitor_token cookie is reused; otherwise a new visitor is issued and the
// cookie set on the response. The visitor ID is injected into the context.
func WithVisitor(visitors *service.VisitorService, secureCookie bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := ""
		if cookie, err := r.Cookie(visitorCookieName); err == nil {
			visitorID, _ = visitors.Validate(cookie.Value)
		}

		if visitorID == "" {
			id, token, err := visitors.Issue()
			if err != nil {
				slog.Error("issue visitor token", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(visitors.TTL().Seconds()),
			})
			visitorID = id
		}

		ctx := context.WithValue(r.Context(), visitorContextKey, visitorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders sets conservative browser security headers. Scripts are
// limited to this origin and the datastar CDN bundle; datastar evaluates
// its attribute expressions, which needs 'unsafe-eval'.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-eval' https://cdn.jsdelivr.net; "+
				"style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE responses stream through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// LogRequests logs one line per request at debug level, or warn for 5xx.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
