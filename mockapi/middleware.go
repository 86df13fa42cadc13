package mockapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-condo-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ContextKeyUser ContextKey = "user"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the chain for every route; extra middleware runs innermost.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		s.CountingMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
	return append(chained, mw...)
}

// statusRecorder remembers the status written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (s *Server) CountingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.countHit(r.Pattern)
		next(w, r)
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)
		if s.env == "DEV" {
			s.logRoute(r.Method, r.URL.Path, rec.status)
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", rec.status).
			Msg("request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

// RequireAuth validates the bearer access token and puts the caller in the
// request context. Failures answer 401 the way the real API does.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			s.log.Debug().Err(err).Msg("rejected access token")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := s.users.GetByID(claims.Subject)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if !user.IsActive {
			writeDetail(w, http.StatusBadRequest, "Inactive user")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin must run after RequireAuth.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if u := currentUser(r); !u.IsAdmin() {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next(w, r)
	}
}

func currentUser(r *http.Request) *users.User {
	u, ok := r.Context().Value(ContextKeyUser).(users.User)
	if !ok {
		return nil
	}
	return &u
}

// tenantOf is the caller's tenant; every collection is scoped by it.
func tenantOf(r *http.Request) string {
	if u := currentUser(r); u != nil {
		return u.TenantID
	}
	return ""
}

func notFound(w http.ResponseWriter, what string) {
	writeDetail(w, http.StatusNotFound, what+" not found")
}
