package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/logging"
	"github.com/dmitrijs2005/fileshare/internal/server/auth"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

func sessionFromContext(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(models.Session)
	return sess, ok
}

// loadSession resolves the session cookie into a models.Session stored in the
// request context. Missing, forged or stale cookies leave the context empty.
func (s *HTTPServer) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(common.SessionCookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sessionID, err := auth.GetSessionIDFromToken(c.Value, s.jwtSecret)
		if err != nil {
			s.logger.Debug(r.Context(), "rejected session cookie", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// requireAuthenticated redirects to the login page unless loadSession found
// an authenticated session.
func (s *HTTPServer) requireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromContext(r.Context())
		if !ok || !sess.Authenticated {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"size", rec.size,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// recoverLogger adapts logging.Logger to the printf-style backend
// rest.Recoverer expects.
type recoverLogger struct {
	l logging.Logger
}

func (r recoverLogger) Logf(format string, args ...any) {
	r.l.Error(context.Background(), fmt.Sprintf(format, args...))
}
