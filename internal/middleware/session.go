package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bryanwahyu/archscope/internal/application/session"
)

type contextKey string

const sessionKey contextKey = "session"

const (
	SessionCookie = "archscope_session"
	SessionHeader = "X-Session-ID"
)

// Session resolves (or starts) the caller's session and stores it in the
// request context. The id is echoed in both the cookie and the header.
func Session(reg *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}

			st, created := reg.Resolve(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    st.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, st.ID)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), st)))
		})
	}
}

// WithSession stores st in ctx.
func WithSession(ctx context.Context, st *session.State) context.Context {
	return context.WithValue(ctx, sessionKey, st)
}

// GetSession extracts the session state from context
func GetSession(ctx context.Context) *session.State {
	if st, ok := ctx.Value(sessionKey).(*session.State); ok {
		return st
	}
	return nil
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
