package auth

import (
	"context"
	"net/http"
	"strings"

	"carteira/internal/core"
	applog "carteira/internal/log"
)

type contextKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user set by the middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok
}

// OwnerFromContext returns the authenticated owner or the empty id, which
// every store rejects as UNAUTHORIZED.
func OwnerFromContext(ctx context.Context) core.OwnerID {
	u, _ := UserFromContext(ctx)
	return u.ID
}

// BearerToken reads "Authorization: Bearer <token>". Tokens are never read
// from the URL.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware authenticates every request. onError writes the response for
// missing or invalid tokens.
func (t *TokenIssuer) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := t.Parse(BearerToken(r))
			if err != nil {
				if onError != nil {
					onError(w, r, err)
				} else {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
				}
				return
			}
			ctx := WithUser(r.Context(), user)
			ctx = applog.IntoContext(ctx, applog.FromContext(ctx).With(applog.FieldOwner, string(user.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
