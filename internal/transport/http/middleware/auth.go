package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/requestctx"
)

// UserLookup resolves a token subject to a user that may still act.
type UserLookup interface {
	ActiveUser(ctx context.Context, userID string) (auth.User, error)
}

// Auth attaches the caller for a valid bearer token. Requests without one
// continue anonymously; RequirePermission rejects them where needed. With a
// nil lookup the token claims are trusted as-is.
func Auth(secret string, lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			caller := requestctx.Caller{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
			if lookup != nil {
				user, err := lookup.ActiveUser(r.Context(), claims.UserID)
				if err != nil {
					log.Ctx(r.Context()).Debug().Err(err).Str("userId", claims.UserID).Msg("token subject rejected")
					next.ServeHTTP(w, r)
					return
				}
				caller = requestctx.Caller{UserID: user.ID, Email: user.Email, Role: user.Role}
			}

			ctx := requestctx.WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (requestctx.Caller, bool) {
	return requestctx.GetCaller(ctx)
}
