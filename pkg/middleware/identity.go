package middleware

import (
	"context"
	"net/http"

	"voltslot/pkg/model"
)

const (
	identityKey contextKey = "identity"

	// Headers injected by the upstream gateway after authentication.
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Identity materializes the gateway-established caller into the request
// context. Requests without a user header pass through anonymously; handlers
// that need a caller reject them with 401.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID != "" {
				role := model.Role(r.Header.Get(HeaderUserRole))
				if role != model.RoleAdmin {
					role = model.RoleUser
				}
				ctx := context.WithValue(r.Context(), identityKey, model.Identity{
					UserID: userID,
					Role:   role,
				})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the caller identity, if any.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}
