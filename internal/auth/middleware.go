// Package auth validates staff access tokens and puts the authenticated
// actor on the request context. Tokens are issued elsewhere; this service
// only verifies them.
package auth

import (
	"net/http"
	"strings"

	"github.com/talentflow/talentflow-backend/internal/auth/jwt"
	"github.com/talentflow/talentflow-backend/pkg/actor"
	"github.com/talentflow/talentflow-backend/pkg/errors"
	"github.com/talentflow/talentflow-backend/pkg/httputil"
	"github.com/talentflow/talentflow-backend/pkg/permissions"
)

// Middleware returns an authentication middleware bound to the given manager.
func Middleware(manager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.ErrorLocalized(w, r, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.ErrorLocalized(w, r, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := manager.ValidateAccessToken(parts[1])
			if err != nil {
				httputil.ErrorLocalized(w, r, err)
				return
			}

			a := &actor.Actor{
				ID:          claims.UserID,
				Name:        claims.Name,
				Email:       claims.Email,
				RoleName:    claims.Role,
				Permissions: claims.Permissions,
			}
			next.ServeHTTP(w, r.WithContext(actor.WithActor(r.Context(), a)))
		})
	}
}

// RequirePermission returns a middleware that rejects actors lacking the
// given permission. Must run after Middleware.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := actor.FromContext(r.Context())
			if a == nil {
				httputil.ErrorLocalized(w, r, errors.Unauthorized("missing authentication"))
				return
			}
			if !permissions.HasPermission(a.Permissions, permission) {
				httputil.ErrorLocalized(w, r, errors.Forbidden("missing permission: "+permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
