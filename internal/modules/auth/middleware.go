package auth

import (
	"net/http"
	"strings"
)

// Authenticate rejects requests without a valid bearer token and stores the
// resulting Actor in the request context.
func Authenticate(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "authorization header is required"})
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "authorization header must be Bearer token"})
				return
			}

			actor, err := svc.ParseToken(parts[1])
			if err != nil {
				respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole allows the request through only for actors holding one of roles.
// It must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			for _, role := range roles {
				if strings.EqualFold(actor.Role, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			respond(w, http.StatusForbidden, map[string]string{"error": "you do not have permission to access this resource"})
		})
	}
}
