package rest

import (
	"net/http"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
)

type AuthMiddleware struct {
	verifier port.TokenVerifierPort
}

func NewAuthMiddleware(verifier port.TokenVerifierPort) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || token == authHeader || token == "" {
		return "", false
	}
	return token, true
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's principal in the request context.
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteJSONError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		principal, err := am.verifier.Verify(r.Context(), token)
		if err != nil {
			contextkeys.LoggerFromContext(r.Context()).Debug("Token rejected", port.Fields{"error": err.Error()})
			WriteJSONError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextkeys.ContextWithPrincipal(r.Context(), principal)))
	})
}

// OptionalAuthenticate attaches a principal when a valid token is present and
// lets anonymous requests through. An invalid token is still rejected.
func (am *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r); !ok {
			next.ServeHTTP(w, r)
			return
		}
		am.Authenticate(next).ServeHTTP(w, r)
	})
}

func (am *AuthMiddleware) RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := contextkeys.PrincipalFromContext(r.Context())
			if !ok {
				WriteJSONError(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}
			if principal.Role != requiredRole {
				WriteJSONError(w, r, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
