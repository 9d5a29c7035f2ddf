package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
)

type contextKey string

const (
	// PrincipalContextKey is the context key for the authenticated principal
	PrincipalContextKey contextKey = "principal"
)

// GetPrincipalFromContext retrieves the authenticated principal from the context
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalContextKey).(*Principal); ok {
		return p
	}
	return nil
}

// Middleware creates HTTP middleware that enforces Basic Authentication and
// stores the authenticated principal in the request context.
func Middleware(authenticator Authenticator, realm string) func(http.Handler) http.Handler {
	if realm == "" {
		realm = "dailyflo"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The health endpoint stays reachable for probes.
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				requestAuth(w, realm)
				return
			}

			creds, err := parseBasicAuth(authHeader)
			if err != nil {
				requestAuth(w, realm)
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), creds)
			if err != nil {
				requestAuth(w, realm)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestAuth sends WWW-Authenticate header
func requestAuth(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// parseBasicAuth parses an HTTP Basic Authentication string
func parseBasicAuth(auth string) (Credentials, error) {
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return Credentials{}, &Error{
			Type:    ErrInvalidCredentials,
			Message: "invalid authorization header format",
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return Credentials{}, &Error{
			Type:    ErrInvalidCredentials,
			Message: "invalid base64 encoding",
			Err:     err,
		}
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return Credentials{}, &Error{
			Type:    ErrInvalidCredentials,
			Message: "invalid credentials format",
		}
	}

	return Credentials{
		Username: parts[0],
		Password: parts[1],
	}, nil
}
