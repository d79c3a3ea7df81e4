package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

// identityKey is the context key under which the resolved Identity is stored.
var identityKey contextKey

// Identity is the caller identity resolved from the Authorization header.
// The zero value is the anonymous identity.
type Identity struct {
	Authenticated bool
	UserID        int64
}

// Middleware resolves the bearer token on every request into an Identity and
// stores it in the request context. Resolution never fails the request: a
// missing, malformed, expired or forged token all resolve to anonymous.
// Routes that require authentication wrap their handler in RequireAuth.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolveIdentity(tokens, r.Header.Get("Authorization"))
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveIdentity implements the per-request resolution state machine:
// no header or malformed header -> anonymous; well-formed header -> verify,
// with invalid tokens also resolving to anonymous.
func resolveIdentity(tokens *TokenManager, header string) Identity {
	if header == "" {
		return Identity{}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Identity{}
	}

	userID, err := tokens.Verify(parts[1])
	if err != nil {
		return Identity{}
	}

	return Identity{Authenticated: true, UserID: userID}
}

// IdentityFromContext retrieves the resolved identity from the context.
// Requests that did not pass through Middleware resolve to anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if identity, ok := ctx.Value(identityKey).(Identity); ok {
		return identity
	}
	return Identity{}
}

// ContextWithIdentity returns a context carrying the given identity.
// Used by handler tests to simulate an authenticated request.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
