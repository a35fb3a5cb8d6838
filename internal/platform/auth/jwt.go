// Package auth resolves the viewer identity for a request from a bearer
// token. Token issuance lives in an external identity provider; this
// package only verifies and extracts the subject.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

type ctxKeyViewerID struct{}

// ViewerFromContext returns the authenticated viewer id, if any.
// Absence means the request is anonymous.
func ViewerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyViewerID{}).(string)
	return v, ok && v != ""
}

// WithViewer injects a viewer id into context. Useful for testing.
func WithViewer(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, ctxKeyViewerID{}, viewerID)
}

type Claims struct {
	jwt.RegisteredClaims
}

type JWTVerifier struct {
	Secret []byte
}

func (v JWTVerifier) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearerSubject extracts and verifies the bearer token from a request.
// Returns "" when the header is missing, malformed, or fails verification.
func bearerSubject(r *http.Request, verifier JWTVerifier) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	claims, err := verifier.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(claims.Subject)
}

// RequireUser rejects requests without a verified viewer identity.
// Used on writes and personalized reads.
func RequireUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := bearerSubject(r, verifier)
			if sub == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), sub)))
		})
	}
}

// OptionalUser injects the viewer identity when a valid token is present
// and lets the request through anonymously otherwise. Anonymous reads
// must never fail on a missing or bad token.
func OptionalUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sub := bearerSubject(r, verifier); sub != "" {
				r = r.WithContext(WithViewer(r.Context(), sub))
			}
			next.ServeHTTP(w, r)
		})
	}
}
