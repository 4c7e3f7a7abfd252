package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"
)

// SignToken mints an HS256 bearer token shaped like the ones the user module
// issues, so middleware and services see realistic claims in tests.
func SignToken(t *testing.T, signingKey, subject, role string) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

// WithBearer sets the Authorization header the auth middleware reads.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// AuthedContext returns a context carrying a bearer token plus subject and
// role, matching what the auth middleware produces for a valid local JWT.
// For service-level tests that skip the HTTP stack entirely.
func AuthedContext(ctx context.Context, token, subject, role string) context.Context {
	ctx = requestcontext.WithBearerToken(ctx, token)
	ctx = requestcontext.WithSubject(ctx, subject)
	return requestcontext.WithRole(ctx, role)
}
