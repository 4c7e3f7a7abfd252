// Package token caches the service account session used for background calls
// to the user module, where no end-user bearer token is available.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
)

// LoginClient is the slice of the user module client the provider needs.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (*person.Envelope, error)
}

// Provider logs in once and hands the cached token to every caller until it
// is invalidated. Safe for concurrent use.
type Provider struct {
	client   LoginClient
	email    string
	password string
	logger   *slog.Logger

	mu    sync.Mutex
	token string
}

type Option func(*Provider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(client LoginClient, email, password string, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("login client is required")
	}

	p := &Provider{
		client:   client,
		email:    email,
		password: password,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Token returns the cached service token, logging in first when the cache is
// cold.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}
	return p.loginLocked(ctx)
}

// Refresh discards the cached token and logs in again.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	return p.loginLocked(ctx)
}

// Invalidate drops the cached token so the next caller triggers a login.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

// Do invokes fn with a service token and retries exactly once with a fresh
// token when the user module reports the current one expired.
func (p *Provider) Do(ctx context.Context, fn func(token string) error) error {
	tok, err := p.Token(ctx)
	if err != nil {
		return err
	}

	err = fn(tok)
	if err == nil || !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return err
	}

	p.logger.InfoContext(ctx, "service token rejected, refreshing")
	tok, rerr := p.Refresh(ctx)
	if rerr != nil {
		return rerr
	}
	return fn(tok)
}

func (p *Provider) loginLocked(ctx context.Context) (string, error) {
	if p.email == "" || p.password == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "service account credentials not configured")
	}

	env, err := p.client.Login(ctx, p.email, p.password)
	if err != nil {
		return "", err
	}

	tok, _ := env.Data()["token"].(string)
	// The user module hands the token back already prefixed.
	tok = strings.TrimPrefix(tok, "Bearer ")
	if tok == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "user module login returned no token")
	}

	p.token = tok
	return tok, nil
}
