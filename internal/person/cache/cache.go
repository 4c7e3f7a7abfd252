// Package cache keeps short-lived copies of person lookups so listing
// endpoints do not hammer the user module with one call per record. Two
// layers: a request-scoped map and an optional shared store with a TTL.
// Cache trouble is always treated as a miss, never as a failure.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
)

// Fetcher is the slice of the user module client this decorator wraps.
type Fetcher interface {
	SearchByRef(ctx context.Context, token string, ref domain.ExternalRef) (*person.Envelope, error)
}

// SharedStore is the cross-request layer. Implementations report a miss with
// (nil, nil).
type SharedStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const keyPrefix = "person:snapshot:"

// CachingFetcher decorates a Fetcher with both cache layers. Snapshots are
// keyed by external reference alone: a person's upstream record does not
// depend on who is asking.
type CachingFetcher struct {
	next   Fetcher
	shared SharedStore
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*CachingFetcher)

func WithSharedStore(store SharedStore, ttl time.Duration) Option {
	return func(c *CachingFetcher) {
		if store != nil && ttl > 0 {
			c.shared = store
			c.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *CachingFetcher) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCachingFetcher(next Fetcher, opts ...Option) (*CachingFetcher, error) {
	if next == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	c := &CachingFetcher{
		next:   next,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *CachingFetcher) SearchByRef(ctx context.Context, token string, ref domain.ExternalRef) (*person.Envelope, error) {
	scope := ScopeFrom(ctx)
	if scope != nil {
		if env, ok := scope.get(ref); ok {
			return env, nil
		}
	}

	if c.shared != nil {
		if env := c.fromShared(ctx, ref); env != nil {
			if scope != nil {
				scope.put(ref, env)
			}
			return env, nil
		}
	}

	env, err := c.next.SearchByRef(ctx, token, ref)
	if err != nil {
		return nil, err
	}

	if scope != nil {
		scope.put(ref, env)
	}
	c.toShared(ctx, ref, env)
	return env, nil
}

func (c *CachingFetcher) fromShared(ctx context.Context, ref domain.ExternalRef) *person.Envelope {
	raw, err := c.shared.Get(ctx, keyPrefix+string(ref))
	if err != nil {
		c.logger.DebugContext(ctx, "snapshot cache read failed", "error", err.Error())
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.logger.DebugContext(ctx, "snapshot cache entry corrupt", "reference", string(ref))
		return nil
	}
	return person.NewEnvelope(body)
}

func (c *CachingFetcher) toShared(ctx context.Context, ref domain.ExternalRef, env *person.Envelope) {
	if c.shared == nil || env == nil {
		return
	}

	raw, err := json.Marshal(env.Body)
	if err != nil {
		return
	}
	if err := c.shared.Set(ctx, keyPrefix+string(ref), raw, c.ttl); err != nil {
		c.logger.DebugContext(ctx, "snapshot cache write failed", "error", err.Error())
	}
}

// Scope is the per-request layer. One instance lives for one request and is
// dropped with it, so entries can never outlive the response they served.
type Scope struct {
	mu      sync.Mutex
	entries map[domain.ExternalRef]*person.Envelope
}

func (s *Scope) get(ref domain.ExternalRef) (*person.Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env, ok := s.entries[ref]
	return env, ok
}

func (s *Scope) put(ref domain.ExternalRef, env *person.Envelope) {
	s.mu.Lock()
	s.entries[ref] = env
	s.mu.Unlock()
}

type scopeCtxKey struct{}

// WithScope attaches a fresh request-scoped cache to the context.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, &Scope{
		entries: make(map[domain.ExternalRef]*person.Envelope),
	})
}

// ScopeFrom returns the request-scoped cache, or nil when none was attached.
func ScopeFrom(ctx context.Context) *Scope {
	scope, _ := ctx.Value(scopeCtxKey{}).(*Scope)
	return scope
}

// Middleware attaches a request-scoped cache to every request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context())))
	})
}
