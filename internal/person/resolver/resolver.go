// Package resolver turns raw identity input into a canonical external
// reference. The user module's create endpoint misreports already existing
// people often enough that a single call cannot be trusted, so resolution
// walks an ordered fallback chain and stops at the first step that yields a
// usable identifier.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/privacy"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/requestcontext"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/metrics"
)

// Client is the slice of the user module client the resolver needs.
type Client interface {
	RegisterAccount(ctx context.Context, token string, payload person.Payload) (*person.Envelope, error)
	SearchByIdentification(ctx context.Context, token, nationalID string) (*person.Envelope, error)
	ListAll(ctx context.Context, token string) (*person.Envelope, error)
}

// Mode selects how resolution behaves when the chain is exhausted.
type Mode int

const (
	// Strict fails the caller when no identifier can be obtained. Role
	// registrars use it: without a real reference the link invariant
	// cannot be established.
	Strict Mode = iota
	// BestEffort degrades to a synthetic reference instead of failing.
	// The enrollment path uses it so athletes stay registrable while the
	// user module is down.
	BestEffort
)

func (m Mode) String() string {
	if m == BestEffort {
		return "best_effort"
	}
	return "strict"
}

const (
	outcomeRegistered = "registered"
	outcomeSearch     = "search"
	outcomeScan       = "scan"
	outcomeSynthetic  = "synthetic"
	outcomeFailed     = "failed"
)

type Resolver struct {
	client  Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func New(client Client, opts ...Option) (*Resolver, error) {
	if client == nil {
		return nil, fmt.Errorf("user module client is required")
	}

	r := &Resolver{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolve obtains an external reference for the identity described by
// payload. The chain: register upstream, then search by identification, then
// scan the full listing. A rejected token stops the chain in both modes.
// Connectivity failures on the first step skip the remaining lookups since
// they would hit the same dead service.
func (r *Resolver) Resolve(ctx context.Context, token string, payload person.Payload, mode Mode) (domain.ExternalRef, error) {
	start := time.Now()
	outcome := outcomeFailed
	defer func() {
		if r.metrics != nil {
			r.metrics.ObserveResolution(mode.String(), outcome, start)
		}
	}()

	identification, _ := person.FirstPresent(payload, person.IdentificationKeys)

	var connErr error

	ref, registerErr := r.register(ctx, token, payload)
	if registerErr == nil && ref != "" {
		outcome = outcomeRegistered
		return ref, nil
	}

	if registerErr != nil {
		switch {
		case dErrors.HasCode(registerErr, dErrors.CodeUnauthorized):
			return "", registerErr
		case isConnectivity(registerErr):
			connErr = registerErr
			if mode == BestEffort {
				outcome = outcomeSynthetic
				return r.synthetic(ctx, connErr, identification), nil
			}
			return "", registerErr
		default:
			r.logger.InfoContext(ctx, "identity registration rejected, trying recovery lookups",
				"identification", privacy.MaskNationalID(identification),
				"error", registerErr.Error(),
			)
		}
	}

	if identification != "" {
		ref, err := r.searchByIdentification(ctx, token, identification)
		switch {
		case err != nil:
			if isConnectivity(err) {
				connErr = err
			}
			r.logger.DebugContext(ctx, "identification lookup failed", "error", err.Error())
		case ref != "":
			outcome = outcomeSearch
			r.logger.InfoContext(ctx, "identity recovered via identification lookup",
				"identification", privacy.MaskNationalID(identification))
			return ref, nil
		}

		ref, err = r.scanAll(ctx, token, identification)
		switch {
		case err != nil:
			if isConnectivity(err) {
				connErr = err
			}
			r.logger.DebugContext(ctx, "full listing scan failed", "error", err.Error())
		case ref != "":
			outcome = outcomeScan
			r.logger.InfoContext(ctx, "identity recovered via full listing scan",
				"identification", privacy.MaskNationalID(identification))
			return ref, nil
		}
	}

	if mode == BestEffort {
		outcome = outcomeSynthetic
		return r.synthetic(ctx, connErr, identification), nil
	}

	if registerErr != nil && !isAlreadyRegistered(registerErr) {
		return "", registerErr
	}
	return "", dErrors.New(dErrors.CodeValidation, "user module did not return an identifier")
}

func (r *Resolver) register(ctx context.Context, token string, payload person.Payload) (domain.ExternalRef, error) {
	env, err := r.client.RegisterAccount(ctx, token, payload)
	if err != nil {
		return "", err
	}
	ref, _ := person.ExtractRefFromEnvelope(env)
	return ref, nil
}

func (r *Resolver) searchByIdentification(ctx context.Context, token, identification string) (domain.ExternalRef, error) {
	env, err := r.client.SearchByIdentification(ctx, token, identification)
	if err != nil {
		return "", err
	}
	ref, _ := person.ExtractRefFromEnvelope(env)
	return ref, nil
}

// scanAll walks the full person listing looking for an exact identification
// match. Last resort before giving up on a real reference.
func (r *Resolver) scanAll(ctx context.Context, token, identification string) (domain.ExternalRef, error) {
	env, err := r.client.ListAll(ctx, token)
	if err != nil {
		return "", err
	}
	for _, entry := range env.DataList() {
		if entry.Identification() != identification {
			continue
		}
		if ref, ok := person.ExtractRef(entry); ok {
			return ref, nil
		}
	}
	return "", nil
}

func (r *Resolver) synthetic(ctx context.Context, connErr error, identification string) domain.ExternalRef {
	at := requestcontext.Now(ctx)

	var ref domain.ExternalRef
	switch {
	case connErr != nil && dErrors.HasCode(connErr, dErrors.CodeTimeout):
		ref = domain.SyntheticTimeoutRef(at)
	case connErr != nil:
		ref = domain.SyntheticOfflineRef(at)
	default:
		ref = domain.SyntheticLocalRef(domain.NationalID(identification), at)
	}

	r.logger.WarnContext(ctx, "user module degraded, continuing with synthetic reference",
		"reference", string(ref),
		"identification", privacy.MaskNationalID(identification),
	)
	return ref
}

func isConnectivity(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeTimeout)
}

// isAlreadyRegistered reports whether an upstream rejection names a duplicate
// identification. The user module signals this condition only through message
// text, in either language, so the known phrasings are matched directly.
func isAlreadyRegistered(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "ya esta registrada") ||
		strings.Contains(msg, "ya está registrada") ||
		strings.Contains(msg, "already registered")
}
