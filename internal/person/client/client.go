// Package client talks HTTP to the external user module. Every response is
// normalized into a person.Envelope and every failure into a coded error so
// callers can branch on outcome kind instead of transport details.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
)

const (
	// DefaultTimeout bounds a single round trip to the user module.
	DefaultTimeout = 8 * time.Second

	pathSaveAccount          = "/api/person/save-account"
	pathSearchIdentification = "/api/person/search_identification/"
	pathSearchByRef          = "/api/person/search/"
	pathListAll              = "/api/person/all_filter"
	pathUpdate               = "/api/person/update"
	pathLogin                = "/api/person/login"
)

// Client issues requests against the user module REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("user module base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RegisterAccount creates an account plus person record upstream.
func (c *Client) RegisterAccount(ctx context.Context, token string, payload person.Payload) (*person.Envelope, error) {
	return c.Call(ctx, http.MethodPost, pathSaveAccount, token, payload)
}

// SearchByIdentification looks a person up by national identification number.
func (c *Client) SearchByIdentification(ctx context.Context, token, nationalID string) (*person.Envelope, error) {
	return c.Call(ctx, http.MethodGet, pathSearchIdentification+url.PathEscape(nationalID), token, nil)
}

// SearchByRef looks a person up by external reference.
func (c *Client) SearchByRef(ctx context.Context, token string, ref domain.ExternalRef) (*person.Envelope, error) {
	return c.Call(ctx, http.MethodGet, pathSearchByRef+url.PathEscape(string(ref)), token, nil)
}

// ListAll returns every person record the user module holds. Expensive;
// used only as a last resort when targeted lookups come back empty.
func (c *Client) ListAll(ctx context.Context, token string) (*person.Envelope, error) {
	return c.Call(ctx, http.MethodGet, pathListAll, token, nil)
}

// PushUpdate overwrites upstream person fields.
func (c *Client) PushUpdate(ctx context.Context, token string, payload person.Payload) (*person.Envelope, error) {
	return c.Call(ctx, http.MethodPost, pathUpdate, token, payload)
}

// Login exchanges service account credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*person.Envelope, error) {
	body := person.Payload{"email": email, "password": password}
	return c.Call(ctx, http.MethodPost, pathLogin, "", body)
}

// Call performs one round trip and classifies the outcome. The token is sent
// as-is when it already carries the Bearer prefix, prefixed otherwise, and the
// Authorization header is omitted entirely when the token is empty so the
// caller decides whether anonymity is acceptable.
func (c *Client) Call(ctx context.Context, method, path, token string, payload any) (*person.Envelope, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode user module request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build user module request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", bearerValue(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransportError(err)
		c.logger.WarnContext(ctx, "user module unreachable",
			"method", method,
			"path", path,
			"error", err.Error(),
		)
		return nil, classified
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read user module response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, dErrors.New(dErrors.CodeUnauthorized, upstreamMessage(rawBody, "user module rejected credentials"))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.WarnContext(ctx, "user module rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, dErrors.New(dErrors.CodeValidation, upstreamMessage(rawBody, "user module rejected the request"))
	}

	var decoded map[string]any
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		// A 2xx with an unparseable body means the upstream is in a bad
		// state, not that our request was invalid.
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "user module returned a malformed response")
	}

	return person.NewEnvelope(decoded), nil
}

// maxResponseBytes caps all_filter responses so a runaway upstream cannot
// exhaust memory.
const maxResponseBytes = 8 << 20

func bearerValue(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "user module timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "user module timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not contact user module")
}

// upstreamMessage prefers the structured message field from an error body and
// falls back to the raw text so nothing the upstream said gets lost.
func upstreamMessage(rawBody []byte, fallback string) string {
	var parsed map[string]any
	if err := json.Unmarshal(rawBody, &parsed); err == nil {
		if msg, ok := parsed["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(rawBody)); text != "" {
		return text
	}
	return fallback
}
