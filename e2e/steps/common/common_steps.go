// Package common holds the shared scenario state plus the generic request
// and assertion steps every feature uses.
package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
)

// defaultSigningKey matches the development key the server falls back to
// when SECRET_KEY is unset.
const defaultSigningKey = "dev-secret-key-change-in-production"

// TestContext carries per-scenario state: the target instance, the bearer
// token attached to requests, and the last response received.
type TestContext struct {
	baseURL    string
	signingKey string
	client     *http.Client

	authToken  string
	lastStatus int
	lastBody   []byte
}

// NewTestContext targets the instance at baseURL. Locally minted tokens are
// signed with E2E_SIGNING_KEY, defaulting to the development key.
func NewTestContext(baseURL string) *TestContext {
	key := os.Getenv("E2E_SIGNING_KEY")
	if key == "" {
		key = defaultSigningKey
	}
	return &TestContext{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: key,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Reset clears scenario state so scenarios stay independent.
func (tc *TestContext) Reset() {
	tc.authToken = ""
	tc.lastStatus = 0
	tc.lastBody = nil
}

// POST sends a JSON body and records the response.
func (tc *TestContext) POST(path string, body interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req, nil)
}

// GET sends a request with optional extra headers and records the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req, headers)
}

func (tc *TestContext) do(req *http.Request, headers map[string]string) error {
	if tc.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.authToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = raw
	return nil
}

// GetResponseField resolves a dot-separated path such as
// "atleta.persona_external" in the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("last response is not a JSON object: %w", err)
	}
	var current interface{} = doc
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response %s", field, tc.lastBody)
		}
	}
	return current, nil
}

// GetLastResponseStatus returns the status code of the last response.
func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }

// GetLastResponseBody returns the raw body of the last response.
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }

// SetAuthToken replaces the bearer token attached to subsequent requests.
// An empty token sends requests unauthenticated.
func (tc *TestContext) SetAuthToken(token string) { tc.authToken = token }

// SignToken mints an HS256 token the backend's validator accepts.
func (tc *TestContext) SignToken(subject, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.signingKey))
}

// RegisterSteps registers background, authentication and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the backend is reachable$`, steps.backendIsReachable)
	ctx.Step(`^I am authenticated as "([^"]*)" with role "([^"]*)"$`, steps.authenticateAs)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)

	ctx.Step(`^the response status is (\d+)$`, steps.responseStatusIs)
	ctx.Step(`^the response field "([^"]*)" is present$`, steps.responseFieldPresent)
	ctx.Step(`^the response field "([^"]*)" equals "([^"]*)"$`, steps.responseFieldEquals)
}

type commonSteps struct {
	tc *TestContext
}

func (s *commonSteps) backendIsReachable(ctx context.Context) error {
	if err := s.tc.GET("/healthz", nil); err != nil {
		return err
	}
	if s.tc.lastStatus != http.StatusOK {
		return fmt.Errorf("healthz returned %d: %s", s.tc.lastStatus, s.tc.lastBody)
	}
	return nil
}

func (s *commonSteps) authenticateAs(ctx context.Context, email, role string) error {
	token, err := s.tc.SignToken(email, role)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	s.tc.SetAuthToken(token)
	return nil
}

func (s *commonSteps) notAuthenticated(ctx context.Context) error {
	s.tc.SetAuthToken("")
	return nil
}

func (s *commonSteps) responseStatusIs(ctx context.Context, expected int) error {
	if s.tc.lastStatus != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.tc.lastStatus, s.tc.lastBody)
	}
	return nil
}

func (s *commonSteps) responseFieldPresent(ctx context.Context, field string) error {
	_, err := s.tc.GetResponseField(field)
	return err
}

func (s *commonSteps) responseFieldEquals(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", value); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", field, expected, got)
	}
	return nil
}
