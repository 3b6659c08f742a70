// Package client is a Go SDK for the founder-coach API.
//
// Nothing the client computes is authoritative. The server re-checks every
// gated operation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"founder-coach-api/pkg/entitlements"
)

const defaultTimeout = 30 * time.Second

// Client calls the HTTP API with a user's access token.
type Client struct {
	baseURL    string
	token      string
	timezone   string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimezone sends an IANA zone name so daily limits reset at local midnight.
func WithTimezone(name string) Option {
	return func(c *Client) { c.timezone = name }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response. Denials carry a plan error code and the
// paywall copy.
type APIError struct {
	StatusCode int
	Message    string                     `json:"error"`
	Code       entitlements.PlanErrorCode `json:"code,omitempty"`
	Copy       *entitlements.ErrorCopy    `json:"copy,omitempty"`
	Usage      *Usage                     `json:"usage,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsDenial reports whether the error is a plan denial.
func (e *APIError) IsDenial() bool {
	return e.StatusCode == http.StatusForbidden
}

// Subscription is the restricted subscription view.
type Subscription struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// Entitlements is the caller's effective plan as resolved by the server.
type Entitlements struct {
	Plan         entitlements.Plan            `json:"plan"`
	Status       string                       `json:"status"`
	IsPaid       bool                         `json:"is_paid"`
	IsPro        bool                         `json:"is_pro"`
	IsFounder    bool                         `json:"is_founder"`
	TrialExpired bool                         `json:"trial_expired"`
	Definition   entitlements.PlanDisplayInfo `json:"definition"`
	Modes        []entitlements.IdeaMode      `json:"modes"`
}

// Usage is one resource's limit check.
type Usage struct {
	Resource  string                     `json:"resource"`
	Allowed   bool                       `json:"allowed"`
	Used      int64                      `json:"used"`
	Limit     entitlements.Limit         `json:"limit"`
	Remaining entitlements.Limit         `json:"remaining"`
	Reason    string                     `json:"reason,omitempty"`
	Code      entitlements.PlanErrorCode `json:"code,omitempty"`
}

type UsageSummary struct {
	Plan  entitlements.Plan `json:"plan"`
	Usage []Usage           `json:"usage"`
}

// Plans lists the catalog. No token is required.
func (c *Client) Plans(ctx context.Context) ([]entitlements.PlanDisplayInfo, error) {
	var out []entitlements.PlanDisplayInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Subscription reads the restricted subscription view.
func (c *Client) Subscription(ctx context.Context) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodGet, "/api/v1/subscription", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Entitlements(ctx context.Context) (*Entitlements, error) {
	var out Entitlements
	if err := c.do(ctx, http.MethodGet, "/api/v1/entitlements", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshSubscription asks the server to drop its cached plan.
func (c *Client) RefreshSubscription(ctx context.Context) (*Entitlements, error) {
	var out Entitlements
	if err := c.do(ctx, http.MethodPost, "/api/v1/subscription/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Usage(ctx context.Context) (*UsageSummary, error) {
	var out UsageSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/usage", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckFeature asks the server to validate a feature. A denial is returned
// as an *APIError.
func (c *Client) CheckFeature(ctx context.Context, feature string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/features/"+url.PathEscape(feature)+"/check", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.timezone != "" {
		req.Header.Set("X-Timezone", c.timezone)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
