// Package client is a typed HTTP client for the valuation API.
package client

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultPollInterval = 200 * time.Millisecond
)

// ErrUnexpectedResponse is returned when the server answers with an
// unexpected status and no decodable error body.
var ErrUnexpectedResponse = errors.New("unexpected response")

// APIError is a non-2xx answer carrying the server's error body.
type APIError struct {
	Status     int                `json:"-"`
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []limits.Violation `json:"violations,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("houseprice: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to a running houseprice server.
type Client struct {
	rest *resty.Client
}

// Option configures the Client.
type Option func(*resty.Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *resty.Client) {
		if d > 0 {
			r.SetTimeout(d)
		}
	}
}

// WithRetries retries requests that hit backpressure or a server error.
// Batch submissions stay idempotent when they carry a request id.
func WithRetries(count int, wait time.Duration) Option {
	return func(r *resty.Client) {
		r.SetRetryCount(count).
			SetRetryWaitTime(wait).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
			})
	}
}

// WithRequestID sends a fixed X-Request-ID on every call.
func WithRequestID(id string) Option {
	return func(r *resty.Client) {
		if id != "" {
			r.SetHeader("X-Request-ID", id)
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(r)
	}
	return &Client{rest: r}, nil
}

// Predict prices one house.
func (c *Client) Predict(ctx context.Context, f pricing.Features) (types.Prediction, error) {
	var out types.Prediction
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(f).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/predict")
	if err := check(resp, err, http.StatusOK); err != nil {
		return types.Prediction{}, err
	}
	return out, nil
}

// Report fetches the text report and the file name the server suggests.
func (c *Client) Report(ctx context.Context, f pricing.Features) (report, filename string, err error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(f).
		SetError(&APIError{}).
		Post("/report")
	if err := check(resp, err, http.StatusOK); err != nil {
		return "", "", err
	}
	if _, params, perr := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); perr == nil {
		filename = params["filename"]
	}
	return resp.String(), filename, nil
}

// Importance fetches the attribute ranking.
func (c *Client) Importance(ctx context.Context) ([]types.RankedImportance, error) {
	var out []types.RankedImportance
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/importance")
	if err := check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// Model fetches the coefficients and accepted ranges.
func (c *Client) Model(ctx context.Context) (types.ModelInfo, error) {
	var out types.ModelInfo
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/model")
	if err := check(resp, err, http.StatusOK); err != nil {
		return types.ModelInfo{}, err
	}
	return out, nil
}

// SubmitValuation queues a batch. A duplicate request id is not an error;
// the acknowledgement reports it.
func (c *Client) SubmitValuation(ctx context.Context, requestID string, items []pricing.Features) (types.ValuationAck, error) {
	var out types.ValuationAck
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(types.ValuationRequest{RequestID: requestID, Items: items}).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/valuations")
	if err := check(resp, err, http.StatusAccepted, http.StatusOK); err != nil {
		return types.ValuationAck{}, err
	}
	return out, nil
}

// Valuation fetches the current state of a batch.
func (c *Client) Valuation(ctx context.Context, jobID string) (types.Valuation, error) {
	var out types.Valuation
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("id", jobID).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/valuations/{id}")
	if err := check(resp, err, http.StatusOK); err != nil {
		return types.Valuation{}, err
	}
	return out, nil
}

// WaitValuation polls until the batch is done or ctx ends. A non-positive
// interval uses the default.
func (c *Client) WaitValuation(ctx context.Context, jobID string, interval time.Duration) (types.Valuation, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, err := c.Valuation(ctx, jobID)
		if err != nil {
			return types.Valuation{}, err
		}
		if v.Status == types.JobDone {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case <-ticker.C:
		}
	}
}

func check(resp *resty.Response, err error, want ...int) error {
	if err != nil {
		return fmt.Errorf("houseprice: request failed: %w", err)
	}
	for _, code := range want {
		if resp.StatusCode() == code {
			return nil
		}
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Code != "" {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return fmt.Errorf("%w: status %d, body: %s", ErrUnexpectedResponse, resp.StatusCode(), resp.String())
}
