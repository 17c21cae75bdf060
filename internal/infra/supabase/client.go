// Package supabase provides a client for Supabase (PostgREST + Auth).
// It is the data backend for every LexFlow store.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/resilience"
	"github.com/lexflow/lexflow-api-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

var (
	_ port.DirectoryStore = (*Client)(nil)
	_ port.RecordStore    = (*Client)(nil)
	_ port.AuditStore     = (*Client)(nil)
	_ port.FirmStore      = (*Client)(nil)
	_ port.BackupStore    = (*Client)(nil)
	_ port.SeedStore      = (*Client)(nil)
	_ port.AuthAdmin      = (*Client)(nil)
)

// Client wraps HTTP calls to the Supabase PostgREST and Auth APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// APIError is a non-2xx answer from PostgREST or Auth.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s", e.Status, e.Message)
}

// StatusCode implements resilience.StatusCoder.
func (e *APIError) StatusCode() int { return e.Status }

// parseAPIError extracts the human message from PostgREST
// ({message, code, details, hint}) or Auth ({msg} / {error_description}) bodies.
func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
		Code             any    `json:"code"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
			if m != "" {
				apiErr.Message = m
				break
			}
		}
		if payload.Code != nil {
			apiErr.Code = fmt.Sprint(payload.Code)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// bearer picks the token a request runs under. Only elevated contexts use
// the service role. A caller's token is forwarded as is; with no caller the
// anon key is sent, so row-level security still applies.
func (c *Client) bearer(ctx context.Context) string {
	if domain.IsElevated(ctx) {
		return c.serviceRoleKey
	}
	if p := domain.PrincipalFrom(ctx); p != nil && p.AccessToken != "" {
		return p.AccessToken
	}
	return c.apiKey
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request, prefer string) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.bearer(ctx)))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
}

// doRequest executes an authenticated GET-like request to PostgREST.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	body, _, err := c.send(ctx, method, c.restURL(path), nil, "return=representation")
	return body, err
}

// doCount executes a GET asking PostgREST for the exact row count, which
// comes back in the Content-Range header ("0-14/57").
func (c *Client) doCount(ctx context.Context, path string) ([]byte, int, error) {
	body, header, err := c.send(ctx, http.MethodGet, c.restURL(path), nil, "count=exact")
	if err != nil {
		return nil, 0, err
	}
	return body, parseContentRangeTotal(header.Get("Content-Range")), nil
}

func (c *Client) restURL(path string) string {
	return fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
}

func parseContentRangeTotal(v string) int {
	i := strings.LastIndex(v, "/")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// read runs a query through the breaker with retries.
func (c *Client) read(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return c.wrapErr(ctx, service, err)
}

// write runs a mutation through the breaker. Mutations are never retried.
func (c *Client) write(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return c.wrapErr(ctx, service, err)
}

func (c *Client) wrapErr(ctx context.Context, service string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *domain.ErrNotFound
	if errors.As(err, &notFound) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: service}
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
		return &domain.ErrTimeout{Operation: service}
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &domain.ErrExternalService{Service: service, Status: apiErr.Status, Message: apiErr.Message, Err: err}
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

// Ping checks that PostgREST answers with the service role.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	ctx = domain.Elevated(ctx)
	return c.read(ctx, "supabase/ping", func() error {
		_, err := c.doRequest(ctx, http.MethodGet, From("workspaces").Select("id").Limit(1).String())
		return err
	})
}

func decodeRows[T any](body []byte, what string) ([]T, error) {
	rows := []T{}
	if len(body) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return rows, nil
}

func firstRow[T any](body []byte, what string) (*T, error) {
	rows, err := decodeRows[T](body, what)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func decodeObject[T any](body []byte, what string) (*T, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return &v, nil
}
