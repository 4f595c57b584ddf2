package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "http://localhost:8000/"
	DefaultTimeout     = 30 * time.Second
	DefaultSuggestRate = 4.0
)

var (
	// ErrNotLoggedIn is returned by authorized calls when no token is stored.
	// Nothing is sent to the server in that case.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrUnauthorized matches any *APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// TokenSource supplies the bearer token for authorized calls.
type TokenSource interface {
	Token() (token string, ok bool, err error)
}

type ClientOpts struct {
	BaseURL        string
	Tokens         TokenSource
	InstallationID string
	Timeout        time.Duration
	// SuggestRate caps location suggestion lookups per second. Zero uses
	// DefaultSuggestRate, a negative value disables the limit.
	SuggestRate float64
}

// Client calls the booking backend REST API.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	tokens     TokenSource
	suggest    *rate.Limiter
}

func NewClient(opts ClientOpts) *Client {
	c := Client{baseURL: DefaultBaseURL, tokens: opts.Tokens}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch {
	case opts.SuggestRate < 0:
		c.suggest = rate.NewLimiter(rate.Inf, 1)
	case opts.SuggestRate == 0:
		c.suggest = rate.NewLimiter(rate.Limit(DefaultSuggestRate), 1)
	default:
		c.suggest = rate.NewLimiter(rate.Limit(opts.SuggestRate), 1)
	}

	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": "booking-client/1.0",
	}
	if opts.InstallationID != "" {
		headers["X-Installation-Id"] = opts.InstallationID
	}

	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetHeaders(headers).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			r.SetHeader("X-Request-Id", ulid.Make().String())
			return nil
		}).
		OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
			log.Debug().
				Str("method", res.Request.Method).
				Str("url", res.Request.URL).
				Int("status", res.StatusCode()).
				Dur("elapsed", res.Time()).
				Msg("api response")
			return nil
		})

	return &c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetError(&errorBody{})

	if result != nil {
		request.SetResult(result)
	}

	return request
}

// authReq is req with the stored bearer token attached.
func (c *Client) authReq(ctx context.Context, result any) (*resty.Request, error) {
	if c.tokens == nil {
		return nil, ErrNotLoggedIn
	}
	token, ok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return c.req(ctx, result).SetAuthScheme("Bearer").SetAuthToken(token), nil
}

// APIError is a response with status >= 400.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("request failed: %s %s (status: %d)", e.Method, e.URL, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// errorBody is the FastAPI error shape. detail is a string for handled
// errors and a list of objects for validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (b *errorBody) message() string {
	if b == nil || len(b.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(b.Detail)
}

// handleError is a generic error handler for failing response (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		apiErr := &APIError{
			Method:     res.Request.Method,
			URL:        res.Request.URL,
			StatusCode: res.StatusCode(),
		}
		if body, ok := res.Error().(*errorBody); ok {
			apiErr.Detail = body.message()
		}
		return res, apiErr
	}

	return res, nil
}
