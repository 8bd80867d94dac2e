package vpic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/five82/vpick/internal/catalog"
)

// Ensure Client implements catalog.DataSource at compile time.
var _ catalog.DataSource = (*Client)(nil)

const (
	DefaultBaseURL   = "https://vpic.nhtsa.dot.gov/api"
	defaultUserAgent = "vpick/0.1"
	defaultTimeout   = 10 * time.Second
	defaultRetryWait = 250 * time.Millisecond
)

// Options configure a Client. Zero values select defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second; <= 0 disables throttling
	Burst      int
	MaxRetries int
	RetryWait  time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

// Client talks to the vPIC HTTP API.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
	logger     *zap.SugaredLogger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	retryWait := opts.RetryWait
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:    base,
		http:       httpClient,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: max(opts.MaxRetries, 0),
		retryWait:  retryWait,
		logger:     logger,
	}, nil
}

// FetchMakes retrieves every make.
func (c *Client) FetchMakes(ctx context.Context) ([]catalog.Make, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload envelope[makeRecord]
	if err := c.get(ctx, "makes", []string{"vehicles", "getallmakes"}, &payload); err != nil {
		return nil, err
	}
	return convert(payload.Results, makeRecord.toMake), nil
}

// FetchTypesForMake retrieves the vehicle types of one make.
func (c *Client) FetchTypesForMake(ctx context.Context, makeID int) ([]catalog.VehicleType, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if err := catalog.ValidateKey(makeID); err != nil {
		return nil, err
	}
	var payload envelope[typeRecord]
	path := []string{"vehicles", "GetVehicleTypesForMakeId", strconv.Itoa(makeID)}
	if err := c.get(ctx, "types", path, &payload); err != nil {
		return nil, err
	}
	return convert(payload.Results, typeRecord.toType), nil
}

// FetchModelsForMake retrieves the models of one make.
func (c *Client) FetchModelsForMake(ctx context.Context, makeID int) ([]catalog.VehicleModel, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if err := catalog.ValidateKey(makeID); err != nil {
		return nil, err
	}
	var payload envelope[modelRecord]
	path := []string{"vehicles", "GetModelsForMakeId", strconv.Itoa(makeID)}
	if err := c.get(ctx, "models", path, &payload); err != nil {
		return nil, err
	}
	return convert(payload.Results, func(r modelRecord) catalog.VehicleModel {
		return r.toModel(makeID)
	}), nil
}

// get performs a throttled GET with retries and decodes the body into dest.
// Every failure is returned as a *catalog.NetworkError.
func (c *Client) get(ctx context.Context, op string, path []string, dest any) error {
	reqURL := c.baseURL.JoinPath(path...)
	reqURL.RawQuery = url.Values{"format": {"json"}}.Encode()

	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit: %w", err))
		}
		err := c.doURL(ctx, reqURL, dest)
		if err != nil && attempt <= c.maxRetries && isRetryable(err) {
			c.logger.Debugw("retrying request", "op", op, "attempt", attempt, "error", err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		return &catalog.NetworkError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) doURL(ctx context.Context, reqURL *url.URL, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("execute request: %w", err))
		}
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Path: reqURL.Path, Code: resp.StatusCode}
		if statusErr.Temporary() {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func isRetryable(err error) bool {
	var perm *backoff.PermanentError
	return !errors.As(err, &perm)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
