// Package hevy implements the upstream workout source against the Hevy API.
package hevy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hevytools/notion-sync/internal/domain"
	"github.com/hevytools/notion-sync/internal/ports"
)

const (
	DefaultBaseURL = "https://api.hevyapp.com"
	// DefaultPageSize is the maximum page size the Hevy API accepts.
	DefaultPageSize = 10

	maxResponseBytes = 1 << 20
)

// RetryPolicy bounds the retries spent on transient upstream failures
// (5xx, 429 and transport errors). Auth rejections are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
	}
}

func (p RetryPolicy) backoffForAttempt(attempt int) time.Duration {
	delay := p.BaseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if delay > p.MaxBackoff {
		return p.MaxBackoff
	}
	return delay
}

type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
	retry    RetryPolicy
	sleeper  ports.Sleeper
}

var _ ports.WorkoutSource = (*Client)(nil)

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		if policy.MaxAttempts >= 1 {
			c.retry = policy
		}
	}
}

func WithSleeper(sleeper ports.Sleeper) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

func NewClient(apiKey string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		pageSize: DefaultPageSize,
		client:   httpClient,
		retry:    DefaultRetryPolicy(),
		sleeper:  ports.SystemSleeper{},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type pageResponse struct {
	Workouts []json.RawMessage `json:"workouts"`
	Total    int               `json:"total"`
}

type workoutHeader struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}

// StreamSince walks workout pages starting at page 1 and hands each page to
// fn with workouts older than since already filtered out. The upstream
// returns workouts in reverse-chronological order, so the walk stops at the
// first record older than since, on an empty page, or once the upstream
// total-count hint is reached.
func (c *Client) StreamSince(ctx context.Context, since time.Time, fn ports.PageFunc) error {
	fetched := 0

	for pageNum := 1; ; pageNum++ {
		resp, err := c.fetchPage(ctx, pageNum)
		if err != nil {
			return fmt.Errorf("fetch workouts page %d: %w", pageNum, err)
		}

		reachedOlder := false
		workouts := make([]domain.Workout, 0, len(resp.Workouts))
		for _, raw := range resp.Workouts {
			workout, err := decodeWorkout(raw)
			if err != nil {
				return fmt.Errorf("decode workout on page %d: %w", pageNum, err)
			}

			if workout.StartTime.Before(since) {
				reachedOlder = true
				break
			}
			workouts = append(workouts, workout)
		}

		fetched += len(resp.Workouts)

		if err := fn(domain.Page{Number: pageNum, Workouts: workouts, Total: resp.Total}); err != nil {
			return err
		}

		if len(resp.Workouts) == 0 || reachedOlder {
			return nil
		}
		if resp.Total > 0 && fetched >= resp.Total {
			return nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, page int) (pageResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.sleeper.Sleep(ctx, c.retryDelay(attempt-1, lastErr))
		}
		if err := ctx.Err(); err != nil {
			return pageResponse{}, err
		}

		resp, retryable, err := c.getPage(ctx, page)
		if err == nil {
			return resp, nil
		}
		if !retryable {
			return pageResponse{}, err
		}
		lastErr = err
	}

	return pageResponse{}, fmt.Errorf("%w: %d attempts exhausted: %v", domain.ErrSourceUnavailable, c.retry.MaxAttempts, lastErr)
}

// retryableError carries the Retry-After hint the upstream sent with a 429.
type retryableError struct {
	err        error
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) retryDelay(retries int, lastErr error) time.Duration {
	delay := c.retry.backoffForAttempt(retries)

	var retryable *retryableError
	if errors.As(lastErr, &retryable) && retryable.retryAfter > delay {
		delay = retryable.retryAfter
		if delay > c.retry.MaxBackoff {
			delay = c.retry.MaxBackoff
		}
	}

	return delay
}

func (c *Client) getPage(ctx context.Context, page int) (pageResponse, bool, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	endpoint := c.baseURL + "/v1/workouts?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pageResponse{}, false, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("api-key", c.apiKey)
	request.Header.Set("Accept", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return pageResponse{}, true, &retryableError{err: fmt.Errorf("perform request: %w", err)}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return pageResponse{}, true, &retryableError{err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case response.StatusCode >= 200 && response.StatusCode <= 299:
		var resp pageResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return pageResponse{}, false, fmt.Errorf("decode page: %w", err)
		}
		return resp, false, nil

	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return pageResponse{}, false, fmt.Errorf("%w: status %d: %s", domain.ErrUnauthorized, response.StatusCode, trimBody(body))

	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
		return pageResponse{}, true, &retryableError{
			err:        fmt.Errorf("status %d: %s", response.StatusCode, trimBody(body)),
			retryAfter: parseRetryAfter(response.Header.Get("Retry-After")),
		}

	default:
		return pageResponse{}, false, fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, response.StatusCode, trimBody(body))
	}
}

func decodeWorkout(raw json.RawMessage) (domain.Workout, error) {
	// Some Hevy endpoints wrap the object as {"workout": {...}}.
	var envelope struct {
		Workout json.RawMessage `json:"workout"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Workout) > 0 {
		raw = envelope.Workout
	}

	var header workoutHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return domain.Workout{}, err
	}
	if header.ID == "" {
		return domain.Workout{}, errors.New("workout is missing an id")
	}

	return domain.Workout{
		ID:        domain.WorkoutID(header.ID),
		Title:     header.Title,
		StartTime: header.StartTime,
		Raw:       raw,
	}, nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func trimBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
