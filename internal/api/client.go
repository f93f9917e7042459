// Package api is the client for the research assistant backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

// Paper is one entry of the paper listing.
type Paper struct {
	ID          string `json:"paper_id"`
	Filename    string `json:"filename"`
	ChunksCount int    `json:"chunks_count"`
}

// BreakerSettings tunes the circuit breaker in front of the backend.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	Breaker    BreakerSettings
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches concept graphs and paper listings. Each call is a single
// attempt; after repeated failures the breaker opens and calls fail fast
// until it half-opens again.
type Client struct {
	base string
	http *http.Client
	cb   *gobreaker.CircuitBreaker
	log  *zap.Logger
}

// New returns a client for the backend at baseURL.
func New(baseURL string, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	threshold := opts.Breaker.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}
	log := opts.Logger.Named("api")

	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: hc,
		log:  log,
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: opts.Breaker.MaxRequests,
		Interval:    opts.Breaker.Interval,
		Timeout:     opts.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: healthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})
	return c
}

// BaseURL returns the backend URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Graph fetches the concept graph of a paper. Every failure, including an
// open breaker, wraps graph.ErrFetchFailed.
func (c *Client) Graph(ctx context.Context, paperID string) (*graph.Model, error) {
	var m *graph.Model
	err := c.get(ctx, "/api/graph/"+url.PathEscape(paperID), func(body io.Reader) error {
		var err error
		m, err = graph.Decode(body, paperID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("graph %q: %w", paperID, err)
	}
	return m, nil
}

// Papers lists the papers known to the backend.
func (c *Client) Papers(ctx context.Context) ([]Paper, error) {
	var papers []Paper
	err := c.get(ctx, "/api/papers/list", func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(&papers); err != nil {
			return fmt.Errorf("decode papers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("papers: %w", err)
	}
	return papers, nil
}

func (c *Client) get(ctx context.Context, path string, decode func(io.Reader) error) error {
	start := time.Now()
	_, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &callerError{err: err}
			}
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		}
		return nil, decode(resp.Body)
	})

	if err != nil {
		c.log.Debug("request failed", zap.String("path", path), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return fmt.Errorf("%w: %w", graph.ErrFetchFailed, err)
	}
	c.log.Debug("request", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// healthy reports whether err leaves the backend's health untouched: the
// caller gave up, or the backend answered with a client error such as an
// unknown paper.
func healthy(err error) bool {
	if err == nil {
		return true
	}
	var ce *callerError
	if errors.As(err, &ce) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code < http.StatusInternalServerError
}

// callerError is a request abandoned by its own context.
type callerError struct {
	err error
}

func (e *callerError) Error() string { return e.err.Error() }
func (e *callerError) Unwrap() error { return e.err }

// StatusError is a non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}
