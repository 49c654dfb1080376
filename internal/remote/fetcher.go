// Package remote performs cached HTTP requests against annotation services.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Cache stores raw response payloads by source and request key.
type Cache interface {
	Get(ctx context.Context, source, key string) ([]byte, bool, error)
	Put(ctx context.Context, source, key string, payload []byte) error
}

// NotFoundError reports a 404 response.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.URL)
}

// Fetcher issues HTTP requests and optionally caches successful responses.
type Fetcher struct {
	httpClient *http.Client
	cache      Cache
	logger     *zap.Logger
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
}

// SetCache enables response caching.
func (f *Fetcher) SetCache(c Cache) {
	f.cache = c
}

// SetLogger sets the logger for request and cache messages.
func (f *Fetcher) SetLogger(l *zap.Logger) {
	f.logger = l
}

// SetHTTPClient replaces the HTTP client.
func (f *Fetcher) SetHTTPClient(c *http.Client) {
	f.httpClient = c
}

// Do returns the body of a successful response to the request built by
// newRequest, consulting the cache first when one is set.
func (f *Fetcher) Do(ctx context.Context, source, key string, newRequest func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if f.cache != nil {
		payload, ok, err := f.cache.Get(ctx, source, key)
		if err != nil {
			f.logger.Warn("cache lookup failed", zap.String("source", source), zap.String("key", key), zap.Error(err))
		} else if ok {
			f.logger.Debug("cache hit", zap.String("source", source), zap.String("key", key))
			return payload, nil
		}
	}

	req, err := newRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", source, err)
	}

	f.logger.Debug("request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{URL: req.URL.String()}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s error %d: %s", source, resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", source, err)
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, source, key, payload); err != nil {
			f.logger.Warn("cache store failed", zap.String("source", source), zap.String("key", key), zap.Error(err))
		}
	}
	return payload, nil
}
