// Package fetch provides the shared HTTP client used to talk to remote
// Maven repositories.
//
// The client layers response caching, retry with exponential backoff, and
// observability hook emission over net/http. All repository traffic in
// caravel (POM fetches, maven-metadata.xml lookups, existence probes,
// artifact downloads) goes through one [Client], which shares a single
// connection pool and is safe for concurrent use.
package fetch

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caravel-cli/caravel/pkg/cache"
	"github.com/caravel-cli/caravel/pkg/observability"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the repository answers 404 for a path.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a timeout suited to repository
// requests. Downloads use [Client.Stream], which strips the timeout in
// favor of context cancellation.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Client performs HTTP requests against Maven repositories with caching
// and automatic retries. All methods are safe for concurrent use.
type Client struct {
	http     *http.Client
	streamer *http.Client
	cache    cache.Cache
	ttl      time.Duration
}

// NewClient creates a Client backed by the given response cache.
// Pass a [cache.NullCache] to disable caching. The ttl applies to every
// cached response; 0 means entries never expire.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:     NewHTTPClient(),
		streamer: &http.Client{},
		cache:    c,
		ttl:      ttl,
	}
}

// GetBytes performs an HTTP GET and returns the response body, consulting
// the response cache first. If refresh is true the cache is bypassed.
// A 404 returns [ErrNotFound]; 5xx and socket errors are retried and
// surface as [ErrNetwork] once attempts are exhausted. Negative results
// are not cached, so transient failures do not stick.
func (c *Client) GetBytes(ctx context.Context, url string, refresh bool) ([]byte, error) {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, url); ok {
			return data, nil
		}
	}

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, url)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(body)
		if err != nil {
			return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, url, data, c.ttl)
	return data, nil
}

// GetXML performs a GET and decodes the response body as XML into v.
func (c *Client) GetXML(ctx context.Context, url string, refresh bool, v any) error {
	data, err := c.GetBytes(ctx, url, refresh)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

// Exists probes url with a HEAD request and reports whether the resource
// is present. Repositories that reject HEAD (405, 501) are probed again
// with GET. A 404 reports false with no error; other failures report
// false with the underlying error.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	status, err := c.probe(ctx, http.MethodHead, url)
	if err != nil {
		return false, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = c.probe(ctx, http.MethodGet, url)
		if err != nil {
			return false, err
		}
	}
	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: status %d", ErrNetwork, status)
	}
}

// Stream performs an uncached GET and returns the response body for
// streaming, along with the declared content length (-1 if unknown).
// The caller must close the returned reader. Streams have no client-side
// timeout; cancel ctx to abort.
func (c *Client) Stream(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, url)
	start := time.Now()
	resp, err := c.streamer.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, url, err)
		return nil, 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	observability.HTTP().OnResponse(ctx, http.MethodGet, url, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// do issues a single request and returns the body on 2xx.
// Socket errors and 5xx responses come back wrapped as retryable.
func (c *Client) do(ctx context.Context, method, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}

	observability.HTTP().OnRequest(ctx, method, url)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, url, err)
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	observability.HTTP().OnResponse(ctx, method, url, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// probe issues a request and returns only the status code, draining the body.
func (c *Client) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}

	observability.HTTP().OnRequest(ctx, method, url)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, url, err)
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	observability.HTTP().OnResponse(ctx, method, url, resp.StatusCode, time.Since(start))

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
