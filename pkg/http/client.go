package http

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/JunMin765677/wallet-server/internal/log"
)

// DefaultHTTPClientWithRetry http client with retry behavior.
var DefaultHTTPClientWithRetry = NewClient(http.Client{
	Transport: &retryablehttp.RoundTripper{
		Client: retryablehttp.NewClient(),
	},
})

// Client represents default http client that can be used to send requests to third party services
type Client struct {
	base http.Client
}

// NewClient returns new instance of custom client
func NewClient(c http.Client) *Client {
	return &Client{
		base: c,
	}
}

// Post sends a post request to url with the given body and additional headers
func (c *Client) Post(ctx context.Context, url string, req []byte, headers map[string]string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(req))
	if err != nil {
		return nil, err
	}

	addHeaders(ctx, request, headers)

	return executeRequest(ctx, c, request)
}

// Get sends a get request to url with additional headers
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	addHeaders(ctx, request, headers)

	return executeRequest(ctx, c, request)
}

// Put sends a put request to url with the given body and additional headers
func (c *Client) Put(ctx context.Context, url string, req []byte, headers map[string]string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(req))
	if err != nil {
		return nil, err
	}

	addHeaders(ctx, request, headers)

	return executeRequest(ctx, c, request)
}

// StatusError is returned when the remote service answers with a non 2xx status.
// It keeps the status code and the raw body so callers can tell pending
// conditions apart from hard upstream failures.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error satisfies the error interface
func (e *StatusError) Error() string {
	return errors.Errorf("http request failed with status %v, error: %v", e.StatusCode, string(e.Body)).Error()
}

// addHeaders adds the request id and the given extra headers to the request
func addHeaders(ctx context.Context, r *http.Request, headers map[string]string) {
	requestID := middleware.GetReqID(ctx)

	r.Header.Add("Content-Type", "application/json")
	r.Header.Add(middleware.RequestIDHeader, requestID)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
}

// executeRequest contains common logic of request execution
func executeRequest(ctx context.Context, c *Client, r *http.Request) ([]byte, error) {
	resp, err := c.base.Do(r)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error(ctx, "can not close body", "err", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
