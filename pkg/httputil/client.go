package httputil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jcolasacco/folio/pkg/errors"
)

const httpTimeout = 10 * time.Second

// Client performs GET requests against remote media hosts.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with default headers applied to every request.
// Pass nil if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		headers: headers,
	}
}

// WithHTTPClient returns a copy of c that sends requests through hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc, headers: c.headers}
}

// Open performs a GET and returns the response body. The caller must close
// it. Transient failures are retried.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}

	var body io.ReadCloser
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.do(ctx, url)
		body = b
		return err
	})
	if err != nil {
		return nil, unwrapRetryable(err)
	}
	return body, nil
}

// Fetch reads at most limit bytes of the resource at url. A limit <= 0
// reads the whole body.
func (c *Client) Fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if limit > 0 {
		r = io.LimitReader(body, limit)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)
	}
	return buf.Bytes(), nil
}

func (c *Client) do(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "get %s", url)
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "get %s", url)}
	}

	if err := checkStatus(url, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK || code == http.StatusPartialContent:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", url)
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "get %s: status %d", url, code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "get %s: status %d", url, code)
	}
}

func unwrapRetryable(err error) error {
	if re, ok := err.(*RetryableError); ok {
		return re.Err
	}
	return err
}
