package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
	"github.com/morikuni/failure/v2"
)

// DefaultTimeout bounds every request made by a Client
const DefaultTimeout = 60 * time.Second

// DefaultHeader identifies the client generically
var DefaultHeader = http.Header{
	"User-Agent": []string{"Mozilla/5.0"},
}

// Request names a single GET
type Request struct {
	// Name labels the fetch in logs and metrics, e.g. "fpl.fixtures"
	Name string

	URL string

	// Header overrides DefaultHeader per key
	Header http.Header
}

// Observer receives the outcome of every fetch made by a Client
type Observer interface {
	ObserveFetch(name string, r Result, elapsed time.Duration)
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithObserver registers o to receive fetch outcomes
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// Client performs blocking JSON GETs and folds every failure into a Result
type Client struct {
	timeout  time.Duration
	client   *http.Client
	observer Observer
}

// New creates a Client with DefaultTimeout and the logging transport
func New(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{
			Timeout:   c.timeout,
			Transport: log.Transport(),
		}
	}
	return c
}

// Get fetches req.URL and parses the body as JSON
func (c *Client) Get(ctx context.Context, req Request) Result {
	start := time.Now()
	r := c.get(ctx, req)
	if c.observer != nil {
		c.observer.ObserveFetch(req.Name, r, time.Since(start))
	}
	if r.Err != nil {
		log.Debug("Fetch failed", "name", req.Name, "code", Classify(r.Err), "error", Message(r.Err))
	}
	return r
}

func (c *Client) get(ctx context.Context, req Request) Result {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Failed(failure.New(ErrInvalidRequest,
			failure.Message(err.Error()),
			failure.Context{"name": req.Name},
		))
	}
	for k, vs := range DefaultHeader {
		httpReq.Header[k] = vs
	}
	for k, vs := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = vs
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Failed(failure.New(ErrTransport,
			failure.Message(transportMessage(err)),
			failure.Context{"name": req.Name},
		))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failed(failure.New(ErrHTTPStatus,
			failure.Message(fmt.Sprintf("HTTP Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))),
			failure.Context{
				"name":   req.Name,
				"status": resp.Status,
			},
		))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(failure.New(ErrTransport,
			failure.Message(transportMessage(err)),
			failure.Context{"name": req.Name},
		))
	}

	v, err := decode(body)
	if err != nil {
		return Failed(failure.New(ErrDecode,
			failure.Message(err.Error()),
			failure.Context{"name": req.Name},
		))
	}
	return OK(v)
}

// transportMessage drops the *url.Error wrapper so the request URL, which may
// carry an API key, never reaches the snapshot
func transportMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}

func decode(body []byte) (json.RawMessage, error) {
	var v json.RawMessage
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return Unescape(v)
}

// ReadLocalJSON reads a JSON document from path. A missing file, invalid JSON
// or a literal null are all reported as ErrLocalFile.
func ReadLocalJSON(path string) (json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.New(ErrLocalFile,
			failure.Message(err.Error()),
			failure.Context{"path": path},
		)
	}
	v, err := decode(b)
	if err != nil {
		return nil, failure.New(ErrLocalFile,
			failure.Message(err.Error()),
			failure.Context{"path": path},
		)
	}
	if OK(v).IsNull() {
		return nil, failure.New(ErrLocalFile,
			failure.Message("document is null"),
			failure.Context{"path": path},
		)
	}
	return v, nil
}
