package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/adamancini/profup/internal/config"
	"github.com/adamancini/profup/internal/types"
)

// maxErrorBody bounds how much of a non-2xx body ends up in a TransportError.
const maxErrorBody = 64 * 1024

// Requestor builds service URLs and issues requests against them.
type Requestor struct {
	baseURL   string
	client    *http.Client
	userAgent string
	logger    *log.Logger
}

// RequestorOption configures a Requestor during construction.
type RequestorOption func(*Requestor)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) RequestorOption {
	return func(r *Requestor) {
		r.client = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) RequestorOption {
	return func(r *Requestor) {
		r.userAgent = ua
	}
}

// WithRequestorLogger sets the logger used for request tracing.
func WithRequestorLogger(l *log.Logger) RequestorOption {
	return func(r *Requestor) {
		r.logger = l
	}
}

// NewRequestor creates a Requestor for a base URL template containing the
// {service} placeholder, e.g. "http://host/index.php/{service}".
func NewRequestor(baseURL string, opts ...RequestorOption) (*Requestor, error) {
	if !strings.Contains(baseURL, config.ServicePlaceholder) {
		return nil, fmt.Errorf("base URL %q has no %s placeholder", baseURL, config.ServicePlaceholder)
	}

	r := &Requestor{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RequestURL interpolates service into the base URL and appends params as
// query pairs. Keys are a fixed internal vocabulary and are written verbatim;
// every value is query-escaped. Keys are sorted so URLs are deterministic.
func (r *Requestor) RequestURL(service types.ServiceName, params Params) (string, error) {
	if err := service.Validate(); err != nil {
		return "", err
	}

	base := strings.ReplaceAll(r.baseURL, config.ServicePlaceholder, service.String())
	if len(params) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(params[k]))
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(pairs, "&"), nil
}

// Send issues a GET for rawURL. Any failure to obtain a 2xx response is a
// *TransportError. On success the caller owns the returned Response.
func (r *Requestor) Send(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("malformed URL: %w", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("malformed URL: unsupported scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	r.logger.Debug("sending request", "url", rawURL)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, &TransportError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	r.logger.Debug("response received", "status", resp.StatusCode, "content_length", resp.ContentLength)
	return NewResponse(resp.Body, resp.ContentLength), nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
