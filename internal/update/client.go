// Package update talks to the device-profile update service: it checks for
// new profile bundles, fetches the update notice and streams the archive.
package update

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/adamancini/profup/internal/types"
)

// Client is the update service client. It is safe for concurrent use.
type Client struct {
	requestor *Requestor
	params    *ParamBuilder
	sender    Sender
	logger    *log.Logger

	// queries collapses concurrent text queries of the same service.
	queries singleflight.Group

	mu     sync.Mutex
	active map[string]struct{} // destinations being downloaded
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithSender replaces the transport used to send built URLs.
func WithSender(s Sender) ClientOption {
	return func(c *Client) {
		c.sender = s
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client building URLs with requestor and parameters with
// params. Requests go through requestor unless WithSender is given.
func NewClient(requestor *Requestor, params *ParamBuilder, opts ...ClientOption) *Client {
	c := &Client{
		requestor: requestor,
		params:    params,
		sender:    requestor,
		logger:    discardLogger(),
		active:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// open builds the URL for service with fresh standard parameters and sends it.
func (c *Client) open(ctx context.Context, service types.ServiceName) (*Response, error) {
	rawURL, err := c.requestor.RequestURL(service, c.params.Build())
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", service, err)
	}

	resp, err := c.sender.Send(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", service, err)
	}
	return resp, nil
}

// readAll reads the whole body of a text service. Concurrent callers for the
// same service share one request; each caller still returns as soon as its own
// ctx is done.
func (c *Client) readAll(ctx context.Context, service types.ServiceName) (string, error) {
	ch := c.queries.DoChan(service.String(), func() (any, error) {
		return c.fetchText(context.WithoutCancel(ctx), service)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("failed to query %s: %w", service, ctx.Err())
	}
}

func (c *Client) fetchText(ctx context.Context, service types.ServiceName) (string, error) {
	resp, err := c.open(ctx, service)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Close() }()

	body, err := io.ReadAll(resp.Body())
	if err != nil {
		return "", fmt.Errorf("failed to read %s response: %w", service, &TransportError{Err: err})
	}
	return string(body), nil
}

// IsUpdateAvailable asks the service whether a newer profile bundle exists.
func (c *Client) IsUpdateAvailable(ctx context.Context) (bool, error) {
	body, err := c.readAll(ctx, types.ServiceCurrentProfile)
	if err != nil {
		return false, err
	}

	available, err := ParseAvailability(body)
	if err != nil {
		c.logger.Warn("update service bounced request", "service", types.ServiceCurrentProfile)
		return false, err
	}

	c.logger.Debug("update availability", "available", available)
	return available, nil
}

// UpdateMessage returns the service's update notice verbatim.
func (c *Client) UpdateMessage(ctx context.Context) (string, error) {
	return c.readAll(ctx, types.ServiceUpdateMessage)
}
