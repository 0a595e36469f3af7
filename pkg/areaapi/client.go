// Package areaapi is the client of the external Area API: area create, update and fetch, and the list of
// services the user has connected.
package areaapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/area/pkg/models"
	"github.com/gofiber/fiber/v3/client"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrUnexpectedStatus is returned when the Area API answers with a non-success status.
	ErrUnexpectedStatus = errors.New("unexpected status from area api")

	// ErrAreaNotFound is returned when the requested area does not exist.
	ErrAreaNotFound = errors.New("area not found")

	// ErrUnauthorized is returned when the Area API rejects the forwarded credentials.
	ErrUnauthorized = errors.New("unauthorized by area api")
)

// StatusError carries the status and body of a failed Area API call.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: area api responded %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case 404:
		return ErrAreaNotFound
	case 401, 403:
		return ErrUnauthorized
	default:
		return ErrUnexpectedStatus
	}
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token forwarded to the Area API.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Token returns the bearer token stored in ctx.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)

	return token
}

// Client talks to the Area API over HTTP.
type Client struct {
	http   *client.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// New creates a client for the Area API rooted at baseURL.
func New(baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid area api url %q", baseURL)
	}

	c := &Client{
		http: client.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(defaultTimeout),
		logger: logger.With("module", "area_api"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) config(ctx context.Context, body any) client.Config {
	header := map[string]string{"Accept": "application/json"}
	if token := Token(ctx); token != "" {
		header["Authorization"] = "Bearer " + token
	}

	return client.Config{Ctx: ctx, Header: header, Body: body}
}

// CreateArea sends POST /areas/with-steps.
func (c *Client) CreateArea(ctx context.Context, request *models.AreaRequest) (*models.AreaResponse, error) {
	resp, err := c.http.Post("/areas/with-steps", c.config(ctx, request))

	var area models.AreaResponse
	if err := c.decode("CreateArea", resp, err, &area); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "area created", "area_id", area.ID, "steps", len(request.Steps))

	return &area, nil
}

// UpdateArea sends PUT /areas/{id}/with-steps.
func (c *Client) UpdateArea(ctx context.Context, id string, request *models.AreaRequest) (*models.AreaResponse, error) {
	resp, err := c.http.Put("/areas/"+url.PathEscape(id)+"/with-steps", c.config(ctx, request))

	var area models.AreaResponse
	if err := c.decode("UpdateArea", resp, err, &area); err != nil {
		return nil, err
	}

	if area.ID == "" {
		area.ID = id
	}

	c.logger.InfoContext(ctx, "area updated", "area_id", area.ID, "steps", len(request.Steps))

	return &area, nil
}

// GetArea sends GET /areas/{id}.
func (c *Client) GetArea(ctx context.Context, id string) (*models.AreaResponse, error) {
	resp, err := c.http.Get("/areas/"+url.PathEscape(id), c.config(ctx, nil))

	var area models.AreaResponse
	if err := c.decode("GetArea", resp, err, &area); err != nil {
		return nil, err
	}

	return &area, nil
}

// ConnectedServices sends GET /services/connected and returns the slugs of the services the user has
// authorized.
func (c *Client) ConnectedServices(ctx context.Context) ([]string, error) {
	resp, err := c.http.Get("/services/connected", c.config(ctx, nil))

	var slugs []string
	if err := c.decode("ConnectedServices", resp, err, &slugs); err != nil {
		return nil, err
	}

	return slugs, nil
}

func (c *Client) decode(op string, resp *client.Response, err error, out any) error {
	if err != nil {
		return fmt.Errorf("%s: failed to call area api: %w", op, err)
	}

	defer resp.Close()

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return &StatusError{Op: op, StatusCode: status, Body: strings.TrimSpace(string(resp.Body()))}
	}

	if len(resp.Body()) == 0 {
		return nil
	}

	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("%s: failed to decode area api response: %w", op, err)
	}

	return nil
}
