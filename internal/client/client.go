// Package client talks to the layout persistence API over HTTP.  Client
// satisfies editor.Store, so an editing session can run against a remote
// backend exactly as it runs against the local repository.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/seating-designer/internal/logging"
	"github.com/iliyamo/seating-designer/internal/model"
)

// TokenSource supplies the bearer token sent with every call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("no api token configured")
	}
	return string(t), nil
}

// Client calls GET /layout and POST /layout on one backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logging.Component("layout-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// submitBody is the POST /layout payload.
type submitBody struct {
	Data   []model.Row `json:"data"`
	Screen string      `json:"screen"`
}

// Fetch returns the stored rows of screenID in the order the API sent them.
func (c *Client) Fetch(ctx context.Context, screenID string) ([]model.Row, error) {
	u := c.baseURL + "/layout?" + url.Values{"screenId": {screenID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var rows []model.Row
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.Row{}
	}
	return rows, nil
}

// Replace overwrites the stored layout of screenID with rows.
func (c *Client) Replace(ctx context.Context, screenID string, rows []model.Row) error {
	body, err := json.Marshal(submitBody{Data: rows, Screen: screenID})
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/layout", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	tok, err := c.tokens.Token(req.Context())
	if err != nil {
		return &model.TransportError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
		return &model.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &model.TransportError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("method", req.Method).Str("path", req.URL.Path).Msg("api error")
		return &model.TransportError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &model.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls a human message out of an error body.  The backend
// answers {"error": "..."}; older deployments used {"message": "..."}.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
