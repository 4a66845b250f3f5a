package instagram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Graph API root. Tests point BaseURL at an
// httptest server instead.
const DefaultBaseURL = "https://graph.facebook.com/v21.0"

const defaultTimeout = 30 * time.Second

type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client talks to the Instagram Graph API. One client is scoped to one
// ConnectionManager instance; Close releases its connections.
//
// Every call passes the access token as a query or form parameter, never
// as a bearer header. The Graph API requires this parameter style.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, op string, kind Kind, path string, params url.Values, out any) error {
	reqURL := c.cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &Error{Kind: kind, Op: op, err: err}
	}

	return c.do(req, op, kind, out)
}

func (c *Client) postForm(ctx context.Context, op string, kind Kind, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Kind: kind, Op: op, err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, op, kind, out)
}

func (c *Client) do(req *http.Request, op string, kind Kind, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and refused connections are retryable from the start
		// of whichever operation was in progress.
		return &Error{Kind: KindTransient, Op: op, Transient: true, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransient, Op: op, Transient: true, err: err}
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		gerr := envelope.Error.toError(op, kind)
		slog.Info("graph api error", "op", op, "code", gerr.Code, "message", gerr.Message)
		return gerr
	}

	if resp.StatusCode != http.StatusOK {
		slog.Info("graph api unexpected status", "op", op, "status", resp.StatusCode)
		return &Error{Kind: kind, Op: op, Message: strings.TrimSpace(string(body)), Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: kind, Op: op, err: err}
	}
	return nil
}
