// Package remote talks to the oasis server: it lists, creates and deletes
// oases over HTTP and watches a websocket for list changes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"oasis-map/internal/layout"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("remote: unexpected status")

// Client is an oasis API client. It implements scene.Source and
// editor.Remote.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger

	// MinBackoff and MaxBackoff bound the websocket reconnect delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// New returns a client for the server at baseURL. hc may be nil.
func New(baseURL string, hc *http.Client, log *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: base url %q: want http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{base: u, http: hc, log: log, MinBackoff: time.Second, MaxBackoff: 30 * time.Second}, nil
}

func (c *Client) endpoint(parts ...string) string {
	u := *c.base
	u.Path = c.base.Path + "/api/oases"
	for _, p := range parts {
		u.Path += "/" + url.PathEscape(p)
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, target string, body any, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<14)).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("%w: %s %s: %d: %s", ErrStatus, method, target, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: %s %s: %d", ErrStatus, method, target, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", target, err)
	}
	return nil
}

// List fetches the current oasis list.
func (c *Client) List(ctx context.Context) ([]layout.Remote, error) {
	var out []layout.Remote
	if err := c.do(ctx, http.MethodGet, c.endpoint(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create asks the server to create an oasis.
func (c *Client) Create(ctx context.Context, title, language string) error {
	body := map[string]string{"title": title, "language": language}
	return c.do(ctx, http.MethodPost, c.endpoint(), body, nil)
}

// Delete asks the server to delete id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(id), nil, nil)
}

type event struct {
	Type string `json:"type"`
}

func (c *Client) wsURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = c.base.Path + "/api/oases/ws"
	return u.String()
}

// Watch calls onChange whenever the server reports a list change, and once
// after every (re)connect so changes missed while disconnected are picked
// up. It reconnects with backoff and returns when ctx is done.
func (c *Client) Watch(ctx context.Context, onChange func()) {
	backoff := c.MinBackoff
	for ctx.Err() == nil {
		connected, err := c.watchOnce(ctx, onChange)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = c.MinBackoff
		}
		c.log.Warn("remote: change feed lost, reconnecting", "err", err, "in", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.MaxBackoff)
	}
}

func (c *Client) watchOnce(ctx context.Context, onChange func()) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(), nil)
	if err != nil {
		return false, fmt.Errorf("remote: dial: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	onChange()
	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			return true, fmt.Errorf("remote: read: %w", err)
		}
		if ev.Type == "changed" {
			onChange()
		}
	}
}
