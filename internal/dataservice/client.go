// Package dataservice is the HTTP client for the bookkeeping backend that owns
// transactions, parties, companies, settings and the email integration.
package dataservice

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

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotFound = errors.New("not found")

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d: %s", e.Method, e.Path, e.Code, e.Body)
}

type Options struct {
	BaseURL   string
	Token     string
	JWTSecret string
	Subject   string
	Role      string
	Timeout   time.Duration
}

type Client struct {
	baseURL *url.URL
	client  *http.Client
	opts    Options
	now     func() time.Time
}

func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base url: %q is not absolute", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	return &Client{
		baseURL: u,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		opts: opts,
		now:  time.Now,
	}, nil
}

func (c *Client) bearer() (string, error) {
	if c.opts.JWTSecret == "" {
		return c.opts.Token, nil
	}

	now := c.now()
	claims := struct {
		Role string `json:"role,omitempty"`
		jwt.RegisteredClaims
	}{
		Role: c.opts.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.opts.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.opts.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.bearer()
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if err := json.Unmarshal(unwrapEnvelope(payload), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

// unwrapEnvelope strips a {"data": ...} wrapper when it is the only key.
func unwrapEnvelope(payload []byte) []byte {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(payload, &env); err != nil || len(env) != 1 {
		return payload
	}

	if data, ok := env["data"]; ok {
		return data
	}

	return payload
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

func entityPath(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}
