package mastodon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/infra/auth"
)

const (
	limitRespBodyLen = 8 << 20
	userAgent        = "Kabinka"
	formContentType  = "application/x-www-form-urlencoded"
)

// APIError is a non-2xx response from the Mastodon API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match domain.ErrUnauthorized and domain.ErrNotFound.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

// Client is a thin HTTP wrapper for the Mastodon API.
// It builds URLs from the instance base URL and injects the bearer token when
// one is configured. Without a token provider requests are anonymous.
type Client struct {
	baseURL       string
	tokenProvider auth.TokenProvider
	http          *http.Client
}

// NewClient creates an authenticated Mastodon API client.
func NewClient(baseURL string, tp auth.TokenProvider, timeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		tokenProvider: tp,
		http:          &http.Client{Timeout: timeout},
	}
}

// NewAnonymousClient creates a client for public endpoints of domain.
func NewAnonymousClient(domainName string, timeout time.Duration) *Client {
	return NewClient("https://"+domainName, nil, timeout)
}

// BaseURL returns the instance URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool { return c.tokenProvider != nil }

type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	header      http.Header
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, call{method: http.MethodGet, path: path})
}

// GetPage performs a GET request and returns the max_id of the next page
// advertised in the Link header, empty when there is none.
func (c *Client) GetPage(ctx context.Context, path string) ([]byte, string, error) {
	data, header, err := c.send(ctx, call{method: http.MethodGet, path: path})
	if err != nil {
		return nil, "", err
	}
	return data, nextMaxID(header.Values("Link")), nil
}

// Post performs a form-encoded POST request. form may be nil.
func (c *Client) Post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, formCall(http.MethodPost, path, form))
}

// Put performs a form-encoded PUT request.
func (c *Client) Put(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, formCall(http.MethodPut, path, form))
}

// Patch performs a form-encoded PATCH request.
func (c *Client) Patch(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, formCall(http.MethodPatch, path, form))
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, call{method: http.MethodDelete, path: path})
}

func formCall(method, path string, form url.Values) call {
	cl := call{method: method, path: path}
	if form != nil {
		cl.body = strings.NewReader(form.Encode())
		cl.contentType = formContentType
	}
	return cl
}

func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	data, _, err := c.send(ctx, cl)
	return data, err
}

func (c *Client) send(ctx context.Context, cl call) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	if c.tokenProvider != nil {
		token, err := c.tokenProvider.AccessToken()
		if err != nil {
			return nil, nil, fmt.Errorf("auth: %w: %w", domain.ErrUnauthorized, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request to %s: %w", cl.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limitRespBodyLen))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &APIError{
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	return data, resp.Header, nil
}

// nextMaxID extracts max_id from the rel="next" entry of Link headers such as
// `<https://host/api/v1/bookmarks?max_id=42>; rel="next", <...>; rel="prev"`.
func nextMaxID(links []string) string {
	for _, header := range links {
		for _, part := range strings.Split(header, ",") {
			target, params, ok := strings.Cut(part, ";")
			if !ok || !strings.Contains(params, `rel="next"`) {
				continue
			}
			target = strings.Trim(strings.TrimSpace(target), "<>")
			u, err := url.Parse(target)
			if err != nil {
				continue
			}
			return u.Query().Get("max_id")
		}
	}
	return ""
}

// errorMessage extracts the "error" field Mastodon puts in failure bodies.
func errorMessage(data []byte) string {
	var body struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := sonic.Unmarshal(data, &body); err == nil && body.Error != "" {
		if body.Description != "" {
			return body.Error + ": " + body.Description
		}
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

func decode[T any](data []byte, what string) (T, error) {
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parsing %s: %w", what, err)
	}
	return v, nil
}
