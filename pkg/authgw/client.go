package authgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// IdentityHeader carries the authenticated user's email on outbound requests
// so the server can authorize account-scoped calls without relying solely on
// the session cookie.
const IdentityHeader = "x-user-email"

// Identity reports the principal the client believes is signed in.
// The session mirror implements this.
type Identity interface {
	AuthenticatedEmail() (email string, ok bool)
}

// Client is the request gateway for the authentication service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Identity, when set and authenticated, is attached to every request
	// via the IdentityHeader.
	Identity Identity

	// OnAuthRequired is invoked when the server answers 401 while Identity
	// believed itself authenticated. The flow controller hooks its
	// implicit-logout path here; the 401 still propagates as an error.
	OnAuthRequired func()
}

// NewClient creates a gateway client for the given base URL. The underlying
// HTTP client carries a cookie jar so the server-set session cookie
// round-trips, mirroring a browser's credentials-included fetch.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
}

// Response is a classified success outcome. Callers that expect a step-up
// branch on StepUpRequired before reading Data.
type Response struct {
	Status int
	Data   map[string]any
}

// StepUpRequired reports the 206 outcome: credentials were accepted but a
// second factor is required before a session is granted.
func (r *Response) StepUpRequired() bool {
	return r.Status == http.StatusPartialContent
}

// String returns the named field of the payload, or "" when absent or not a
// string.
func (r *Response) String(key string) string {
	v, _ := r.Data[key].(string)
	return v
}

// Bool returns the named field of the payload, or false when absent or not a
// bool.
func (r *Response) Bool(key string) bool {
	v, _ := r.Data[key].(bool)
	return v
}

// Send issues a JSON request and classifies the response.
//
// Any 2xx (206 included) yields a Response. A 401 triggers OnAuthRequired
// when the bound identity thought it was signed in, then propagates as an
// HTTPError matching ErrAuthRequired. Other non-2xx statuses become
// HTTPError; transport failures become NetworkError.
func (c *Client) Send(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Identity != nil {
		if email, ok := c.Identity.AuthenticatedEmail(); ok {
			req.Header.Set(IdentityHeader, email)
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	// A non-JSON or empty body is fine; it decodes to an empty payload.
	data := map[string]any{}
	if raw, err := io.ReadAll(resp.Body); err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &data)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		wasAuthenticated := false
		if c.Identity != nil {
			_, wasAuthenticated = c.Identity.AuthenticatedEmail()
		}
		if wasAuthenticated && c.OnAuthRequired != nil {
			c.OnAuthRequired()
		}
		he := httpError(resp.StatusCode, data)
		if he.Generic {
			he.Message = "Authentication required"
		}
		return nil, he
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode, data)
	}

	return &Response{Status: resp.StatusCode, Data: data}, nil
}
