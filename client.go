package user

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Client performs the remote calls of the profile editor.
// body is JSON-encoded; on success the response is decoded into out
// unless out is nil. Non-2xx responses come back as *RemoteError.
type Client interface {
	Put(ctx context.Context, path string, body, out any) error
}

// RemoteError is a non-2xx answer from the API. Message is the body's
// "message" field and may be empty.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "remote error: status " + strconv.Itoa(e.StatusCode)
}

// remoteMessage picks the text shown to the user for a failed call.
func remoteMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

// HTTPClient is the Client used in the browser and by server-side tools.
// Authentication rides on the cookie jar of the wrapped http.Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a Client rooted at baseURL. A nil hc uses
// http.DefaultClient.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Get fetches path into out; used to load the signed-in user.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m messageBody
		_ = json.Unmarshal(raw, &m)
		return &RemoteError{StatusCode: resp.StatusCode, Message: m.Message}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
