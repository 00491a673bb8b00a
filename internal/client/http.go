package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"
)

// Paths are the backend endpoints the shell calls.
type Paths struct {
	Profile string
	Logout  string
	Item    string
}

// HTTPClient makes REST calls to the MediVault backend. The token is passed
// per call because it changes across login and logout.
type HTTPClient struct {
	baseURL string
	paths   Paths
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://localhost:8080").
func NewHTTPClient(baseURL string, paths Paths, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		paths:   paths,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetProfile fetches the profile of the token's owner.
func (c *HTTPClient) GetProfile(ctx context.Context, token string) (*Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, c.paths.Profile, token, nil, "", &resp); err != nil {
		return nil, err
	}
	if resp.Users != nil {
		return resp.Users, nil
	}
	return &resp.Profile, nil
}

// Logout invalidates token on the server.
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, c.paths.Logout, token, nil, "", nil)
}

// CreateItem posts a new inventory item as multipart form data: an "item"
// JSON part and, when img is non-nil, an "image" part. Non-2xx answers come
// back as *StatusError.
func (c *HTTPClient) CreateItem(ctx context.Context, token string, item ItemPayload, img *Attachment) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="item"; filename="blob"`)
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}

	if img != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.Name))
		h.Set("Content-Type", img.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(img.Data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, c.paths.Item, token, &body, mw.FormDataContentType(), nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: respBody}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
