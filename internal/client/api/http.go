package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/pricescout/pricescout/internal/client/models"
)

// HTTPClient is the concrete Client over the backend's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// errorPayload is the backend's JSON error envelope.
type errorPayload struct {
	Error string `json:"error"`
}

// do issues a JSON request. A nil body sends no payload. When needsAuth is
// true and no token exists, the call fails with ErrUnauthenticated before any
// network I/O. A non-nil out receives the decoded 2xx response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, needsAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if needsAuth {
		token := c.tokens.Token()
		if token == "" {
			return ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, out)
}

// send executes req and normalizes every failure into the error taxonomy.
func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ep errorPayload
		if jsonErr := json.Unmarshal(data, &ep); jsonErr == nil && ep.Error != "" {
			return &ServerError{Status: resp.StatusCode, Message: ep.Error}
		}
		return &ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ServerError{Status: resp.StatusCode, Message: "malformed response body"}
		}
	}
	return nil
}

func (c *HTTPClient) ExchangeGoogleCredential(ctx context.Context, credential string) (*models.UserProfile, string, error) {
	var resp struct {
		Success bool                `json:"success"`
		Token   string              `json:"token"`
		User    *models.UserProfile `json:"user"`
		Error   string              `json:"error"`
	}

	body := map[string]string{"token": credential}
	if err := c.do(ctx, http.MethodPost, "/api/auth/google", body, false, &resp); err != nil {
		return nil, "", err
	}
	if !resp.Success || resp.Token == "" || resp.User == nil {
		msg := resp.Error
		if msg == "" {
			msg = "authentication failed"
		}
		return nil, "", &ServerError{Status: http.StatusOK, Message: msg}
	}
	return resp.User, resp.Token, nil
}

func (c *HTTPClient) Search(ctx context.Context, productName string) (*models.ComparisonResult, error) {
	var result models.ComparisonResult

	body := map[string]string{"product_name": productName}
	if err := c.do(ctx, http.MethodPost, "/api/search", body, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Trending(ctx context.Context) ([]models.TrendingProduct, error) {
	var resp struct {
		Trending []models.TrendingProduct `json:"trending"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/trending", nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Trending, nil
}

func (c *HTTPClient) UploadImage(ctx context.Context, artifact *models.CaptureArtifact) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, artifact.Name))
	hdr.Set("Content-Type", artifact.MIME)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(artifact.Bytes); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-image", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		DetectedProduct string `json:"detected_product"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", err
	}
	return resp.DetectedProduct, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	var resp struct {
		User *models.UserProfile `json:"user"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &ServerError{Status: http.StatusOK, Message: "malformed response body"}
	}
	return resp.User, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, name string) (*models.UserProfile, error) {
	var resp struct {
		Success bool                `json:"success"`
		User    *models.UserProfile `json:"user"`
	}

	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPut, "/api/user/profile", body, true, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.User == nil {
		return nil, &ServerError{Status: http.StatusOK, Message: "profile update rejected"}
	}
	return resp.User, nil
}

func (c *HTTPClient) SearchHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var resp struct {
		History []models.HistoryEntry `json:"history"`
		Total   int                   `json:"total"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/user/search-history", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

func (c *HTTPClient) DeleteSearch(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/user/search-history/"+url.PathEscape(id), nil, true, nil)
}

func (c *HTTPClient) ClearSearchHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/user/search-history/clear", nil, true, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/health", nil, false, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return &ServerError{Status: http.StatusOK, Message: "backend unhealthy"}
	}
	return nil
}
