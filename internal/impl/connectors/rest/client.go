package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"

	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second

	// errorBodyLimit caps how much of an error response ends up in messages.
	errorBodyLimit = 500
)

// Client is the per-connector request dispatcher. It composes URLs from a
// fixed base, sets JSON and Authorization headers, and normalizes
// status-code handling so every connector sees the same error shapes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
	logger     *zap.Logger
}

func NewClient(baseURL string, auth Authenticator, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		auth:       auth,
		logger:     logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request and decodes the JSON response. A 204 or empty
// body decodes to {"success": true}, mirroring how the connectors report
// deletes and empty PATCH responses.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values) (any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errs.InternalErrorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, errs.InternalErrorf("failed to build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, method, path)
}

// DoForm sends an application/x-www-form-urlencoded POST, used by OAuth2
// token endpoints that the oauth2 package does not cover.
func (c *Client) DoForm(ctx context.Context, path string, form url.Values) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.InternalErrorf("failed to build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, http.MethodPost, path)
}

// DoMultipart uploads a single file plus form fields as multipart/form-data.
// Camunda deployments are the only caller today.
func (c *Client) DoMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file []byte) (any, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, errs.InternalErrorf("failed to write form field %q: %v", key, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, errs.InternalErrorf("failed to create form file: %v", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, errs.InternalErrorf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, errs.InternalErrorf("failed to finalize multipart body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), &buf)
	if err != nil {
		return nil, errs.InternalErrorf("failed to build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, http.MethodPost, path)
}

func (c *Client) url(path string, query url.Values) string {
	full := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = c.baseURL + path
	}
	if len(query) > 0 {
		separator := "?"
		if strings.Contains(full, "?") {
			separator = "&"
		}
		full += separator + query.Encode()
	}
	return full
}

func (c *Client) send(req *http.Request, method, path string) (any, error) {
	if c.auth != nil {
		if err := c.auth.Apply(req); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, errs.InternalErrorf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.InternalErrorf("failed to read response body: %v", err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errs.UnauthorizedErrorf("authentication failed (401): %s", snippet(payload))
	case resp.StatusCode >= 400:
		return nil, errs.InternalErrorf("%s %s failed: status %d: %s", method, path, resp.StatusCode, snippet(payload))
	case resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(payload)) == 0:
		return map[string]any{"success": true}, nil
	}

	var result any
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errs.InternalErrorf("failed to decode response from %s: %v", path, err)
	}
	return result, nil
}

func snippet(payload []byte) string {
	text := strings.TrimSpace(string(payload))
	if len(text) > errorBodyLimit {
		return text[:errorBodyLimit] + "..."
	}
	return text
}

// PrettyJSON renders a decoded API response for human-readable tool output.
func PrettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// AsObject returns v as a map when the API returned a JSON object, or an
// empty map otherwise, so callers can index fields without type switches.
func AsObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// AsList returns v as a slice when the API returned a JSON array.
func AsList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

// Str fetches a string field from a decoded object, with a fallback for
// missing or non-string values.
func Str(obj map[string]any, key, fallback string) string {
	if value, ok := obj[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

// Num fetches a numeric field from a decoded object. JSON numbers decode as
// float64; anything else yields zero.
func Num(obj map[string]any, key string) int64 {
	if value, ok := obj[key].(float64); ok {
		return int64(value)
	}
	return 0
}
