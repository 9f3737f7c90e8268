package findmypet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
	contentTypeJSON     = "application/json"
	clientUserAgent     = "findmypet-go/1.0.0"
)

// doRequest performs a JSON request and maps the outcome to the client's
// error taxonomy. When authed is true the session token, re-read fresh for
// this request, is attached as a bearer header; a 401/403 answer to such a
// request is an auth-rejection signal and tears the session down before the
// error is returned. Unauthenticated requests never touch the session.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}, authed bool) error {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
		contentType = contentTypeJSON
	}
	return c.send(ctx, method, path, bodyReader, contentType, result, authed)
}

// doMultipart performs a multipart/form-data request. Mutations always carry
// whatever token the session holds.
func (c *Client) doMultipart(ctx context.Context, method, path string, form *multipartForm, result interface{}) error {
	body, contentType, err := form.encode()
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, body, contentType, result, true)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, result interface{}, authed bool) error {
	reqURL, err := c.buildURL(path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerUserAgent, clientUserAgent)
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	// The token is read per request, never cached across calls, so a
	// logout mid-flight shows up on the next request.
	tokenSent := ""
	if authed {
		if token := c.session.Token(); token != "" {
			req.Header.Set(headerAuthorization, "Bearer "+token)
			tokenSent = token
		}
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Bool("authed", tokenSent != ""),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("transport failure", zap.Error(err))
		return &Error{
			Code:    CodeNetworkUnavailable,
			Message: "Could not connect to the server. Please check your connection and server status.",
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Code:    CodeNetworkUnavailable,
			Message: "Request was sent but the response could not be read.",
		}
	}

	c.logger.Debug("response",
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode >= 400 {
		apiErr := statusError(resp.StatusCode, respBody)
		if tokenSent != "" && apiErr.IsAuthenticationRequired() {
			// Token invalidity anywhere triggers global teardown.
			c.logger.Warn("token rejected by server, clearing session")
			c.session.Clear()
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{
				StatusCode: resp.StatusCode,
				Code:       CodeServerError,
				Message:    "Server returned an unreadable response.",
			}
		}
	}
	return nil
}

func (c *Client) buildURL(path string) (string, error) {
	// url.JoinPath would escape the query string, so split it off first.
	rawQuery := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, rawQuery = path[:i], path[i+1:]
	}
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("build URL: %w", err)
	}
	if rawQuery != "" {
		reqURL += "?" + rawQuery
	}
	return reqURL, nil
}

// get performs an unauthenticated GET request.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result, false)
}

// getAuthed performs a GET request carrying the session token.
func (c *Client) getAuthed(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result, true)
}

// delete performs an authenticated DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, true)
}
