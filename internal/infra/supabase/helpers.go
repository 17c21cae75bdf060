package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// HTTP helpers for POST, PATCH, DELETE
// ============================================================

// send is the single round trip used by every helper. Non-2xx answers
// become *APIError; 204 and 404 yield an empty body.
func (c *Client) send(ctx context.Context, method, url string, payload any, prefer string) ([]byte, http.Header, error) {
	var reader *bytes.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, nil, err
	}
	c.setHeaders(ctx, req, prefer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, nil, err
	}

	if method == http.MethodGet && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent) {
		return nil, resp.Header, nil // no data
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.Header, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, nil, parseAPIError(resp.StatusCode, body)
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
	)
	return body, resp.Header, nil
}

func (c *Client) doPost(ctx context.Context, table string, data any) ([]byte, error) {
	body, _, err := c.send(ctx, http.MethodPost, c.restURL(table), data, "return=representation")
	return body, err
}

// doUpsert inserts or merges on the table's primary key.
func (c *Client) doUpsert(ctx context.Context, table string, data any) ([]byte, error) {
	body, _, err := c.send(ctx, http.MethodPost, c.restURL(table), data, "resolution=merge-duplicates,return=representation")
	return body, err
}

func (c *Client) doPatch(ctx context.Context, path string, data any) ([]byte, error) {
	body, _, err := c.send(ctx, http.MethodPatch, c.restURL(path), data, "return=representation")
	return body, err
}

func (c *Client) doDelete(ctx context.Context, path string) ([]byte, error) {
	body, _, err := c.send(ctx, http.MethodDelete, c.restURL(path), nil, "return=representation")
	return body, err
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
