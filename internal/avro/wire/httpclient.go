package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// HTTPClient is a net/http-based RegistryClient talking to the
// Confluent Schema Registry REST API, the same route shapes
// internal/rest/routes.go serves.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient constructs an HTTPClient against baseURL (e.g.
// "http://localhost:8081"). A nil httpClient defaults to
// http.DefaultClient.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, http: httpClient}
}

type schemaOnlyResponse struct {
	Schema string `json:"schema"`
}

type schemaRecordResponse struct {
	Subject string `json:"subject"`
	ID      int32  `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
}

type registerResponse struct {
	ID int32 `json:"id"`
}

func (c *HTTPClient) GetSchema(ctx context.Context, id int32) (string, error) {
	var resp schemaOnlyResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Schema, nil
}

func (c *HTTPClient) GetLatestSchema(ctx context.Context, subject string) (int32, int, string, error) {
	var resp schemaRecordResponse
	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, 0, "", err
	}
	return resp.ID, resp.Version, resp.Schema, nil
}

func (c *HTTPClient) GetSchemaByVersion(ctx context.Context, subject string, version int) (string, error) {
	var resp schemaRecordResponse
	path := fmt.Sprintf("/subjects/%s/versions/%s", url.PathEscape(subject), strconv.Itoa(version))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Schema, nil
}

func (c *HTTPClient) GetSchemaID(ctx context.Context, subject string, schemaJSON string) (int32, error) {
	var resp schemaRecordResponse
	path := fmt.Sprintf("/subjects/%s", url.PathEscape(subject))
	body := schemaOnlyResponse{Schema: schemaJSON}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) RegisterSchema(ctx context.Context, subject string, schemaJSON string) (int32, error) {
	var resp registerResponse
	path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(subject))
	body := schemaOnlyResponse{Schema: schemaJSON}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var errResp struct {
			ErrorCode int    `json:"error_code"`
			Message   string `json:"message"`
		}
		code := resp.StatusCode * 100
		if json.Unmarshal(respBody, &errResp) == nil && errResp.ErrorCode != 0 {
			code = errResp.ErrorCode
		}
		return &RegistryError{Code: code, Message: errResp.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response body: %w", err)
	}
	return nil
}
