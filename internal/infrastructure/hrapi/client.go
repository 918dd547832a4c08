package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
)

// Client talks to the HR backend's REST API. It owns no credentials:
// bearer tokens arrive per call and pass through verbatim.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// doRequest executes one backend call and returns the raw response body.
// Backend error statuses become UpstreamError carrying status and body so
// callers can surface the payload untouched.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, authToken string) ([]byte, error) {
	op := fmt.Sprintf("%s %s", method, path)

	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NewInternalError("failed to marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	fullURL := c.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, errors.NewInternalError("failed to create request", err)
	}

	if body != nil {
		req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if authToken != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+authToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamTransportError(op, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewUpstreamTransportError(op, err)
	}

	if resp.StatusCode >= 400 {
		return nil, errors.NewUpstreamError(op, resp.StatusCode, string(respBytes))
	}
	return respBytes, nil
}

// List fetches one page of records and normalizes the envelope.
func (c *Client) List(ctx context.Context, endpoint string, query url.Values, authToken string) (schema.Page, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, authToken)
	if err != nil {
		return schema.Page{}, err
	}

	page, err := schema.NormalizeList(raw)
	if err != nil {
		return schema.Page{}, errors.NewInternalError("failed to normalize list response", err)
	}
	return page, nil
}

// Create posts a new record and returns the created row.
func (c *Client) Create(ctx context.Context, endpoint string, payload schema.FormDraft, authToken string) (schema.Record, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, endpoint, nil, payload, authToken)
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// Update patches an existing record and returns the updated row.
func (c *Client) Update(ctx context.Context, detailEndpoint string, payload schema.FormDraft, authToken string) (schema.Record, error) {
	raw, err := c.doRequest(ctx, http.MethodPatch, detailEndpoint, nil, payload, authToken)
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// Delete removes a record. The backend answers 204 with an empty body.
func (c *Client) Delete(ctx context.Context, detailEndpoint string, authToken string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, detailEndpoint, nil, nil, authToken)
	return err
}

func decodeRecord(raw []byte) (schema.Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return schema.Record{}, nil
	}
	rec, err := schema.NormalizeRecord(raw)
	if err != nil {
		return nil, errors.NewInternalError("failed to decode record response", err)
	}
	return rec, nil
}
