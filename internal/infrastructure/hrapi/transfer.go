package hrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
)

// Download is a CSV payload streamed back from the backend untouched; the
// backend owns formatting.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImportResult is the backend's import outcome. Partial failure is normal:
// SuccessCount says how many rows landed.
type ImportResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
	Errors       any `json:"errors,omitempty"`
}

// DownloadCSV fetches an export or template file for a resource.
func (c *Client) DownloadCSV(ctx context.Context, endpoint string, query url.Values, authToken string) (Download, error) {
	op := fmt.Sprintf("GET %s", endpoint)

	if query == nil {
		query = url.Values{}
	}
	query.Set(constants.ParamExportFormat, constants.ExportFormatCSV)

	fullURL := c.BaseURL + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Download{}, errors.NewInternalError("failed to create request", err)
	}
	if authToken != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+authToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Download{}, errors.NewUpstreamTransportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Download{}, errors.NewUpstreamTransportError(op, err)
	}
	if resp.StatusCode >= 400 {
		return Download{}, errors.NewUpstreamError(op, resp.StatusCode, string(data))
	}

	contentType := resp.Header.Get(constants.HeaderContentType)
	if contentType == "" {
		contentType = constants.ContentTypeCSV
	}
	return Download{
		Filename:    dispositionFilename(resp.Header.Get(constants.HeaderContentDisposition)),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// ImportFile forwards one uploaded file to the backend's import endpoint
// as multipart form data and decodes the outcome.
func (c *Client) ImportFile(ctx context.Context, endpoint, filename string, file io.Reader, authToken string) (ImportResult, error) {
	op := fmt.Sprintf("POST %s", endpoint)

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, pr)
	if err != nil {
		return ImportResult{}, errors.NewInternalError("failed to create request", err)
	}
	req.Header.Set(constants.HeaderContentType, writer.FormDataContentType())
	if authToken != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+authToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ImportResult{}, errors.NewUpstreamTransportError(op, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImportResult{}, errors.NewUpstreamTransportError(op, err)
	}
	if resp.StatusCode >= 400 {
		return ImportResult{}, errors.NewUpstreamError(op, resp.StatusCode, string(respBytes))
	}

	var result ImportResult
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return ImportResult{}, errors.NewInternalError("failed to decode import result", err)
	}
	return result, nil
}

// dispositionFilename extracts the filename from a Content-Disposition
// header, empty when absent or malformed.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
