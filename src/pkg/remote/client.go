/*
Package remote is the HTTP plumbing shared by the clients of the model
services (object detection and OCR): multipart uploads, throttling and
compressed response bodies.
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// FilePart is one file field of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Content  []byte
}

/*
Client posts multipart forms to one model service.

Calls are throttled with a token bucket shared by every goroutine using the
client, so a worker pool cannot overload a single-GPU model server.
*/
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client. requestsPerSecond <= 0 disables throttling.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, burst int) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

/*
PostMultipart sends files and form fields to path (with query parameters) and
returns the decoded response body. Any status other than 200 is an error
carrying the response text.
*/
func (c *Client) PostMultipart(
	ctx context.Context, path string, query url.Values, files []FilePart, fields map[string]string,
) (body []byte, e *xerr.Error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload bytes.Buffer
	writer := multipart.NewWriter(&payload)
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, xerr.NewError(err, "create multipart file field", endpoint)
		}
		if _, err = part.Write(file.Content); err != nil {
			return nil, xerr.NewError(err, "write multipart file field", endpoint)
		}
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, xerr.NewError(err, "write multipart form field", endpoint)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, xerr.NewError(err, "close multipart writer", endpoint)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, xerr.NewError(err, "wait for request slot", endpoint)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &payload)
	if err != nil {
		return nil, xerr.NewError(err, "create request", endpoint)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Accept-Encoding", "br, gzip, deflate")

	startTime := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, xerr.NewError(err, "send request", endpoint)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, e = GetBody(response, endpoint)
	if e != nil {
		return nil, e
	}
	if response.StatusCode != http.StatusOK {
		err = fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
		return nil, xerr.NewError(err, "model service rejected request", endpoint)
	}

	tl.Log(tl.Verbose, palette.GreenDim, "%s '%s' in %s", "Called", endpoint, time.Since(startTime))
	return body, nil
}

// PostMultipartJSON is PostMultipart decoding the JSON response into target.
func (c *Client) PostMultipartJSON(
	ctx context.Context, path string, query url.Values, files []FilePart, fields map[string]string, target any,
) (e *xerr.Error) {
	body, e := c.PostMultipart(ctx, path, query, files, fields)
	if e != nil {
		return e
	}
	if err := json.Unmarshal(body, target); err != nil {
		return xerr.NewError(err, "decode JSON response", c.baseURL+path)
	}
	return nil
}
