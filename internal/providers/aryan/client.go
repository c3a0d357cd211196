// Package aryan is a client for the URL-only prompt service used as the
// opportunistic fast path. The service is reachable over plain http only.
package aryan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultEndpoint is the fixed address of the service.
const DefaultEndpoint = "http://65.109.80.126:20409/aryan/promptv2"

const maxBodyBytes = 1 << 20

var (
	// ErrInsecureBlocked mirrors a mixed-content block: the endpoint is plain
	// http and the caller refuses unencrypted upstreams.
	ErrInsecureBlocked = errors.New("aryan: insecure endpoint blocked")
	ErrNoPrompt        = errors.New("aryan: response carried no usable prompt")
	ErrMalformed       = errors.New("aryan: malformed response")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("aryan: status %d", e.Code)
}

type Options struct {
	Endpoint      string
	HTTPClient    *http.Client
	BlockInsecure bool
}

type Client struct {
	endpoint      string
	client        *http.Client
	blockInsecure bool
}

func NewClient(opts Options) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Client{endpoint: endpoint, client: client, blockInsecure: opts.BlockInsecure}
}

// Endpoint returns the configured service address.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Response is the typed view of the service's JSON body. Unknown fields are ignored.
type Response struct {
	Prompt  string
	Success *bool
}

type wireResponse struct {
	Prompt  *string `json:"prompt"`
	Success *bool   `json:"success"`
}

// ParseResponse decodes a response body. Only a JSON object is accepted;
// a non-string prompt or non-boolean success is malformed.
func ParseResponse(body []byte) (Response, error) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return Response{}, ErrMalformed
	}
	var wire wireResponse
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	res := Response{Success: wire.Success}
	if wire.Prompt != nil {
		res.Prompt = strings.TrimSpace(*wire.Prompt)
	}
	return res, nil
}

// Usable returns the prompt text when the response counts as a success. A
// success flag without text is not usable.
func (r Response) Usable() (string, bool) {
	if r.Prompt == "" {
		return "", false
	}
	return r.Prompt, true
}

// DescribeURL asks the service for a prompt describing the image at imageURL.
// The caller owns the deadline through ctx.
func (c *Client) DescribeURL(ctx context.Context, imageURL string) (string, error) {
	if c.blockInsecure && strings.HasPrefix(strings.ToLower(c.endpoint), "http://") {
		return "", ErrInsecureBlocked
	}
	target, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("aryan: parse endpoint: %w", err)
	}
	q := target.Query()
	q.Set("imageUrl", imageURL)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("aryan: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("aryan: request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("aryan: read body: %w", err)
	}
	parsed, err := ParseResponse(body)
	if err != nil {
		return "", err
	}
	text, ok := parsed.Usable()
	if !ok {
		return "", ErrNoPrompt
	}
	return text, nil
}
