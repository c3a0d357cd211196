// Package genai wraps the Gemini SDK for single-image prompt generation.
package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"imgprompt/internal/domain"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second

	// Sampling biases toward descriptive variety.
	Temperature float32 = 0.8
	TopP        float32 = 0.95
)

// Options controls how the Gemini client is configured.
type Options struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client builds a fresh SDK client for every call so the credential in effect
// is always the one passed in.
type Client struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini status %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini status %d: %s", e.Code, e.Message)
}

// HTTPStatus exposes the status code for failure classification.
func (e *APIError) HTTPStatus() int {
	return e.Code
}

func NewClient(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		model:      model,
		timeout:    timeout,
		httpClient: client,
		logger:     logger.With().Str("component", "gemini").Logger(),
	}
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Describe sends the instruction and image to Gemini and returns the raw
// generated text. An empty answer is reported as an EmptyResult failure.
func (c *Client) Describe(ctx context.Context, credential domain.Credential, req domain.VisionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &sdk.ClientConfig{
		APIKey:     strings.TrimSpace(string(credential)),
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := sdk.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}

	contents := []*sdk.Content{sdk.NewContentFromParts(BuildParts(req), sdk.RoleUser)}
	genCfg := &sdk.GenerateContentConfig{
		Temperature:    sdk.Ptr(Temperature),
		TopP:           sdk.Ptr(TopP),
		CandidateCount: 1,
	}

	c.logger.Debug().
		Str("model", c.model).
		Bool("inline_image", req.Image.IsEmbedded()).
		Bool("url_context", req.ReferenceURL != "").
		Msg("gemini: generate content")

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", translateError(err)
	}
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", domain.Fail(domain.KindEmptyResult, "vision analysis returned an empty result")
	}
	return text, nil
}

func translateError(err error) error {
	var apiErr sdk.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *sdk.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &APIError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}

func extractText(resp *sdk.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
