package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/imageforge/caption-api/internal/caption"
)

// maxResponseBytes bounds how much of a backend response is read into
// memory. Caption payloads are tiny; anything larger is garbage.
const maxResponseBytes = 1 << 20

// Client calls an Ollama-style generate endpoint to caption images.
type Client struct {
	url        string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// generateRequest is the wire format of the captioning call.
type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
	Format string   `json:"format"`
}

// generateResponse is the envelope the backend answers with. Response is a
// string that itself must parse as a JSON caption payload.
type generateResponse struct {
	Response string `json:"response"`
}

// captionPayload is the object expected inside the response envelope. The
// fields are pointers so a missing field is distinguishable from an empty
// string: the backend output is untrusted and both cases are rejected.
type captionPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// NewClient creates a captioning client for the given endpoint and model.
func NewClient(url, model string, logger *slog.Logger) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: endpoint URL cannot be empty", caption.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", caption.ErrInvalidConfig)
	}

	return &Client{
		url:   url,
		model: model,
		// Per-attempt deadlines come from the caller's context, so the
		// client itself carries no timeout.
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

// Ensure Client implements the Captioner interface.
var _ caption.Captioner = (*Client)(nil)

// Caption performs a single non-streaming captioning call for the given
// base64-encoded image and returns the parsed title/description pair.
func (c *Client) Caption(ctx context.Context, image string) (*caption.Caption, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: caption.Prompt,
		Images: []string{image},
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", caption.ErrRequestFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", caption.ErrRequestFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", caption.ErrRequestFailed, err)
	}

	return parseCaption(data)
}

// parseCaption validates and extracts the caption from a raw backend
// response. Any shape mismatch is an ErrInvalidResponse.
func parseCaption(data []byte) (*caption.Caption, error) {
	var envelope generateResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: body is not valid JSON: %v", caption.ErrInvalidResponse, err)
	}

	var payload captionPayload
	if err := json.Unmarshal([]byte(envelope.Response), &payload); err != nil {
		return nil, fmt.Errorf("%w: response field is not a JSON object: %v",
			caption.ErrInvalidResponse, err)
	}

	if payload.Title == nil {
		return nil, fmt.Errorf("%w: missing title field", caption.ErrInvalidResponse)
	}
	if payload.Description == nil {
		return nil, fmt.Errorf("%w: missing description field", caption.ErrInvalidResponse)
	}

	return &caption.Caption{
		Title:       *payload.Title,
		Description: *payload.Description,
	}, nil
}
