// Package gemini implements the caption.Captioner interface using Google's
// Gemini API as the multimodal captioning backend.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/imageforge/caption-api/internal/caption"
	"google.golang.org/genai"
)

// Captioner calls the Gemini API to caption images.
type Captioner struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// captionSchema is the JSON shape requested from the model. Pointer fields
// let a missing key be rejected instead of silently read as "".
type captionSchema struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// NewCaptioner creates a Gemini-backed captioner.
func NewCaptioner(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Captioner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", caption.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", caption.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", caption.ErrInvalidConfig, err)
	}

	return &Captioner{
		logger: logger,
		client: client,
		model:  model,
	}, nil
}

// Ensure Captioner implements the Captioner interface.
var _ caption.Captioner = (*Captioner)(nil)

// Caption performs a single captioning call with the image attached inline
// and a JSON response MIME type, and parses the title/description pair out
// of the model's answer.
func (c *Captioner) Caption(ctx context.Context, image string) (*caption.Caption, error) {
	raw, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, fmt.Errorf("%w: image payload is not valid base64: %v",
			caption.ErrRequestFailed, err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(caption.Prompt),
		genai.NewPartFromBytes(raw, http.DetectContentType(raw)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", caption.ErrRequestFailed, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", caption.ErrInvalidResponse)
	}

	var payload captionSchema
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON object: %v",
			caption.ErrInvalidResponse, err)
	}
	if payload.Title == nil {
		return nil, fmt.Errorf("%w: missing title field", caption.ErrInvalidResponse)
	}
	if payload.Description == nil {
		return nil, fmt.Errorf("%w: missing description field", caption.ErrInvalidResponse)
	}

	c.logger.Debug("gemini caption generated", "model", c.model)
	return &caption.Caption{
		Title:       *payload.Title,
		Description: *payload.Description,
	}, nil
}
