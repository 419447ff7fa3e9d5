// Package caption defines the boundary between the job pipeline and the
// external multimodal captioning model. The pipeline depends only on the
// Captioner interface; concrete backends live under internal/platform.
package caption

import (
	"context"
)

// Prompt is the fixed instruction sent with every captioning call. It asks
// the model for a short, imaginative RPG-style name and description of the
// depicted subject, emitted as a JSON object.
const Prompt = `Look at this image and invent an RPG-style name and description for the depicted character or item. Be playful and imaginative; the name should be 2-10 words and the description 10-20 words.
Respond with JSON in exactly this shape:
{
    "title": "name",
    "description": "description"
}
Output only the JSON object, nothing else.`

// Caption is a generated title/description pair for one image.
type Caption struct {
	Title       string
	Description string
}

// Captioner produces a caption for a single base64-encoded image. One call
// is one attempt against the backend; the job worker owns the retry policy.
//
// Implementations must treat the backend response as untrusted input: a
// response that does not carry both a title and a description is an error,
// never a partially-filled Caption.
type Captioner interface {
	Caption(ctx context.Context, image string) (*Caption, error)
}
