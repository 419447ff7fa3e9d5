// Package ollama implements the caption.Captioner interface against an
// Ollama-compatible /api/generate endpoint serving a multimodal model.
package ollama
