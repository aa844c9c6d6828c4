package repository

import "context"

// TextGenerator sends a prompt to a text generation service and returns the
// raw response body, whose shape is not guaranteed across API versions.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) ([]byte, error)
}
