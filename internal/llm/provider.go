// Package llm generates optional narrative commentary on the top deviation
// outliers. Commentary runs after scoring, never feeds back into the model or
// the structured report body, and is written to a separate file.
package llm

import (
	"context"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// Provider is an LLM backend capable of commenting on a report.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Comment generates markdown commentary for the request.
	Comment(ctx context.Context, req CommentRequest) (*CommentResponse, error)
}

// CommentRequest is the input for commentary generation.
type CommentRequest struct {
	// Report is the finished deviation report. Providers must treat it as
	// read-only.
	Report *model.Report

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	// MaxTokens limits the response length.
	MaxTokens int
}

// CommentResponse is the provider's output.
type CommentResponse struct {
	Commentary string // markdown
	Model      string
	TokensUsed int
}
