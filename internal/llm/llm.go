// Package llm defines the interface for remote chat-completion backends used
// to generate spoken replies.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the backend answers without any text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Request is a single-turn completion: one system instruction, one user turn.
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// Completer produces a reply for a single-turn prompt.
type Completer interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Complete performs exactly one remote call and returns the first
	// choice's text.
	Complete(ctx context.Context, req Request) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}
