package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LovitraMehta/ChattyBot/internal/language"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
)

const (
	// DefaultCompletionTimeout bounds the single completion call.
	DefaultCompletionTimeout = 15 * time.Second

	// DefaultMaxTokens caps the reply length.
	DefaultMaxTokens = 150
)

// Generator produces a spoken-length reply in the user's language.
type Generator struct {
	llm       llm.Completer
	maxTokens int
	timeout   time.Duration
}

// NewGenerator creates a generator. Zero values select the defaults.
func NewGenerator(c llm.Completer, maxTokens int, timeout time.Duration) *Generator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &Generator{llm: c, maxTokens: maxTokens, timeout: timeout}
}

func systemPrompt(lang language.Code) string {
	return fmt.Sprintf("You are a helpful assistant. Respond in %s. Keep responses under 30 seconds when spoken.", lang.Name())
}

// Generate makes exactly one completion call. Every failure, including the
// timeout, is ErrUpstream.
func (g *Generator) Generate(ctx context.Context, transcript string, lang language.Code) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reply, err := g.llm.Complete(ctx, llm.Request{
		System:    systemPrompt(lang),
		User:      transcript,
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", fail(ErrUpstream, stageGenerate, fmt.Errorf("%s: %w", g.llm.Name(), err))
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fail(ErrUpstream, stageGenerate, llm.ErrEmptyCompletion)
	}
	return reply, nil
}
