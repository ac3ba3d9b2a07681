// Package llm provides chat model clients used by the LLM-backed reader.
package llm

import (
	"context"
	"time"
)

// Model is a chat completion model.
// A message with an even index is sent by the user, one with an odd index by the assistant.
type Model interface {
	Chat(ctx context.Context, messages []string) (string, error)
}

const defaultTimeout = time.Minute
