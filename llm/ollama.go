package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the Model interface for models served by Ollama.
type Ollama struct {
	host    string
	model   string
	params  Parameters
	timeout time.Duration

	client *api.Client

	logger *slog.Logger
}

// NewOllama creates a new Ollama instance with the specified host URL and model name.
// It returns an error when host is not a valid URL.
func NewOllama(host, model string, params Parameters, logger *slog.Logger) (Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return Ollama{}, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return Ollama{
		host:    host,
		model:   model,
		params:  params,
		timeout: defaultTimeout,
		client:  api.NewClient(u, &http.Client{}),
		logger:  logger.With(slog.String("module", "ollama")),
	}, nil
}

// Chat sends a chat message to the Ollama API.
func (o Ollama) Chat(ctx context.Context, messages []string) (string, error) {
	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs[i] = api.Message{
			Role:    role,
			Content: msg,
		}
	}

	req := o.chatRequest(msgs)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var result strings.Builder

	start := time.Now()
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		result.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	o.logger.Debug("Chat completed",
		"model", o.model,
		"duration in milliseconds", time.Since(start).Milliseconds())

	return result.String(), nil
}

func (o Ollama) chatRequest(messages []api.Message) api.ChatRequest {
	stream := false
	req := api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
	}

	opts := make(map[string]any)

	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.Seed != nil {
		opts["seed"] = *o.params.Seed
	}
	if o.params.Stop != nil {
		opts["stop"] = o.params.Stop
	}
	if o.params.TopK != nil {
		opts["top_k"] = *o.params.TopK
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	if o.params.MinP != nil {
		opts["min_p"] = *o.params.MinP
	}
	if o.params.MaxTokens != nil {
		opts["num_predict"] = *o.params.MaxTokens
	}
	if o.params.IncludeReasoning != nil {
		req.Think = o.params.IncludeReasoning
	}

	req.Options = opts

	return req
}
