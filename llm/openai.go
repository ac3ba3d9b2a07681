package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI provides an implementation of the Model interface for OpenAI's chat completion API and
// for servers speaking the same protocol.
type OpenAI struct {
	model   string
	params  Parameters
	timeout time.Duration

	client *goopenai.Client
	logger *slog.Logger
}

// NewOpenAI creates a new OpenAI instance.
func NewOpenAI(apiKey, model string, params Parameters, logger *slog.Logger) OpenAI {
	return OpenAI{
		model:   model,
		params:  params,
		timeout: defaultTimeout,
		client:  goopenai.NewClient(apiKey),
		logger:  logger.With(slog.String("module", "openai")),
	}
}

// NewOpenAICompat creates an OpenAI instance talking to an OpenAI-compatible server at host,
// such as vLLM, llama.cpp or LM Studio.
func NewOpenAICompat(host, apiKey, model string, params Parameters, logger *slog.Logger) OpenAI {
	config := goopenai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(host, "/")

	return OpenAI{
		model:   model,
		params:  params,
		timeout: 2 * defaultTimeout,
		client:  goopenai.NewClientWithConfig(config),
		logger:  logger.With(slog.String("module", "openaicompat"), slog.String("host", config.BaseURL)),
	}
}

// Chat sends a chat message to the API.
func (o OpenAI) Chat(ctx context.Context, messages []string) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		role := goopenai.ChatMessageRoleUser
		if i%2 == 1 {
			role = goopenai.ChatMessageRoleAssistant
		}
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    role,
			Content: msg,
		}
	}

	req := o.chatRequest(msgs)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	o.logger.Debug("Chat completed",
		"model", o.model,
		"duration in milliseconds", time.Since(start).Milliseconds(),
		"total tokens", resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}

	return resp.Choices[0].Message.Content, nil
}

func (o OpenAI) chatRequest(messages []goopenai.ChatCompletionMessage) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}

	if o.params.Temperature != nil {
		req.Temperature = *o.params.Temperature
	}
	if o.params.TopP != nil {
		req.TopP = *o.params.TopP
	}
	if o.params.Stop != nil {
		req.Stop = o.params.Stop
	}
	if o.params.Seed != nil {
		req.Seed = o.params.Seed
	}
	if o.params.MaxTokens != nil {
		req.MaxTokens = *o.params.MaxTokens
	}

	return req
}
