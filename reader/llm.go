package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/MegaGrindStone/skyqa"
	"github.com/MegaGrindStone/skyqa/llm"
	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// LLM is a reader backed by a chat model. The model is asked to copy the answer span out of the
// context; a reply whose span is not part of the context counts as a failed attempt.
type LLM struct {
	model      llm.Model
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

type llmReply struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

const extractPrompt = `Du bist ein extraktives Frage-Antwort-System.
Beantworte die Frage ausschließlich mit einem Textabschnitt, der wörtlich im Kontext vorkommt.
Antworte nur mit JSON im Format {"answer": "<Abschnitt>", "score": <Zahl zwischen 0 und 1>}.

Kontext:
{{.Context}}

Frage:
{{.Question}}
`

var extractTemplate = template.Must(template.New("extract").Parse(extractPrompt))

// NewLLM creates a reader that calls model at most maxRetries times per question.
// A nil logger discards the reader's logs.
func NewLLM(model llm.Model, maxRetries int, backoff time.Duration, logger *slog.Logger) LLM {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return LLM{
		model:      model,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger.With(slog.String("module", "reader")),
	}
}

// Read implements skyqa.Reader.
func (l LLM) Read(ctx context.Context, question, text string) (skyqa.Answer, error) {
	if strings.TrimSpace(text) == "" {
		return skyqa.Answer{}, fmt.Errorf("empty context")
	}

	var buf bytes.Buffer
	if err := extractTemplate.Execute(&buf, struct{ Question, Context string }{question, text}); err != nil {
		return skyqa.Answer{}, fmt.Errorf("failed to render prompt: %w", err)
	}
	prompt := buf.String()

	var lastErr error
	for retry := 0; retry < l.maxRetries; retry++ {
		if retry > 0 && l.backoff > 0 {
			select {
			case <-ctx.Done():
				return skyqa.Answer{}, ctx.Err()
			case <-time.After(l.backoff):
			}
		}

		answer, err := l.attempt(ctx, prompt, text)
		if err == nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return skyqa.Answer{}, ctx.Err()
		}
		lastErr = err
		l.logger.Warn("Retry read", "retry", retry+1, "error", err)
	}
	return skyqa.Answer{}, fmt.Errorf("failed to read answer after %d attempts: %w", l.maxRetries, lastErr)
}

func (l LLM) attempt(ctx context.Context, prompt, text string) (skyqa.Answer, error) {
	raw, err := l.model.Chat(ctx, []string{prompt})
	if err != nil {
		return skyqa.Answer{}, fmt.Errorf("failed to call LLM: %w", err)
	}
	l.logger.Debug("LLM reply", "reply", raw)

	repaired, err := jsonrepair.RepairJSON(llm.CleanResponse(raw))
	if err != nil {
		return skyqa.Answer{}, fmt.Errorf("failed to repair llm result: %w", err)
	}

	var reply llmReply
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return skyqa.Answer{}, fmt.Errorf("failed to parse llm result: %w", err)
	}

	span, ok := locateSpan(text, strings.TrimSpace(reply.Answer))
	if !ok {
		return skyqa.Answer{}, fmt.Errorf("answer %q is not part of the context", reply.Answer)
	}
	return skyqa.Answer{Text: span, Score: clamp(reply.Score)}, nil
}

// locateSpan returns the text of span as it is written in text.
// Models tend to change the case of a span, so a case-insensitive match is accepted as well.
func locateSpan(text, span string) (string, bool) {
	if span == "" {
		return "", false
	}
	if strings.Contains(text, span) {
		return span, true
	}
	lowerText, lowerSpan := strings.ToLower(text), strings.ToLower(span)
	// Lowering can change byte lengths, in which case offsets no longer map back onto text.
	if len(lowerText) != len(text) || len(lowerSpan) != len(span) {
		return "", false
	}
	idx := strings.Index(lowerText, lowerSpan)
	if idx < 0 {
		return "", false
	}
	return text[idx : idx+len(span)], true
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
