package reader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLM_Read(t *testing.T) {
	ctx := context.Background()
	question := "Wie weit ist Sirius von der Erde entfernt?"

	t.Run("Parses a fenced reply", func(t *testing.T) {
		model := &MockModel{Replies: []string{
			"<think>hmm</think>\n```json\n{\"answer\": \"8.6 Lichtjahre\", \"score\": 0.93}\n```",
		}}
		r := NewLLM(model, 3, 0, nil)

		ans, err := r.Read(ctx, question, siriusContext)
		require.NoError(t, err)
		assert.Equal(t, "8.6 Lichtjahre", ans.Text)
		assert.InDelta(t, 0.93, ans.Score, 1e-9)
		require.Equal(t, 1, model.Calls())
		assert.Contains(t, model.Messages[0][0], siriusContext)
		assert.Contains(t, model.Messages[0][0], question)
	})

	t.Run("Repairs malformed JSON and clamps the score", func(t *testing.T) {
		model := &MockModel{Replies: []string{`{"answer": "8.6 Lichtjahre", "score": 7`}}
		r := NewLLM(model, 1, 0, nil)

		ans, err := r.Read(ctx, question, siriusContext)
		require.NoError(t, err)
		assert.Equal(t, "8.6 Lichtjahre", ans.Text)
		assert.Equal(t, 1.0, ans.Score)
	})

	t.Run("Restores the casing of the context", func(t *testing.T) {
		model := &MockModel{Replies: []string{`{"answer": "8.6 lichtjahre", "score": 0.5}`}}
		r := NewLLM(model, 1, 0, nil)

		ans, err := r.Read(ctx, question, siriusContext)
		require.NoError(t, err)
		assert.Equal(t, "8.6 Lichtjahre", ans.Text)
	})

	t.Run("Retries when the span is not in the context", func(t *testing.T) {
		model := &MockModel{Replies: []string{
			`{"answer": "sehr weit", "score": 0.9}`,
			`{"answer": "8.6 Lichtjahre", "score": 0.8}`,
		}}
		r := NewLLM(model, 3, 0, nil)

		ans, err := r.Read(ctx, question, siriusContext)
		require.NoError(t, err)
		assert.Equal(t, "8.6 Lichtjahre", ans.Text)
		assert.Equal(t, 2, model.Calls())
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		model := &MockModel{
			Replies: []string{""},
			Errs:    []error{errors.New("boom"), errors.New("boom")},
		}
		r := NewLLM(model, 2, 0, nil)

		_, err := r.Read(ctx, question, siriusContext)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, 2, model.Calls())
	})

	t.Run("Empty context does not call the model", func(t *testing.T) {
		model := &MockModel{Replies: []string{"{}"}}
		r := NewLLM(model, 1, 0, nil)

		_, err := r.Read(ctx, question, "")
		assert.Error(t, err)
		assert.Equal(t, 0, model.Calls())
	})
}

func TestLocateSpan(t *testing.T) {
	text := "Die Sonne ist ein star."

	span, ok := locateSpan(text, "Die Sonne")
	assert.True(t, ok)
	assert.Equal(t, "Die Sonne", span)

	span, ok = locateSpan(text, "die sonne")
	assert.True(t, ok)
	assert.Equal(t, "Die Sonne", span)

	_, ok = locateSpan(text, "Mond")
	assert.False(t, ok)

	_, ok = locateSpan(text, "")
	assert.False(t, ok)
}
