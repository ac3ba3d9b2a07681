package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MegaGrindStone/skyqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockAnswerer struct {
	answers map[string]string
	err     error

	// For tracking interactions
	questions []string
	deadlines []bool
}

type MockNames struct {
	names   []string
	listErr error

	listCalls       int
	invalidateCalls int
}

func (m *MockAnswerer) Answer(ctx context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	_, hasDeadline := ctx.Deadline()
	m.deadlines = append(m.deadlines, hasDeadline)

	if m.err != nil {
		return "", m.err
	}
	if answer, ok := m.answers[question]; ok {
		return answer, nil
	}
	return skyqa.MsgNoObjectRecognized, nil
}

func (m *MockNames) ListNames(context.Context) ([]string, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.names, nil
}

func (m *MockNames) Invalidate() {
	m.invalidateCalls++
}

func newTestSession(answerer Answerer, names skyqa.NameLister, input string, out io.Writer) *Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSession(answerer, names, strings.NewReader(input), out, time.Minute, logger)
}

func TestSession_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Banner and questions", func(t *testing.T) {
		answerer := &MockAnswerer{answers: map[string]string{
			"Wie weit ist Sirius entfernt?": "8.6 Lichtjahre",
		}}
		names := &MockNames{names: []string{"Jupiter", "Sirius"}}
		var out bytes.Buffer

		err := newTestSession(answerer, names, "Wie weit ist Sirius entfernt?\nexit\nnever asked\n", &out).Run(ctx)
		require.NoError(t, err)

		assert.Contains(t, out.String(), "=== Astronomie-Informationssystem ===")
		assert.Contains(t, out.String(), "Verfügbare Objekte: Jupiter, Sirius")
		assert.Contains(t, out.String(), "Antwort: 8.6 Lichtjahre")
		assert.Contains(t, out.String(), "Auf Wiedersehen!")
		assert.Equal(t, []string{"Wie weit ist Sirius entfernt?"}, answerer.questions)
		assert.Equal(t, []bool{true}, answerer.deadlines)
	})

	t.Run("Commands are case-insensitive", func(t *testing.T) {
		answerer := &MockAnswerer{}
		names := &MockNames{names: []string{"Sirius"}}
		var out bytes.Buffer

		err := newTestSession(answerer, names, "HELP\nClear\nUpdate\nEXIT\n", &out).Run(ctx)
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Verfügbare Befehle:")
		assert.Contains(t, out.String(), clearScreen)
		assert.Contains(t, out.String(), "Objektliste aktualisiert!")
		assert.Empty(t, answerer.questions)
		assert.Equal(t, 1, names.invalidateCalls)
		assert.Equal(t, 2, names.listCalls)
	})

	t.Run("Errors keep the loop running", func(t *testing.T) {
		answerer := &MockAnswerer{err: &skyqa.StorageError{Op: "lookup", Err: errors.New("connection reset")}}
		names := &MockNames{names: []string{"Sirius"}}
		var out bytes.Buffer

		err := newTestSession(answerer, names, "Was ist Sirius?\nWas ist Sirius?\n", &out).Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, strings.Count(out.String(), "Fehler bei der Verarbeitung: storage lookup: connection reset"))
		assert.Contains(t, out.String(), "Bitte versuchen Sie es erneut oder geben Sie 'help' ein.")
		assert.Len(t, answerer.questions, 2)
	})

	t.Run("End of input ends the loop", func(t *testing.T) {
		answerer := &MockAnswerer{}
		var out bytes.Buffer

		err := newTestSession(answerer, &MockNames{}, "", &out).Run(ctx)
		assert.NoError(t, err)
		assert.Empty(t, answerer.questions)
	})

	t.Run("Unknown objects are answered by the service", func(t *testing.T) {
		answerer := &MockAnswerer{}
		var out bytes.Buffer

		err := newTestSession(answerer, &MockNames{}, "Was ist Pluto?\n", &out).Run(ctx)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Antwort: "+skyqa.MsgNoObjectRecognized)
	})

	t.Run("Listing failure at start", func(t *testing.T) {
		names := &MockNames{listErr: errors.New("connection refused")}

		err := newTestSession(&MockAnswerer{}, names, "exit\n", io.Discard).Run(ctx)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("Failed update is reported", func(t *testing.T) {
		names := &MockNames{names: []string{"Sirius"}}
		var out bytes.Buffer
		session := newTestSession(&MockAnswerer{}, names, "", &out)

		names.listErr = errors.New("timeout")
		assert.True(t, session.handle(ctx, "update"))
		assert.Contains(t, out.String(), "Fehler bei der Verarbeitung: timeout")
		assert.NotContains(t, out.String(), "Objektliste aktualisiert!")
	})

	t.Run("Cancelled context ends the loop", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		pr, pw := io.Pipe()
		defer pw.Close()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		var out bytes.Buffer
		session := NewSession(&MockAnswerer{}, &MockNames{}, pr, &out, 0, logger)

		assert.NoError(t, session.Run(cctx))
		assert.Contains(t, out.String(), "Programm wurde vom Benutzer beendet.")
	})
}

func TestSession_RunExample(t *testing.T) {
	answerer := &MockAnswerer{answers: map[string]string{
		ExampleQuestions[0]: "1.581e-05 Lichtjahre",
		ExampleQuestions[2]: "galaxy",
	}}
	var out bytes.Buffer
	session := newTestSession(answerer, &MockNames{}, "", &out)

	session.RunExample(context.Background())

	assert.Equal(t, ExampleQuestions, answerer.questions)
	assert.Contains(t, out.String(), "=== Beispielanwendung ===")
	assert.Contains(t, out.String(), "Frage: Beschreibe die Andromeda-Galaxie.")
	assert.Contains(t, out.String(), "Antwort: galaxy")
}

func TestSession_RunExampleContinuesOnError(t *testing.T) {
	answerer := &MockAnswerer{err: errors.New("model unavailable")}
	var out bytes.Buffer
	session := newTestSession(answerer, &MockNames{}, "", &out)

	session.RunExample(context.Background())

	assert.Len(t, answerer.questions, 3)
	assert.Equal(t, 3, strings.Count(out.String(), "Fehler bei der Beispielfrage: model unavailable"))
}
