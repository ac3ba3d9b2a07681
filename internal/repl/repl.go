// Package repl implements the interactive question loop of the skyqa command.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MegaGrindStone/skyqa"
	"github.com/google/uuid"
)

// ExampleQuestions are asked by RunExample.
var ExampleQuestions = []string{
	"Wie weit ist die Sonne von der Erde entfernt?",
	"Was ist der Orion-Nebel?",
	"Beschreibe die Andromeda-Galaxie.",
}

const helpText = `
    Verfügbare Befehle:
    - exit: Beendet das Programm
    - help: Zeigt diese Hilfe an
    - update: Aktualisiert die Liste der verfügbaren Objekte
    - clear: Leert den Bildschirm

    Beispielfragen:
    - Wie weit ist [Objekt] von der Erde entfernt?
    - Was ist [Objekt]?
    - Beschreibe [Objekt].
`

// ANSI: clear screen, cursor home.
const clearScreen = "\033[2J\033[H"

// Answerer answers a single question.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Invalidator is implemented by name sources that cache, such as *skyqa.NameCache.
type Invalidator interface {
	Invalidate()
}

// Session is one interactive run over an input and an output stream.
type Session struct {
	service Answerer
	names   skyqa.NameLister
	in      io.Reader
	out     io.Writer
	timeout time.Duration
	logger  *slog.Logger
}

// NewSession creates a session. A zero timeout leaves questions unbounded.
func NewSession(
	service Answerer,
	names skyqa.NameLister,
	in io.Reader,
	out io.Writer,
	timeout time.Duration,
	logger *slog.Logger,
) *Session {
	return &Session{
		service: service,
		names:   names,
		in:      in,
		out:     out,
		timeout: timeout,
		logger:  logger.With(slog.String("module", "repl")),
	}
}

// Run prints the banner and handles lines until exit, end of input or ctx cancellation.
// Per-question failures are reported and the loop continues. Only a failure to list the objects
// for the banner is returned.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n=== Astronomie-Informationssystem ===")
	fmt.Fprintln(s.out, "Geben Sie 'help' ein für mehr Informationen.")

	names, err := s.names.ListNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}
	fmt.Fprintln(s.out, "\nVerfügbare Objekte:", strings.Join(names, ", "))

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Error("Failed to read input", "error", err)
		}
	}()

	for {
		fmt.Fprint(s.out, "\nIhre Frage: ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\nProgramm wurde vom Benutzer beendet.")
			s.logger.Info("Session interrupted")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}

		if !s.handle(ctx, strings.TrimSpace(line)) {
			return nil
		}
	}
}

// handle processes one input line and reports whether the loop goes on.
func (s *Session) handle(ctx context.Context, input string) bool {
	switch strings.ToLower(input) {
	case "exit":
		fmt.Fprintln(s.out, "Auf Wiedersehen!")
		return false
	case "help":
		fmt.Fprint(s.out, helpText)
	case "update":
		s.update(ctx)
	case "clear":
		fmt.Fprint(s.out, clearScreen)
	default:
		answer, err := s.ask(ctx, input)
		if err != nil {
			fmt.Fprintf(s.out, "\nFehler bei der Verarbeitung: %v\n", err)
			fmt.Fprintln(s.out, "Bitte versuchen Sie es erneut oder geben Sie 'help' ein.")
			return true
		}
		fmt.Fprintln(s.out, "\nAntwort:", answer)
	}
	return true
}

func (s *Session) update(ctx context.Context) {
	if inv, ok := s.names.(Invalidator); ok {
		inv.Invalidate()
		s.logger.Info("Object cache invalidated")
	}
	names, err := s.names.ListNames(ctx)
	if err != nil {
		s.logger.Error("Failed to reload objects", "error", err)
		fmt.Fprintf(s.out, "\nFehler bei der Verarbeitung: %v\n", err)
		fmt.Fprintln(s.out, "Bitte versuchen Sie es erneut oder geben Sie 'help' ein.")
		return
	}
	fmt.Fprintln(s.out, "Objektliste aktualisiert!")
	fmt.Fprintln(s.out, "Verfügbare Objekte:", strings.Join(names, ", "))
}

func (s *Session) ask(ctx context.Context, question string) (string, error) {
	logger := s.logger.With("request_id", uuid.NewString())

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := s.service.Answer(ctx, question)
	if err != nil {
		logger.Error("Failed to answer question", "question", question, "error", err)
		return "", err
	}
	logger.Debug("Answered question",
		"question", question,
		"duration in milliseconds", time.Since(start).Milliseconds())
	return answer, nil
}

// RunExample asks the example questions one after another and prints the answers.
// A failing question is reported and the run continues.
func (s *Session) RunExample(ctx context.Context) {
	fmt.Fprintln(s.out, "\n=== Beispielanwendung ===")
	for _, question := range ExampleQuestions {
		fmt.Fprintf(s.out, "\nFrage: %s\n", question)
		answer, err := s.ask(ctx, question)
		if err != nil {
			fmt.Fprintf(s.out, "Fehler bei der Beispielfrage: %v\n", err)
			continue
		}
		fmt.Fprintln(s.out, "Antwort:", answer)
	}
}
