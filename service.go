package skyqa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"time"
)

// Outcome classifies how a question was handled.
type Outcome string

const (
	// OutcomeAnswered means the reader produced an answer.
	OutcomeAnswered Outcome = "answered"
	// OutcomeNoObject means no known object was found in the question.
	OutcomeNoObject Outcome = "no_object"
	// OutcomeNotInCatalog means the resolved object is missing from the catalog.
	OutcomeNotInCatalog Outcome = "not_in_catalog"
	// OutcomeFailed means the storage, the context builder or the reader failed.
	OutcomeFailed Outcome = "failed"
)

// Recorder receives one observation per handled question.
type Recorder interface {
	ObserveAnswer(outcome Outcome, duration time.Duration)
}

// Trace holds the intermediate state of one question.
type Trace struct {
	Question string
	Object   string
	Context  string
	Answer   Answer
	Outcome  Outcome
}

// Service answers questions against a catalog.
type Service struct {
	catalog  Catalog
	names    NameLister
	reader   Reader
	resolver Resolver
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNames sets the source of names the resolver matches against, typically a *NameCache in front
// of the catalog. By default the catalog itself is listed on every question.
func WithNames(names NameLister) Option {
	return func(s *Service) {
		s.names = names
	}
}

// WithFallback enables the resolver's regular expression fallback.
func WithFallback(pattern *regexp.Regexp) Option {
	return func(s *Service) {
		s.resolver.Fallback = pattern
	}
}

// WithRecorder sets the recorder notified after each question.
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service that looks objects up in catalog and extracts answers with reader.
func NewService(catalog Catalog, reader Reader, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		names:   catalog,
		reader:  reader,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("module", "skyqa"))
	return s
}

// Answer returns the answer to question.
//
// A question without a known object and an object missing from the catalog both produce a fixed
// message and a nil error. Failures of the catalog, the context builder or the reader are returned
// as *StorageError, *MissingFieldError or *InferenceError.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	trace, err := s.Explain(ctx, question)
	if err != nil {
		return "", err
	}
	return trace.Answer.Text, nil
}

// Explain answers question like Answer and returns every intermediate step.
func (s *Service) Explain(ctx context.Context, question string) (trace Trace, err error) {
	trace.Question = question
	trace.Outcome = OutcomeFailed

	start := time.Now()
	defer func() {
		s.logger.Debug("Handled question",
			"outcome", trace.Outcome,
			"duration in milliseconds", time.Since(start).Milliseconds())
		if s.recorder != nil {
			s.recorder.ObserveAnswer(trace.Outcome, time.Since(start))
		}
	}()

	names, err := s.names.ListNames(ctx)
	if err != nil {
		err = asStorageError("list names", err)
		s.logger.Error("Failed to list object names", "error", err)
		return trace, err
	}

	name, ok := s.resolver.Resolve(question, names)
	if !ok {
		s.logger.Info("No known object in question", "question", question)
		trace.Outcome = OutcomeNoObject
		trace.Answer = Answer{Text: MsgNoObjectRecognized}
		return trace, nil
	}
	trace.Object = name
	s.logger.Info("Resolved object", "object", name)

	obj, err := s.catalog.Lookup(ctx, name)
	if errors.Is(err, ErrObjectNotFound) {
		s.logger.Warn("Resolved object is not in the catalog", "object", name)
		trace.Outcome = OutcomeNotInCatalog
		trace.Answer = Answer{Text: MsgNoInformation}
		return trace, nil
	}
	if err != nil {
		err = asStorageError("lookup", err)
		s.logger.Error("Failed to look up object", "object", name, "error", err)
		return trace, err
	}

	trace.Context, err = BuildContext(obj)
	if err != nil {
		s.logger.Error("Failed to build context", "object", name, "error", err)
		return trace, err
	}
	s.logger.Debug("Built context", "context", trace.Context)

	answer, err := s.reader.Read(ctx, question, trace.Context)
	if err != nil {
		var inferenceErr *InferenceError
		if !errors.As(err, &inferenceErr) {
			err = &InferenceError{Err: err}
		}
		s.logger.Error("Failed to read answer", "object", name, "error", err)
		return trace, err
	}

	trace.Answer = answer
	trace.Outcome = OutcomeAnswered
	s.logger.Debug("Read answer", "answer", answer.Text, "score", answer.Score)
	return trace, nil
}

func asStorageError(op string, err error) error {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
