package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/MegaGrindStone/skyqa"
	"github.com/MegaGrindStone/skyqa/internal/config"
	"github.com/MegaGrindStone/skyqa/internal/logging"
	"github.com/MegaGrindStone/skyqa/internal/metrics"
	"github.com/MegaGrindStone/skyqa/llm"
	"github.com/MegaGrindStone/skyqa/reader"
	"github.com/MegaGrindStone/skyqa/storage"
	"github.com/kuzudb/go-kuzu"
)

// app holds everything a command needs, built from the configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	catalog  skyqa.Catalog
	names    skyqa.NameLister
	seeder   storage.Seeder
	service  *skyqa.Service
	recorder *metrics.Recorder

	closers []func() error
}

// setup loads the configuration and connects the catalog and the reader.
// Failures are logged at critical level before they are returned.
func setup(ctx context.Context, opts *rootOptions, console io.Writer) (*app, error) {
	a := &app{}

	// Until the configured logger exists, failures only go to the console.
	bootLogger, _, _ := logging.New(config.LogConfig{Level: "info"}, console)

	if err := config.LoadEnv(opts.envFile); err != nil {
		logging.Critical(bootLogger, "Failed to load environment", "error", err)
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logging.Critical(bootLogger, "Failed to load config", "path", opts.configPath, "error", err)
		return nil, err
	}
	a.cfg = cfg

	logger, logCloser, err := logging.New(cfg.Log, console)
	if err != nil {
		logging.Critical(bootLogger, "Failed to create logger", "error", err)
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, logCloser.Close)

	if err := a.openCatalog(ctx); err != nil {
		logging.Critical(logger, "Failed to open catalog", "backend", cfg.Catalog.Backend, "error", err)
		a.close()
		return nil, err
	}
	logger.Info("Opened catalog", "backend", cfg.Catalog.Backend)

	rd, err := newReader(cfg.Reader, logger)
	if err != nil {
		logging.Critical(logger, "Failed to create reader", "type", cfg.Reader.Type, "error", err)
		a.close()
		return nil, err
	}

	a.recorder = metrics.NewRecorder()
	serviceOpts := []skyqa.Option{
		skyqa.WithNames(a.names),
		skyqa.WithLogger(logger),
		skyqa.WithRecorder(a.recorder),
	}
	if cfg.Catalog.Backend == config.BackendMemory {
		serviceOpts = append(serviceOpts, skyqa.WithFallback(skyqa.NewFallbackPattern(defaultNames())))
	}
	a.service = skyqa.NewService(a.catalog, rd, serviceOpts...)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := a.recorder.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("Metrics server stopped", "error", err)
			}
		}()
	}

	return a, nil
}

func (a *app) openCatalog(ctx context.Context) error {
	c := a.cfg.Catalog

	switch c.Backend {
	case config.BackendMemory:
		mem := storage.NewMemory(storage.DefaultObjects())
		a.catalog = mem
		a.names = mem
		return nil

	case config.BackendNeo4J:
		neo, err := storage.NewNeo4J(ctx, c.Neo4J.URI, c.Neo4J.User, c.Neo4J.Password)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return neo.Close(closeCtx)
		})
		a.catalog, a.seeder = neo, neo

	case config.BackendKuzu:
		kz, err := storage.NewKuzu(c.Kuzu.Path, kuzu.DefaultSystemConfig())
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error {
			kz.Close()
			return nil
		})
		a.catalog, a.seeder = kz, kz

	case config.BackendBolt:
		bl, err := storage.NewBolt(c.Bolt.Path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, bl.Close)
		a.catalog, a.seeder = bl, bl

	case config.BackendRedis:
		rd, err := storage.NewRedis(ctx, c.Redis.Addr, c.Redis.Password, c.Redis.DB)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rd.Close)
		a.catalog, a.seeder = rd, rd

	default:
		return fmt.Errorf("unknown catalog backend %q", c.Backend)
	}

	a.names = skyqa.NewNameCache(a.catalog)
	return nil
}

func newReader(cfg config.ReaderConfig, logger *slog.Logger) (skyqa.Reader, error) {
	var model llm.Model

	switch cfg.Type {
	case config.ReaderLexical:
		return reader.NewLexical(), nil
	case config.ReaderOpenAI:
		model = llm.NewOpenAI(cfg.APIKey, cfg.Model, cfg.Parameters, logger)
	case config.ReaderOpenAICompat:
		model = llm.NewOpenAICompat(cfg.Host, cfg.APIKey, cfg.Model, cfg.Parameters, logger)
	case config.ReaderOllama:
		ollama, err := llm.NewOllama(cfg.Host, cfg.Model, cfg.Parameters, logger)
		if err != nil {
			return nil, err
		}
		model = ollama
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}

	return reader.NewLLM(model, cfg.MaxRetries, cfg.Backoff, logger), nil
}

// close releases the resources in reverse order of acquisition.
func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing resources: %v\n", err)
	}
}

// questionContext bounds one question by the configured timeout.
func (a *app) questionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.QuestionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.QuestionTimeout)
}

func defaultNames() []string {
	objects := storage.DefaultObjects()
	names := make([]string, len(objects))
	for i, obj := range objects {
		names[i] = obj.Name
	}
	return names
}
