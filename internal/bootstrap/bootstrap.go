package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/roadsign-assistant/internal/config"
	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
	"github.com/kirillkom/roadsign-assistant/internal/core/ports"
	"github.com/kirillkom/roadsign-assistant/internal/core/usecase"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/classifier/cue"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/corpus/jsonfile"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/embedding/ollama"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/llm/groq"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/vector/memindex"
)

// App wires the full pipeline. Construction is fatal on any corpus or index
// failure so a process never serves queries over partial state.
type App struct {
	Config   config.Config
	Corpus   *domain.Corpus
	Answerer ports.QueryAnswerer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())
	embedder := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, executor)

	source, closeFn, err := newCorpusSource(cfg)
	if err != nil {
		return nil, err
	}

	corpus, err := usecase.NewCorpusBuildUseCase(source, embedder).Build(ctx)
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, fmt.Errorf("build corpus: %w", err)
	}

	index, err := memindex.New(corpus)
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, fmt.Errorf("build similarity index: %w", err)
	}

	rules := cue.DefaultTable()
	if cfg.CueTablePath != "" {
		rules, err = cue.LoadTable(cfg.CueTablePath)
		if err != nil {
			if closeFn != nil {
				closeFn()
			}
			return nil, fmt.Errorf("load cue table: %w", err)
		}
	}

	generator := groq.New(groq.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqModel,
		MaxTokens:   cfg.GenMaxTokens,
		Temperature: float32(cfg.GenTemperature),
		TopP:        float32(cfg.GenTopP),
	}, executor)

	answerer := usecase.NewAnswerUseCase(
		corpus,
		embedder,
		index,
		cue.New(rules),
		generator,
		usecase.NewComposer(cfg.ContextMaxEntries, cfg.ContextMaxChars),
		cfg.RetrievalTopK,
		cfg.RetrievalMinScore,
		time.Duration(cfg.GenTimeoutSeconds)*time.Second,
	)

	return &App{
		Config:   cfg,
		Corpus:   corpus,
		Answerer: answerer,
		closeFn:  closeFn,
	}, nil
}

func newCorpusSource(cfg config.Config) (ports.CorpusSource, func(), error) {
	switch cfg.CorpusSource {
	case "file":
		return jsonfile.New(cfg.CorpusPath), nil, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewCorpusRepository(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q (want file or postgres)", cfg.CorpusSource)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
