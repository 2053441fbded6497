// Package nami assembles and runs the strategy-driven multi-agent research
// system: a declarative strategy catalog interpreted by one generic
// workflow engine, backed by pluggable model providers and report storage.
package nami

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nami-dev/nami/internal/engine"
	"github.com/nami-dev/nami/internal/quality"
	"github.com/nami-dev/nami/internal/strategy"
	"github.com/nami-dev/nami/internal/subagent"
	"github.com/nami-dev/nami/pkg/config"
	"github.com/nami-dev/nami/pkg/knowledge"
	"github.com/nami-dev/nami/pkg/provider"
	"github.com/nami-dev/nami/pkg/report"
)

// System is the assembled research engine plus its collaborators. Build one
// with New and share it; it is safe for concurrent runs.
type System struct {
	cfg      *config.Config
	registry *strategy.Registry
	engine   *engine.Engine
	store    report.Store
	provider provider.Provider
}

// New assembles a System from configuration. Strategy graphs and their role
// references are validated here, so a broken catalog fails construction
// rather than a run.
func New(cfg *config.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prov, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := strategy.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := registry.ValidateRoles(subagent.KnownRole); err != nil {
		return nil, err
	}

	factory := subagent.NewFactory(prov, subagent.Options{
		Timeout:          cfg.InvokeTimeout,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		InvokesPerMinute: cfg.InvokesPerMin,
	})

	var retriever knowledge.Retriever
	if cfg.KnowledgeDir != "" {
		retriever = knowledge.NewDirRetriever(cfg.KnowledgeDir)
	}

	eng := engine.New(registry, factory, quality.NewCriticAssessor(factory), engine.Options{
		MaxConcurrentUnits: cfg.MaxConcurrentUnits,
		QualityThreshold:   cfg.QualityThreshold,
		Retriever:          retriever,
	})

	store, err := report.Open(report.Config{
		Backend:   cfg.History.Backend,
		Path:      cfg.History.Path,
		RedisAddr: cfg.History.RedisAddr,
	})
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}

	return &System{
		cfg:      cfg,
		registry: registry,
		engine:   eng,
		store:    store,
		provider: prov,
	}, nil
}

// Research runs one strategy for one topic and persists the finished
// report. A strategyID of 0 falls back to the configured default, or to a
// topic-based recommendation when no default is set.
func (s *System) Research(ctx context.Context, strategyID int, topic string) (*engine.SessionResult, error) {
	if strategyID == 0 {
		strategyID = s.cfg.DefaultStrategy
	}
	if strategyID == 0 {
		strategyID = strategy.Recommend(topic)
	}

	res, err := s.engine.Run(ctx, strategyID, topic, engine.Overrides{
		MaxIterations: s.cfg.MaxIterations,
		Model:         s.cfg.ModelName,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, s.toRecord(res)); err != nil {
		// The report is already in hand; losing history is not worth
		// failing the run over.
		log.Printf("[nami] failed to persist report %s: %v", res.RunID, err)
	}
	return res, nil
}

// Recommend maps a topic to a strategy id.
func (s *System) Recommend(topic string) int {
	return strategy.Recommend(topic)
}

// Strategies returns the full catalog, ordered by id.
func (s *System) Strategies() []*strategy.Definition {
	return s.registry.List()
}

// History returns persisted reports, newest first.
func (s *System) History(ctx context.Context, limit int) ([]*report.Record, error) {
	return s.store.List(ctx, limit)
}

// Report retrieves one persisted report by run id.
func (s *System) Report(ctx context.Context, id string) (*report.Record, error) {
	return s.store.Get(ctx, id)
}

// Close releases the system's resources.
func (s *System) Close() error {
	return s.store.Close()
}

func (s *System) toRecord(res *engine.SessionResult) *report.Record {
	name := ""
	if def, err := s.registry.Get(res.StrategyID); err == nil {
		name = def.Name
	}
	aggregate := 0.0
	if res.Quality != nil {
		aggregate = res.Quality.Aggregate
	}
	return &report.Record{
		ID:               res.RunID,
		Topic:            res.Topic,
		StrategyID:       res.StrategyID,
		StrategyName:     name,
		ReportText:       res.ReportText,
		QualityAggregate: aggregate,
		IterationsUsed:   res.IterationsUsed,
		AgentTeam:        res.AgentTeam,
		BelowThreshold:   res.BelowThreshold,
		PartialConsensus: res.PartialConsensus,
		CreatedAt:        time.Now().UTC(),
	}
}

// newProvider binds the configured model backend.
func newProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:       cfg.OpenAIKey,
			DefaultModel: cfg.ModelName,
		})
	case "ollama":
		base := cfg.OllamaURL
		if base == "" {
			base = "http://localhost:11434/v1"
		}
		return provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:       "ollama",
			BaseURL:      base,
			DefaultModel: cfg.ModelName,
		})
	case "anthropic":
		return provider.NewAnthropicProvider(provider.AnthropicConfig{
			APIKey:       cfg.AnthropicKey,
			DefaultModel: cfg.ModelName,
		})
	case "mock":
		return provider.NewMockProvider("mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
