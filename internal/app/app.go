package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"PodcastCurator/internal/classify"
	"PodcastCurator/internal/config"
	"PodcastCurator/internal/coverage"
	"PodcastCurator/internal/infrastructure/feed"
	"PodcastCurator/internal/infrastructure/podcastindex"
	"PodcastCurator/internal/infrastructure/storage"
	"PodcastCurator/internal/logging"
	"PodcastCurator/internal/ports"
	"PodcastCurator/internal/usecase"
	"PodcastCurator/internal/vcache"
)

// Application wires configuration to the pipeline and its collaborators.
type Application struct {
	cfg           config.Config
	pipeline      *usecase.Pipeline
	files         *storage.StageFiles
	coverageCache *vcache.Cache
	verifyCache   *vcache.Cache
	store         *storage.PostgresStore
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	policy, err := classify.PolicyByName(cfg.Classifier.Policy)
	if err != nil {
		return nil, fmt.Errorf("classifier policy: %w", err)
	}

	analyzer := coverage.NewAnalyzer(coverage.Policy{
		TargetYears:           cfg.Coverage.TargetYears,
		MinEpisodesPerYear:    cfg.Coverage.MinEpisodesPerYear,
		MinTranscriptsPerYear: cfg.Coverage.MinTranscriptsPerYear,
	}, baseLogger.With("component", "coverage"))

	classifier := classify.New(
		indicatorsFromConfig(cfg.Classifier),
		policy,
		baseLogger.With("component", "classifier"))

	fetcher := feed.NewFetcher(
		&http.Client{Timeout: cfg.Coverage.FetchTimeout()},
		baseLogger.With("component", "feed"))

	targetYears := analyzer.TargetYears()
	recentYear := targetYears[len(targetYears)-1]
	source := podcastindex.NewClient(cfg.Discovery, recentYear, nil,
		baseLogger.With("component", "discovery"))

	coverageCache := vcache.Load(cfg.Coverage.CachePath, baseLogger.With("component", "coverage-cache"))
	verifyCache := vcache.Load(cfg.Classifier.CachePath, baseLogger.With("component", "verify-cache"))

	files := storage.NewStageFiles(cfg.Pipeline.OutputDir)

	var store *storage.PostgresStore
	var qualifiedStore ports.QualifiedStore
	if cfg.Database.DSN != "" {
		store, err = storage.OpenPostgresStore(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("qualified store: %w", err)
		}
		qualifiedStore = store
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:        source,
		Fetcher:       fetcher,
		Analyzer:      analyzer,
		Classifier:    classifier,
		CoverageCache: coverageCache,
		VerifyCache:   verifyCache,
		Files:         files,
		Store:         qualifiedStore,
		Logger:        baseLogger.With("component", "pipeline"),
		BatchSize:     cfg.Pipeline.BatchSize,
		FlushEvery:    cfg.Pipeline.FlushEvery,
		FetchDelay:    cfg.Coverage.FetchDelay(),
	})

	return &Application{
		cfg:           cfg,
		pipeline:      pipeline,
		files:         files,
		coverageCache: coverageCache,
		verifyCache:   verifyCache,
		store:         store,
	}, nil
}

// Pipeline exposes the orchestration component.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Files exposes the stage output reader/writer.
func (a *Application) Files() *storage.StageFiles {
	return a.files
}

// Caches exposes the per-stage verification caches.
func (a *Application) Caches() (coverageCache, verifyCache *vcache.Cache) {
	return a.coverageCache, a.verifyCache
}

// Config returns the loaded configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// indicatorsFromConfig starts from the built-in lists and applies any
// configured overrides.
func indicatorsFromConfig(cfg config.ClassifierConfig) classify.Indicators {
	indicators := classify.DefaultIndicators()
	if len(cfg.OrgIndicators) > 0 {
		indicators.Org = cfg.OrgIndicators
	}
	if len(cfg.MultiPersonIndicators) > 0 {
		indicators.MultiPerson = cfg.MultiPersonIndicators
	}
	if len(cfg.SingleHostPositive) > 0 {
		indicators.SingleHostPositive = cfg.SingleHostPositive
	}
	if len(cfg.MultiHostNegative) > 0 {
		indicators.MultiHostNegative = cfg.MultiHostNegative
	}
	if len(cfg.AmbiguousTerms) > 0 {
		indicators.Ambiguous = cfg.AmbiguousTerms
	}
	if len(cfg.ScriptedIndicators) > 0 {
		indicators.Scripted = cfg.ScriptedIndicators
	}
	if len(cfg.HonorificTitles) > 0 {
		indicators.Honorifics = cfg.HonorificTitles
	}
	if len(cfg.NonPersonalTerms) > 0 {
		indicators.NonPersonal = cfg.NonPersonalTerms
	}
	return indicators
}
