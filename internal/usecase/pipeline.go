package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"PodcastCurator/internal/classify"
	"PodcastCurator/internal/coverage"
	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
	"PodcastCurator/internal/ports"
	"PodcastCurator/internal/vcache"
)

// Verification method tags recorded in cache entries.
const (
	MethodCoverage   = "feed_coverage_analysis"
	MethodClassifier = "automated_analysis"
)

// PipelineDeps wires all collaborators into the qualification pipeline.
type PipelineDeps struct {
	Source        ports.CandidateSource
	Fetcher       ports.FeedFetcher
	Analyzer      *coverage.Analyzer
	Classifier    *classify.Classifier
	CoverageCache *vcache.Cache
	VerifyCache   *vcache.Cache
	Files         StageWriter
	Store         ports.QualifiedStore
	Logger        *slog.Logger
	BatchSize     int
	FlushEvery    int
	FetchDelay    time.Duration
}

// StageWriter persists the documents exchanged between stages.
type StageWriter interface {
	WriteCandidates(candidates []domain.Candidate) error
	WriteCoverageResults(all, passed []domain.CoverageResult) error
	WriteQualified(results []domain.ClassificationResult) error
}

// Pipeline runs candidates through coverage validation and authorship
// classification, caching every verdict so interrupted runs resume from
// where they stopped. Single writer of both caches; batch-sequential.
type Pipeline struct {
	source        ports.CandidateSource
	fetcher       ports.FeedFetcher
	analyzer      *coverage.Analyzer
	classifier    *classify.Classifier
	coverageCache *vcache.Cache
	verifyCache   *vcache.Cache
	files         StageWriter
	store         ports.QualifiedStore
	logger        *slog.Logger
	batchSize     int
	flushEvery    int
	fetchDelay    time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	batchSize := deps.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	flushEvery := deps.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 10
	}
	return &Pipeline{
		source:        deps.Source,
		fetcher:       deps.Fetcher,
		analyzer:      deps.Analyzer,
		classifier:    deps.Classifier,
		coverageCache: deps.CoverageCache,
		verifyCache:   deps.VerifyCache,
		files:         deps.Files,
		store:         deps.Store,
		logger:        logger,
		batchSize:     batchSize,
		flushEvery:    flushEvery,
		fetchDelay:    deps.FetchDelay,
	}
}

// Collect pulls raw candidates from the discovery source and persists
// the stage-1 output.
func (p *Pipeline) Collect(ctx context.Context, targetCount int) ([]domain.Candidate, error) {
	if p.source == nil {
		return nil, fmt.Errorf("no candidate source configured")
	}

	candidates, err := p.source.Collect(ctx, targetCount)
	if err != nil {
		return nil, fmt.Errorf("collect candidates: %w", err)
	}

	if p.files != nil {
		if err := p.files.WriteCandidates(candidates); err != nil {
			return nil, fmt.Errorf("write candidates: %w", err)
		}
	}

	p.logger.Info("candidate collection complete", "count", len(candidates))
	return candidates, nil
}

// RunCoverage analyzes the unverified subset of candidates against the
// coverage policy. Cached candidates are skipped; their verdicts come
// from the cache. Returns every up-to-date result plus the passed
// subset.
func (p *Pipeline) RunCoverage(ctx context.Context, candidates []domain.Candidate) ([]domain.CoverageResult, domain.RunSummary, error) {
	summary := newSummary()
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	results := make([]domain.CoverageResult, 0, len(candidates))
	sinceFlush := 0
	fetched := false

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return results, summary, p.flushOnStop(p.coverageCache, err)
		}

		key := vcache.Key(candidate)
		if entry, ok := p.coverageCache.Get(key); ok {
			summary.Skipped++
			results = append(results, cachedCoverage(candidate, entry))
			continue
		}

		if fetched {
			if err := sleepCtx(ctx, p.fetchDelay); err != nil {
				return results, summary, p.flushOnStop(p.coverageCache, err)
			}
		}

		var result domain.CoverageResult
		err := p.safely(func() {
			fetch := p.fetcher.Fetch(ctx, candidate.FeedURL)
			result = p.analyzer.Analyze(candidate, fetch)
		})
		fetched = true
		if err != nil {
			// The candidate stays unverified and is retried next run.
			summary.Failed++
			p.logger.Error("coverage analysis failed",
				"title", candidate.Title, "feed_url", candidate.FeedURL, "error", err)
			continue
		}

		if err := p.coverageCache.Put(key, coverageEntry(key, result)); err != nil {
			summary.Failed++
			p.logger.Error("cache coverage result", "title", candidate.Title, "error", err)
			continue
		}

		summary.Processed++
		if result.ValidationPassed {
			summary.Qualified++
		}
		results = append(results, result)

		sinceFlush++
		if sinceFlush >= p.flushEvery || (i+1)%p.batchSize == 0 {
			if err := p.coverageCache.Flush(); err != nil {
				return results, summary, fmt.Errorf("flush coverage cache: %w", err)
			}
			sinceFlush = 0
		}
	}

	if err := p.coverageCache.Flush(); err != nil {
		return results, summary, fmt.Errorf("flush coverage cache: %w", err)
	}

	p.logger.Info("coverage stage complete",
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"passed", summary.Qualified,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return results, summary, nil
}

// RunClassification classifies the unverified subset of the
// coverage-passed candidates and returns the qualified set.
func (p *Pipeline) RunClassification(ctx context.Context, passed []domain.CoverageResult) ([]domain.ClassificationResult, domain.RunSummary, error) {
	summary := newSummary()
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	qualified := make([]domain.ClassificationResult, 0)
	sinceFlush := 0

	for i, coverageResult := range passed {
		if err := ctx.Err(); err != nil {
			return qualified, summary, p.flushOnStop(p.verifyCache, err)
		}

		candidate := coverageResult.Candidate
		key := vcache.Key(candidate)
		if entry, ok := p.verifyCache.Get(key); ok {
			summary.Skipped++
			if entry.Passed {
				qualified = append(qualified, cachedClassification(candidate, entry))
			}
			continue
		}

		var result domain.ClassificationResult
		err := p.safely(func() {
			result = p.classifier.Classify(candidate)
		})
		if err != nil {
			summary.Failed++
			p.logger.Error("classification failed", "title", candidate.Title, "error", err)
			continue
		}

		if err := p.verifyCache.Put(key, classificationEntry(key, result)); err != nil {
			summary.Failed++
			p.logger.Error("cache classification result", "title", candidate.Title, "error", err)
			continue
		}

		summary.Processed++
		if result.Qualified() {
			summary.Qualified++
			qualified = append(qualified, result)
			if p.store != nil {
				if err := p.store.SaveQualified(ctx, result); err != nil {
					p.logger.Warn("archive qualified candidate", "title", candidate.Title, "error", err)
				}
			}
		}

		sinceFlush++
		if sinceFlush >= p.flushEvery || (i+1)%p.batchSize == 0 {
			if err := p.verifyCache.Flush(); err != nil {
				return qualified, summary, fmt.Errorf("flush verification cache: %w", err)
			}
			sinceFlush = 0
		}
	}

	if err := p.verifyCache.Flush(); err != nil {
		return qualified, summary, fmt.Errorf("flush verification cache: %w", err)
	}

	p.logger.Info("classification stage complete",
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"qualified", summary.Qualified,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return qualified, summary, nil
}

// Run chains both stages over the given candidates and writes the stage
// output files. Re-entrant: rerunning only processes what the caches do
// not already hold.
func (p *Pipeline) Run(ctx context.Context, candidates []domain.Candidate) (domain.RunSummary, error) {
	summary := newSummary()
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	coverageResults, coverageSummary, err := p.RunCoverage(ctx, candidates)
	accumulate(&summary, coverageSummary)
	if err != nil {
		return summary, err
	}

	passed := make([]domain.CoverageResult, 0, len(coverageResults))
	for _, result := range coverageResults {
		if result.ValidationPassed {
			passed = append(passed, result)
		}
	}

	if p.files != nil {
		if err := p.files.WriteCoverageResults(coverageResults, passed); err != nil {
			return summary, fmt.Errorf("write coverage results: %w", err)
		}
	}

	qualified, classifySummary, err := p.RunClassification(ctx, passed)
	accumulate(&summary, classifySummary)
	summary.Qualified = len(qualified)
	if err != nil {
		return summary, err
	}

	if p.files != nil {
		if err := p.files.WriteQualified(qualified); err != nil {
			return summary, fmt.Errorf("write qualified set: %w", err)
		}
	}

	p.logger.Info("pipeline run complete",
		"run_id", summary.RunID,
		"input", len(candidates),
		"coverage_passed", len(passed),
		"qualified", len(qualified),
		"duration", summary.Duration.Round(time.Millisecond))

	return summary, nil
}

// safely shields the batch from a single candidate's panic.
func (p *Pipeline) safely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	fn()
	return nil
}

// flushOnStop saves whatever was computed before an interrupt.
func (p *Pipeline) flushOnStop(cache *vcache.Cache, cause error) error {
	if err := cache.Flush(); err != nil {
		return fmt.Errorf("flush on stop (%v): %w", cause, err)
	}
	return cause
}

func newSummary() domain.RunSummary {
	return domain.RunSummary{RunID: uuid.NewString()}
}

func accumulate(total *domain.RunSummary, part domain.RunSummary) {
	total.Processed += part.Processed
	total.Failed += part.Failed
	total.Skipped += part.Skipped
}

func coverageEntry(key string, result domain.CoverageResult) domain.CacheEntry {
	return domain.CacheEntry{
		Key:      key,
		Title:    result.Candidate.Title,
		Author:   result.Candidate.Author,
		Passed:   result.ValidationPassed,
		Issues:   result.Issues,
		Method:   MethodCoverage,
		CachedAt: time.Now().UTC(),
	}
}

func classificationEntry(key string, result domain.ClassificationResult) domain.CacheEntry {
	return domain.CacheEntry{
		Key:           key,
		Title:         result.Candidate.Title,
		Author:        result.Candidate.Author,
		AuthorScore:   result.AuthorScore,
		ContentScore:  result.ContentScore,
		ScriptedScore: result.ScriptedScore,
		Confidence:    result.Confidence,
		IsSingleHost:  result.IsSingleHost,
		IsScripted:    result.IsScripted,
		IsSelfWritten: result.IsSelfWritten,
		Passed:        result.Qualified(),
		Evidence:      result.Evidence,
		Issues:        result.Issues,
		Method:        MethodClassifier,
		CachedAt:      time.Now().UTC(),
	}
}

// cachedCoverage rebuilds a verdict-only result from a cache entry. Year
// buckets are not persisted, so they stay empty; downstream stages only
// need the candidate and the verdict.
func cachedCoverage(candidate domain.Candidate, entry domain.CacheEntry) domain.CoverageResult {
	return domain.CoverageResult{
		Candidate:        candidate,
		RSSAvailable:     entry.Passed,
		EpisodesByYear:   map[int][]domain.FeedEntry{},
		ValidationPassed: entry.Passed,
		Issues:           entry.Issues,
	}
}

func cachedClassification(candidate domain.Candidate, entry domain.CacheEntry) domain.ClassificationResult {
	return domain.ClassificationResult{
		Candidate:     candidate,
		AuthorScore:   entry.AuthorScore,
		ContentScore:  entry.ContentScore,
		ScriptedScore: entry.ScriptedScore,
		Confidence:    entry.Confidence,
		IsSingleHost:  entry.IsSingleHost,
		IsScripted:    entry.IsScripted,
		IsSelfWritten: entry.IsSelfWritten,
		Evidence:      entry.Evidence,
		Issues:        entry.Issues,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
