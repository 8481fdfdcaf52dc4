package ports

import (
	"context"

	"PodcastCurator/internal/domain"
)

// CandidateSource pulls raw podcast candidates from the upstream
// discovery API.
type CandidateSource interface {
	Collect(ctx context.Context, targetCount int) ([]domain.Candidate, error)
}

// FeedFetcher retrieves and parses a podcast RSS feed. Unreachable or
// malformed feeds are reported inside FetchResult, never as an error.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) domain.FetchResult
}

// QualifiedStore archives the final qualified set for audit and history.
type QualifiedStore interface {
	SaveQualified(ctx context.Context, result domain.ClassificationResult) error
}
