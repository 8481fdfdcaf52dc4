package coverage

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
)

// Policy fixes the collection window and the per-year minimums. The year
// set encodes dataset policy, not a structural constant.
type Policy struct {
	TargetYears           []int
	MinEpisodesPerYear    int
	MinTranscriptsPerYear int
}

// DefaultPolicy is the reference collection window.
func DefaultPolicy() Policy {
	return Policy{
		TargetYears:           []int{2020, 2021, 2022, 2023, 2024},
		MinEpisodesPerYear:    2,
		MinTranscriptsPerYear: 2,
	}
}

var transcriptTypeMarkers = []string{"text/", "html", "transcript"}
var transcriptHrefMarkers = []string{"transcript", "text"}

// Analyzer buckets feed entries by publication year and validates them
// against the minimum-coverage policy. It performs no I/O; feed fetching
// belongs to the FeedFetcher collaborator.
type Analyzer struct {
	policy Policy
	logger *slog.Logger
}

// NewAnalyzer validates and captures the policy.
func NewAnalyzer(policy Policy, logger *slog.Logger) *Analyzer {
	if len(policy.TargetYears) == 0 {
		policy.TargetYears = DefaultPolicy().TargetYears
	}
	if policy.MinEpisodesPerYear <= 0 {
		policy.MinEpisodesPerYear = DefaultPolicy().MinEpisodesPerYear
	}
	if policy.MinTranscriptsPerYear <= 0 {
		policy.MinTranscriptsPerYear = DefaultPolicy().MinTranscriptsPerYear
	}
	years := append([]int(nil), policy.TargetYears...)
	sort.Ints(years)
	policy.TargetYears = years

	if logger == nil {
		logger = logging.Nop()
	}
	return &Analyzer{policy: policy, logger: logger}
}

// Analyze evaluates one candidate's fetched entries. All failures are
// soft: they land in Issues, never in an error.
func (a *Analyzer) Analyze(candidate domain.Candidate, fetch domain.FetchResult) domain.CoverageResult {
	result := domain.CoverageResult{
		Candidate:          candidate,
		EpisodesByYear:     a.emptyBuckets(),
		TranscriptEpisodes: []domain.FeedEntry{},
		Issues:             []string{},
	}

	if candidate.FeedURL == "" {
		result.Issues = append(result.Issues, "no feed URL provided")
		return result
	}
	if !fetch.Reachable {
		issue := "feed unreachable"
		if fetch.Err != "" {
			issue = fmt.Sprintf("feed unreachable: %s", fetch.Err)
		}
		result.Issues = append(result.Issues, issue)
		return result
	}

	result.RSSAvailable = true

	for _, entry := range fetch.Entries {
		if entry.Year == 0 {
			// Unparsable timestamps are expected noise; the entry counts
			// toward neither numerator nor denominator.
			continue
		}
		if !a.targetYear(entry.Year) {
			continue
		}
		entry = markTranscript(entry)
		result.EpisodesByYear[entry.Year] = append(result.EpisodesByYear[entry.Year], entry)
		result.TotalTargetEpisodes++
		if entry.HasTranscript {
			result.TranscriptEpisodes = append(result.TranscriptEpisodes, entry)
		}
	}

	recentYear := a.policy.TargetYears[len(a.policy.TargetYears)-1]
	result.RecentYearCount = len(result.EpisodesByYear[recentYear])
	result.HasSufficientRecent = result.RecentYearCount >= a.policy.MinEpisodesPerYear

	var shortEpisodes, shortTranscripts []string
	for _, year := range a.policy.TargetYears {
		entries := result.EpisodesByYear[year]
		transcripts := 0
		for _, entry := range entries {
			if entry.HasTranscript {
				transcripts++
			}
		}
		if len(entries) < a.policy.MinEpisodesPerYear {
			shortEpisodes = append(shortEpisodes, fmt.Sprintf("%d(%dep)", year, len(entries)))
		} else if transcripts < a.policy.MinTranscriptsPerYear {
			shortTranscripts = append(shortTranscripts, fmt.Sprintf("%d(%dtx/%dep)", year, transcripts, len(entries)))
		}
	}

	if len(shortEpisodes) > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"insufficient episodes in years: %s (need >=%d each year)",
			strings.Join(shortEpisodes, ", "), a.policy.MinEpisodesPerYear))
	}
	if len(shortTranscripts) > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"insufficient transcripts in years: %s (need >=%d with transcripts each year)",
			strings.Join(shortTranscripts, ", "), a.policy.MinTranscriptsPerYear))
	} else if len(shortEpisodes) == 0 && !result.HasSufficientRecent {
		result.Issues = append(result.Issues, fmt.Sprintf(
			"only %d episodes in %d, need >=%d",
			result.RecentYearCount, recentYear, a.policy.MinEpisodesPerYear))
	}

	result.ValidationPassed = len(shortEpisodes) == 0 && len(shortTranscripts) == 0

	a.logger.Debug("coverage analyzed",
		"title", candidate.Title,
		"total_episodes", result.TotalTargetEpisodes,
		"transcripts", len(result.TranscriptEpisodes),
		"passed", result.ValidationPassed)

	return result
}

// TargetYears exposes the sorted collection window.
func (a *Analyzer) TargetYears() []int {
	return append([]int(nil), a.policy.TargetYears...)
}

func (a *Analyzer) emptyBuckets() map[int][]domain.FeedEntry {
	buckets := make(map[int][]domain.FeedEntry, len(a.policy.TargetYears))
	for _, year := range a.policy.TargetYears {
		buckets[year] = []domain.FeedEntry{}
	}
	return buckets
}

func (a *Analyzer) targetYear(year int) bool {
	for _, y := range a.policy.TargetYears {
		if y == year {
			return true
		}
	}
	return false
}

// markTranscript flags transcript presence from the entry's raw link
// descriptors. Surface heuristic only; provenance is not verified.
func markTranscript(entry domain.FeedEntry) domain.FeedEntry {
	entry.HasTranscript = false
	entry.TranscriptLinks = nil

	for _, link := range entry.Links {
		linkType := strings.ToLower(link.Type)
		href := strings.ToLower(link.Href)

		matched := false
		for _, marker := range transcriptTypeMarkers {
			if strings.Contains(linkType, marker) {
				matched = true
				break
			}
		}
		if !matched {
			for _, marker := range transcriptHrefMarkers {
				if strings.Contains(href, marker) {
					matched = true
					break
				}
			}
		}
		if matched {
			entry.HasTranscript = true
			entry.TranscriptLinks = append(entry.TranscriptLinks, link.Href)
		}
	}

	return entry
}
