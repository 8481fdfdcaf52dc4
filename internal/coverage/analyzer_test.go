package coverage

import (
	"fmt"
	"strings"
	"testing"

	"PodcastCurator/internal/domain"
)

func testCandidate() domain.Candidate {
	return domain.Candidate{
		ID:      42,
		Title:   "Solo Reflections",
		Author:  "Jane Doe",
		FeedURL: "https://example.org/feed.xml",
	}
}

func audioEntry(year, n int) domain.FeedEntry {
	return domain.FeedEntry{
		Title:     fmt.Sprintf("Episode %d-%d", year, n),
		Published: fmt.Sprintf("%d-06-01", year),
		Year:      year,
		Links: []domain.LinkDescriptor{
			{Type: "audio/mpeg", Href: fmt.Sprintf("https://example.org/%d/%d.mp3", year, n), Rel: "enclosure"},
		},
	}
}

func transcriptEntry(year, n int) domain.FeedEntry {
	entry := audioEntry(year, n)
	entry.Links = append(entry.Links, domain.LinkDescriptor{
		Type: "text/html",
		Href: fmt.Sprintf("https://example.org/%d/%d/notes", year, n),
		Rel:  "alternate",
	})
	return entry
}

// fullFeed returns perYear transcript-flagged entries for every target
// year.
func fullFeed(years []int, perYear int) []domain.FeedEntry {
	var entries []domain.FeedEntry
	for _, year := range years {
		for n := 0; n < perYear; n++ {
			entries = append(entries, transcriptEntry(year, n))
		}
	}
	return entries
}

func reachable(entries []domain.FeedEntry) domain.FetchResult {
	return domain.FetchResult{Reachable: true, Entries: entries}
}

func TestAnalyzeYearKeysAlwaysComplete(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	result := analyzer.Analyze(testCandidate(), reachable(nil))

	if len(result.EpisodesByYear) != 5 {
		t.Fatalf("expected 5 year buckets, got %d", len(result.EpisodesByYear))
	}
	for _, year := range []int{2020, 2021, 2022, 2023, 2024} {
		entries, ok := result.EpisodesByYear[year]
		if !ok {
			t.Fatalf("year %d missing from buckets", year)
		}
		if entries == nil {
			t.Fatalf("year %d bucket is nil, want empty list", year)
		}
	}
	if result.ValidationPassed {
		t.Fatal("empty feed must not pass validation")
	}
}

func TestAnalyzeUnreachableFeed(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	result := analyzer.Analyze(testCandidate(), domain.FetchResult{Err: "connection refused"})

	if result.RSSAvailable {
		t.Fatal("unreachable feed reported as available")
	}
	if result.ValidationPassed {
		t.Fatal("unreachable feed must not pass")
	}
	if len(result.Issues) != 1 || !strings.Contains(result.Issues[0], "connection refused") {
		t.Fatalf("expected unreachable issue, got %v", result.Issues)
	}
	if len(result.EpisodesByYear) != 5 {
		t.Fatalf("year buckets must stay complete, got %d keys", len(result.EpisodesByYear))
	}
}

func TestAnalyzeMissingFeedURL(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	candidate := testCandidate()
	candidate.FeedURL = ""

	result := analyzer.Analyze(candidate, reachable(fullFeed(analyzer.TargetYears(), 3)))
	if result.RSSAvailable || result.ValidationPassed {
		t.Fatal("candidate without feed URL must fail softly")
	}
	if len(result.Issues) == 0 {
		t.Fatal("expected an issue explaining the missing URL")
	}
}

func TestAnalyzeThresholdBoundary(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	years := analyzer.TargetYears()

	// Exactly 2 transcript-flagged entries per year passes.
	result := analyzer.Analyze(testCandidate(), reachable(fullFeed(years, 2)))
	if !result.ValidationPassed {
		t.Fatalf("exactly 2 transcripts per year must pass, issues: %v", result.Issues)
	}
	if result.TotalTargetEpisodes != 10 {
		t.Fatalf("expected 10 target episodes, got %d", result.TotalTargetEpisodes)
	}

	// Dropping one 2022 transcript to a plain episode fails, naming 2022.
	entries := fullFeed(years, 2)
	for i := range entries {
		if entries[i].Year == 2022 {
			entries[i] = audioEntry(2022, 99)
			break
		}
	}
	result = analyzer.Analyze(testCandidate(), reachable(entries))
	if result.ValidationPassed {
		t.Fatal("1 transcript in a year must fail validation")
	}
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "insufficient transcripts") && strings.Contains(issue, "2022") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected transcript issue naming 2022, got %v", result.Issues)
	}
}

func TestAnalyzeDistinctIssuesPerFailureKind(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	years := analyzer.TargetYears()

	entries := fullFeed(years, 2)
	// 2020: remove one episode entirely. 2021: both present, one loses
	// its transcript.
	var trimmed []domain.FeedEntry
	strippedTranscript := false
	for _, entry := range entries {
		if entry.Year == 2020 && strings.HasSuffix(entry.Title, "-1") {
			continue
		}
		if entry.Year == 2021 && !strippedTranscript {
			entry = audioEntry(2021, 0)
			strippedTranscript = true
		}
		trimmed = append(trimmed, entry)
	}

	result := analyzer.Analyze(testCandidate(), reachable(trimmed))
	if result.ValidationPassed {
		t.Fatal("expected validation failure")
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected two distinct issues, got %v", result.Issues)
	}
	if !strings.Contains(result.Issues[0], "insufficient episodes") || !strings.Contains(result.Issues[0], "2020(1ep)") {
		t.Fatalf("unexpected episode issue: %s", result.Issues[0])
	}
	if !strings.Contains(result.Issues[1], "insufficient transcripts") || !strings.Contains(result.Issues[1], "2021(1tx/2ep)") {
		t.Fatalf("unexpected transcript issue: %s", result.Issues[1])
	}
}

func TestAnalyzeDropsUnparsedTimestamps(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	entries := fullFeed(analyzer.TargetYears(), 2)
	entries = append(entries, domain.FeedEntry{Title: "No date", Published: "garbage", Year: 0})

	result := analyzer.Analyze(testCandidate(), reachable(entries))
	if result.TotalTargetEpisodes != 10 {
		t.Fatalf("unparsed entry must not be counted, got %d", result.TotalTargetEpisodes)
	}
	if !result.ValidationPassed {
		t.Fatalf("unparsed entry must not break validation, issues: %v", result.Issues)
	}
}

func TestAnalyzeDropsYearsOutsideWindow(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	entries := fullFeed(analyzer.TargetYears(), 2)
	entries = append(entries, transcriptEntry(2017, 0), transcriptEntry(2031, 0))

	result := analyzer.Analyze(testCandidate(), reachable(entries))
	if result.TotalTargetEpisodes != 10 {
		t.Fatalf("out-of-window entries must be dropped, got %d", result.TotalTargetEpisodes)
	}
	if _, ok := result.EpisodesByYear[2017]; ok {
		t.Fatal("out-of-window year leaked into buckets")
	}
}

func TestAnalyzeConfigurableWindow(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Policy{
		TargetYears:           []int{2018, 2019},
		MinEpisodesPerYear:    1,
		MinTranscriptsPerYear: 1,
	}, nil)

	entries := []domain.FeedEntry{transcriptEntry(2018, 0), transcriptEntry(2019, 0)}
	result := analyzer.Analyze(testCandidate(), reachable(entries))

	if !result.ValidationPassed {
		t.Fatalf("custom window should pass, issues: %v", result.Issues)
	}
	if len(result.EpisodesByYear) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(result.EpisodesByYear))
	}
}

func TestTranscriptHeuristic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		link domain.LinkDescriptor
		want bool
	}{
		{"html type", domain.LinkDescriptor{Type: "text/html", Href: "https://x/notes"}, true},
		{"transcript type", domain.LinkDescriptor{Type: "application/x-transcript", Href: "https://x/a"}, true},
		{"transcript href", domain.LinkDescriptor{Type: "audio/mpeg", Href: "https://x/ep1-TRANSCRIPT.vtt"}, true},
		{"text href", domain.LinkDescriptor{Type: "", Href: "https://x/fulltext.pdf"}, true},
		{"plain audio", domain.LinkDescriptor{Type: "audio/mpeg", Href: "https://x/ep1.mp3"}, false},
	}

	for _, tc := range cases {
		entry := markTranscript(domain.FeedEntry{Year: 2024, Links: []domain.LinkDescriptor{tc.link}})
		if entry.HasTranscript != tc.want {
			t.Fatalf("%s: HasTranscript = %v, want %v", tc.name, entry.HasTranscript, tc.want)
		}
		if tc.want && len(entry.TranscriptLinks) != 1 {
			t.Fatalf("%s: expected transcript link recorded", tc.name)
		}
	}
}

func TestRecentYearConvenienceMetric(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(DefaultPolicy(), nil)
	years := analyzer.TargetYears()

	entries := fullFeed(years, 3)
	result := analyzer.Analyze(testCandidate(), reachable(entries))
	if result.RecentYearCount != 3 || !result.HasSufficientRecent {
		t.Fatalf("expected 3 recent-year episodes, got %d (sufficient=%v)",
			result.RecentYearCount, result.HasSufficientRecent)
	}
}
