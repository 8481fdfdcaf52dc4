package domain

import "time"

// Candidate is a core entity describing podcast metadata fetched from the
// discovery API. Records are read-only once created; missing upstream
// fields stay at their zero values.
type Candidate struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	FeedURL       string `json:"url"`
	Language      string `json:"language"`
	EpisodeCount  int    `json:"episodeCount"`
	LastUpdate    int64  `json:"lastUpdateTime"`
	NewestEpisode int64  `json:"newestItemPubdate"`
}

// LinkDescriptor is one raw link attached to a feed entry.
type LinkDescriptor struct {
	Type string `json:"type"`
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// FeedEntry is a single parsed episode. Year is 0 when the publish
// timestamp could not be resolved.
type FeedEntry struct {
	Title           string           `json:"title"`
	Published       string           `json:"published"`
	Year            int              `json:"year"`
	HasTranscript   bool             `json:"has_transcript"`
	TranscriptLinks []string         `json:"transcript_links,omitempty"`
	Links           []LinkDescriptor `json:"links,omitempty"`
}

// FetchResult carries the outcome of one feed fetch. An unreachable feed
// is expressed here rather than as an error so the caller decides how to
// treat it.
type FetchResult struct {
	Reachable bool        `json:"reachable"`
	Entries   []FeedEntry `json:"entries"`
	Err       string      `json:"error,omitempty"`
}

// CoverageResult is the per-candidate outcome of feed coverage analysis.
// EpisodesByYear always holds every configured target year as a key, even
// when a year collected no entries.
type CoverageResult struct {
	Candidate           Candidate           `json:"candidate"`
	RSSAvailable        bool                `json:"rss_available"`
	EpisodesByYear      map[int][]FeedEntry `json:"episodes_by_year"`
	RecentYearCount     int                 `json:"recent_year_count"`
	HasSufficientRecent bool                `json:"has_sufficient_recent"`
	TotalTargetEpisodes int                 `json:"total_target_episodes"`
	TranscriptEpisodes  []FeedEntry         `json:"transcript_episodes"`
	ValidationPassed    bool                `json:"validation_passed"`
	Issues              []string            `json:"issues"`
}

// ClassificationResult is the per-candidate outcome of authorship
// classification. Confidence is a convex combination of the sub-scores
// and is advisory only; the verdicts are threshold predicates over the
// sub-scores themselves.
type ClassificationResult struct {
	Candidate     Candidate `json:"candidate"`
	AuthorScore   float64   `json:"author_score"`
	ContentScore  float64   `json:"content_score"`
	ScriptedScore float64   `json:"scripted_score"`
	Confidence    float64   `json:"confidence_score"`
	IsSingleHost  bool      `json:"is_single_host"`
	IsScripted    bool      `json:"is_scripted"`
	IsSelfWritten bool      `json:"is_self_written"`
	Evidence      []string  `json:"evidence"`
	Issues        []string  `json:"issues"`
}

// Qualified reports whether every classification verdict holds.
func (r ClassificationResult) Qualified() bool {
	return r.IsSingleHost && r.IsScripted && r.IsSelfWritten
}

// CacheEntry is a persisted verification outcome keyed by the candidate's
// content hash. Method names the verification method that produced it.
type CacheEntry struct {
	Key           string    `json:"key"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	AuthorScore   float64   `json:"author_score"`
	ContentScore  float64   `json:"content_score"`
	ScriptedScore float64   `json:"scripted_score"`
	Confidence    float64   `json:"confidence"`
	IsSingleHost  bool      `json:"is_single_host"`
	IsScripted    bool      `json:"is_scripted"`
	IsSelfWritten bool      `json:"is_self_written"`
	Passed        bool      `json:"passed"`
	Evidence      []string  `json:"evidence,omitempty"`
	Issues        []string  `json:"issues,omitempty"`
	Method        string    `json:"verification_method"`
	CachedAt      time.Time `json:"cached_at"`
}

// RunSummary describes one pipeline invocation.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Qualified int           `json:"qualified"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}
