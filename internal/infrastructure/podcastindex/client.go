package podcastindex

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"PodcastCurator/internal/config"
	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
	"PodcastCurator/internal/ports"
)

const searchPageSize = 200

// Client collects podcast candidates from the PodcastIndex search API.
// It owns the SHA1 request signing and the inter-call rate limiting; the
// classification core never talks to it directly.
type Client struct {
	baseURL         string
	apiKey          string
	apiSecret       string
	searchTerms     []string
	minEpisodes     int
	activeSinceYear int
	delay           time.Duration
	httpClient      *http.Client
	logger          *slog.Logger
	now             func() time.Time
}

var _ ports.CandidateSource = (*Client)(nil)

// NewClient builds a discovery client. activeSinceYear is the newest
// target year: candidates whose feed went quiet before it are dropped at
// collection time.
func NewClient(cfg config.DiscoveryConfig, activeSinceYear int, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		apiSecret:       cfg.APISecret,
		searchTerms:     cfg.SearchTerms,
		minEpisodes:     cfg.MinEpisodeCount,
		activeSinceYear: activeSinceYear,
		delay:           cfg.RequestDelay(),
		httpClient:      client,
		logger:          logger,
		now:             time.Now,
	}
}

// Collect walks the configured search terms, deduplicates by feed ID,
// applies the basic collection filter and stops at targetCount.
func (c *Client) Collect(ctx context.Context, targetCount int) ([]domain.Candidate, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return nil, fmt.Errorf("podcastindex client misconfigured: missing credentials")
	}

	var collected []domain.Candidate
	seen := map[int64]struct{}{}

	for i, term := range c.searchTerms {
		if targetCount > 0 && len(collected) >= targetCount {
			break
		}
		if i > 0 {
			if err := sleepCtx(ctx, c.delay); err != nil {
				return collected, err
			}
		}

		candidates, err := c.search(ctx, term)
		if err != nil {
			// Upstream unavailability is soft per term; the remaining
			// terms still run.
			c.logger.Warn("search term failed", "term", term, "error", err)
			continue
		}

		added := 0
		for _, candidate := range candidates {
			if candidate.ID == 0 {
				continue
			}
			if _, ok := seen[candidate.ID]; ok {
				continue
			}
			if !c.basicFilter(candidate) {
				continue
			}
			seen[candidate.ID] = struct{}{}
			collected = append(collected, candidate)
			added++
		}
		c.logger.Info("search term processed", "term", term, "new_candidates", added)
	}

	c.logger.Info("collection complete", "total", len(collected))
	return collected, nil
}

func (c *Client) search(ctx context.Context, query string) ([]domain.Candidate, error) {
	endpoint := fmt.Sprintf("%s/search/byterm", c.baseURL)

	params := url.Values{}
	params.Set("q", query)
	params.Set("max", strconv.Itoa(searchPageSize))
	params.Set("pretty", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.sign(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("podcastindex returned %s", resp.Status)
	}

	var payload struct {
		Feeds []domain.Candidate `json:"feeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return payload.Feeds, nil
}

// sign applies the PodcastIndex authentication scheme:
// SHA1(key + secret + unix time) with the time echoed in X-Auth-Date.
func (c *Client) sign(req *http.Request) {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	sum := sha1.Sum([]byte(c.apiKey + c.apiSecret + timestamp))

	req.Header.Set("User-Agent", "PodcastCurator/1.0")
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("X-Auth-Date", timestamp)
	req.Header.Set("Authorization", hex.EncodeToString(sum[:]))
}

// basicFilter applies the stage-1 criteria only: language, catalog size,
// recency. Authorship filtering belongs to the classifier stage.
func (c *Client) basicFilter(candidate domain.Candidate) bool {
	if candidate.FeedURL == "" {
		return false
	}

	language := strings.ToLower(candidate.Language)
	if !strings.HasPrefix(language, "en") && language != "english" {
		return false
	}

	if candidate.EpisodeCount < c.minEpisodes {
		return false
	}

	if candidate.LastUpdate > 0 && candidate.NewestEpisode > 0 && c.activeSinceYear > 0 {
		lastUpdate := time.Unix(candidate.LastUpdate, 0).UTC()
		newest := time.Unix(candidate.NewestEpisode, 0).UTC()
		if lastUpdate.Year() < c.activeSinceYear || newest.Year() < c.activeSinceYear {
			c.logger.Debug("candidate inactive in recent target year",
				"title", candidate.Title,
				"last_update", lastUpdate.Format("2006-01-02"),
				"newest_episode", newest.Format("2006-01-02"))
			return false
		}
	}

	return true
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
