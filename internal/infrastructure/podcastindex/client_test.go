package podcastindex

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PodcastCurator/internal/config"
	"PodcastCurator/internal/domain"
)

const (
	testKey    = "test-key"
	testSecret = "test-secret"
)

func activeCandidate(id int64, title string) domain.Candidate {
	stamp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
	return domain.Candidate{
		ID:            id,
		Title:         title,
		Author:        "Jane Doe",
		FeedURL:       "https://example.org/" + title + ".xml",
		Language:      "en-us",
		EpisodeCount:  50,
		LastUpdate:    stamp,
		NewestEpisode: stamp,
	}
}

// searchServer returns a PodcastIndex-shaped server that verifies the
// request signature and serves per-term feed lists.
func searchServer(t *testing.T, feedsByTerm map[string][]domain.Candidate) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := r.Header.Get("X-Auth-Date")
		sum := sha1.Sum([]byte(testKey + testSecret + date))
		if r.Header.Get("Authorization") != hex.EncodeToString(sum[:]) {
			t.Errorf("bad signature for date %q", date)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Auth-Key") != testKey {
			t.Errorf("missing auth key header")
		}

		feeds, ok := feedsByTerm[r.URL.Query().Get("q")]
		if !ok {
			http.Error(w, "no such term", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string][]domain.Candidate{"feeds": feeds})
	}))
}

func testClient(server *httptest.Server, terms []string) *Client {
	client := NewClient(config.DiscoveryConfig{
		BaseURL:         server.URL,
		APIKey:          testKey,
		APISecret:       testSecret,
		SearchTerms:     terms,
		MinEpisodeCount: 20,
	}, 2024, server.Client(), nil)
	client.now = func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	}
	client.delay = 0
	return client
}

func TestCollectSignsAndCollects(t *testing.T) {
	t.Parallel()

	server := searchServer(t, map[string][]domain.Candidate{
		"storytelling": {activeCandidate(1, "one"), activeCandidate(2, "two")},
	})
	defer server.Close()

	collected, err := testClient(server, []string{"storytelling"}).Collect(context.Background(), 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(collected) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(collected))
	}
}

func TestCollectDeduplicatesAcrossTerms(t *testing.T) {
	t.Parallel()

	shared := activeCandidate(1, "shared")
	server := searchServer(t, map[string][]domain.Candidate{
		"a": {shared, activeCandidate(2, "two")},
		"b": {shared, activeCandidate(3, "three")},
	})
	defer server.Close()

	collected, err := testClient(server, []string{"a", "b"}).Collect(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(collected) != 3 {
		t.Fatalf("expected 3 deduplicated candidates, got %d", len(collected))
	}
}

func TestCollectBasicFilter(t *testing.T) {
	t.Parallel()

	nonEnglish := activeCandidate(2, "german")
	nonEnglish.Language = "de"

	tooSmall := activeCandidate(3, "small")
	tooSmall.EpisodeCount = 5

	stale := activeCandidate(4, "stale")
	stale.LastUpdate = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	stale.NewestEpisode = stale.LastUpdate

	noURL := activeCandidate(5, "nourl")
	noURL.FeedURL = ""

	server := searchServer(t, map[string][]domain.Candidate{
		"terms": {activeCandidate(1, "keep"), nonEnglish, tooSmall, stale, noURL},
	})
	defer server.Close()

	collected, err := testClient(server, []string{"terms"}).Collect(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(collected) != 1 || collected[0].ID != 1 {
		t.Fatalf("filter should keep only candidate 1, got %+v", collected)
	}
}

func TestCollectTargetCountCutoff(t *testing.T) {
	t.Parallel()

	server := searchServer(t, map[string][]domain.Candidate{
		"a": {activeCandidate(1, "one"), activeCandidate(2, "two")},
		"b": {activeCandidate(3, "three")},
	})
	defer server.Close()

	collected, err := testClient(server, []string{"a", "b"}).Collect(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(collected) != 2 {
		t.Fatalf("expected cutoff at 2 candidates, got %d", len(collected))
	}
}

func TestCollectTermFailureIsSoft(t *testing.T) {
	t.Parallel()

	// "missing" is not configured on the server and yields HTTP 500.
	server := searchServer(t, map[string][]domain.Candidate{
		"good": {activeCandidate(1, "one")},
	})
	defer server.Close()

	collected, err := testClient(server, []string{"missing", "good"}).Collect(context.Background(), 0)
	if err != nil {
		t.Fatalf("one failing term must not abort collection: %v", err)
	}
	if len(collected) != 1 {
		t.Fatalf("expected 1 candidate from the surviving term, got %d", len(collected))
	}
}

func TestCollectMissingCredentials(t *testing.T) {
	t.Parallel()

	client := NewClient(config.DiscoveryConfig{BaseURL: "https://example.org"}, 2024, nil, nil)
	if _, err := client.Collect(context.Background(), 0); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
