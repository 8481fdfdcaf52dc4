package feed

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
	"PodcastCurator/internal/ports"
)

// Fetcher retrieves podcast RSS feeds and maps them to domain entries.
// Unreachable or unparsable feeds come back inside FetchResult; the
// pipeline decides what to do with them.
type Fetcher struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; timeout defaults to 10s.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "PodcastCurator/1.0"

	return &Fetcher{parser: parser, logger: logger}
}

// Fetch downloads and parses one feed.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) domain.FetchResult {
	if feedURL == "" {
		return domain.FetchResult{Err: "no feed URL provided"}
	}

	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		f.logger.Debug("feed fetch failed", "url", feedURL, "error", err)
		return domain.FetchResult{Err: err.Error()}
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, mapItem(item))
	}

	return domain.FetchResult{Reachable: true, Entries: entries}
}

func mapItem(item *gofeed.Item) domain.FeedEntry {
	entry := domain.FeedEntry{
		Title:     item.Title,
		Published: item.Published,
	}
	if item.PublishedParsed != nil {
		entry.Year = item.PublishedParsed.Year()
	}

	for _, link := range item.Links {
		entry.Links = append(entry.Links, domain.LinkDescriptor{Href: link, Rel: "alternate"})
	}
	for _, enclosure := range item.Enclosures {
		entry.Links = append(entry.Links, domain.LinkDescriptor{
			Type: enclosure.Type,
			Href: enclosure.URL,
			Rel:  "enclosure",
		})
	}

	// The podcast namespace carries explicit transcript declarations.
	if ns, ok := item.Extensions["podcast"]; ok {
		for _, ext := range ns["transcript"] {
			entry.Links = append(entry.Links, domain.LinkDescriptor{
				Type: ext.Attrs["type"],
				Href: ext.Attrs["url"],
				Rel:  "transcript",
			})
		}
	}

	return entry
}
