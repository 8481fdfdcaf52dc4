package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/ports"
)

// PostgresStore archives qualified candidates into Postgres.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.QualifiedStore = (*PostgresStore)(nil)

// OpenPostgresStore connects using the given DSN.
func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveQualified upserts one qualified candidate snapshot, keyed by its
// feed URL.
func (s *PostgresStore) SaveQualified(ctx context.Context, result domain.ClassificationResult) error {
	if s.db == nil {
		return nil
	}

	query := s.builder.
		Insert("qualified_podcasts").
		Columns("feed_url", "title", "author", "author_score", "content_score",
			"scripted_score", "confidence", "is_single_host", "is_scripted", "is_self_written").
		Values(result.Candidate.FeedURL, result.Candidate.Title, result.Candidate.Author,
			result.AuthorScore, result.ContentScore, result.ScriptedScore, result.Confidence,
			result.IsSingleHost, result.IsScripted, result.IsSelfWritten).
		Suffix(`ON CONFLICT (feed_url) DO UPDATE
			SET author_score = EXCLUDED.author_score,
			    content_score = EXCLUDED.content_score,
			    scripted_score = EXCLUDED.scripted_score,
			    confidence = EXCLUDED.confidence,
			    is_single_host = EXCLUDED.is_single_host,
			    is_scripted = EXCLUDED.is_scripted,
			    is_self_written = EXCLUDED.is_self_written,
			    updated_at = NOW()`)

	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("upsert qualified podcast: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
