package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
// The transcript text is flattened from the messages JSONB at query time.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

const transcriptFrom = `
	FROM chat_sessions s,
	LATERAL (
		SELECT coalesce(string_agg(m->>'content', ' '), '') AS contents
		FROM jsonb_array_elements(s.messages) m
	) t,
	plainto_tsquery('english', $1) q
	WHERE to_tsvector('english', t.contents) @@ q`

// Search runs plainto_tsquery over the flattened message contents with
// ts_rank ordering and ts_headline snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	ctx := context.Background()

	var total int
	countSQL := "SELECT count(*)" + transcriptFrom
	if err := p.db.QueryRowContext(ctx, countSQL, q.Text).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	dataSQL := fmt.Sprintf(`
		SELECT s.session_id, s.status,
			ts_headline('english', t.contents, q, 'MaxFragments=1,MaxWords=30') AS snippet,
			to_char(s.last_updated AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS last_updated,
			ts_rank(to_tsvector('english', t.contents), q) AS rank
		%s
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`, transcriptFrom, limit, offset)

	rows, err := p.db.QueryContext(ctx, dataSQL, q.Text)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var rank float64
		if err := rows.Scan(&r.SessionID, &r.Status, &r.Snippet, &r.LastUpdated, &rank); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// LoadAllTranscripts flattens every stored session for full reindexing.
func (p *PgFTS) LoadAllTranscripts(ctx context.Context) ([]TranscriptRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT s.session_id, t.contents, s.status,
			coalesce(s.contact_info->>'email', s.contact_info->>'whatsapp', '') AS contact,
			to_char(s.last_updated AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS last_updated
		FROM chat_sessions s,
		LATERAL (
			SELECT coalesce(string_agg(m->>'content', ' '), '') AS contents
			FROM jsonb_array_elements(s.messages) m
		) t
	`)
	if err != nil {
		return nil, fmt.Errorf("load transcripts: %w", err)
	}
	defer rows.Close()

	records := make([]TranscriptRecord, 0)
	for rows.Next() {
		var rec TranscriptRecord
		if err := rows.Scan(&rec.ID, &rec.Transcript, &rec.Status, &rec.Contact, &rec.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return records, nil
}
