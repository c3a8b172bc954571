// Package search indexes chat transcripts for the admin console:
// Meilisearch when available, PostgreSQL full-text search as the fallback.
package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG
// FTS. meili may be nil when Meilisearch is not configured.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexTranscript pushes one session transcript to Meilisearch,
// fire-and-forget. PG FTS needs no indexing step.
func (s *Service) IndexTranscript(rec TranscriptRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTranscript(rec); err != nil {
			log.Printf("search: index transcript %s: %v", rec.ID, err)
		}
	}()
}

// DeleteTranscript removes a session from the index, fire-and-forget.
func (s *Service) DeleteTranscript(sessionID string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteTranscript(sessionID); err != nil {
			log.Printf("search: delete transcript %s: %v", sessionID, err)
		}
	}()
}

// ReindexAllFromPG reads every stored session and pushes it to Meilisearch.
// Called at startup when Meilisearch is healthy.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	records, err := s.pgfts.LoadAllTranscripts(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}
	if err := s.meili.IndexTranscripts(records); err != nil {
		log.Printf("search: reindex transcripts: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
