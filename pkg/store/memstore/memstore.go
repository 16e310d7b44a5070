// Package memstore provides an in-memory EmbeddingStore used in tests and
// single-process deployments without postgres.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/getsema/sema/pkg/models"
)

// Store keeps embedding records in insertion order. Upserting a record whose
// UUID already exists replaces it in place, preserving its original position,
// matching the postgres store's id-ordered reads.
type Store struct {
	mu      sync.RWMutex
	records []models.EmbeddingRecord
	index   map[uuid.UUID]int
}

var _ models.EmbeddingStore = &Store{}

func NewStore() *Store {
	return &Store{index: make(map[uuid.UUID]int)}
}

func (s *Store) PutEmbeddings(_ context.Context, records []models.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if i, ok := s.index[rec.UUID]; ok {
			s.records[i] = rec
			continue
		}
		s.index[rec.UUID] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

func (s *Store) GetEmbeddings(
	_ context.Context,
	contentID string,
	filter models.EmbeddingFilter,
) ([]models.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EmbeddingRecord, 0)
	for _, rec := range s.records {
		if rec.ContentID != contentID {
			continue
		}
		if filter.EmbeddingType != "" && rec.EmbeddingType != filter.EmbeddingType {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) OnStart(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
