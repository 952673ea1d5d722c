package learning

import (
	"context"
	"sync"
	"time"

	"github.com/commercelens/backend/internal/domain/mapping"
	"github.com/commercelens/backend/internal/domain/shared"
)

// MemoryStore implements mapping.LearningStore in process memory.
// Learned mappings survive between uploads but not restarts. Used when
// the sqlite store is disabled.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]mapping.Record
	now     func() time.Time
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]mapping.Record),
		now:     time.Now,
	}
}

func storeKey(platformID, sourceHeader string) string {
	return platformID + "|" + sourceHeader
}

// Lookup returns the record for a (platform, source header) pair.
func (s *MemoryStore) Lookup(ctx context.Context, platformID, sourceHeader string) (mapping.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[storeKey(platformID, sourceHeader)]
	return rec, ok, nil
}

// Save inserts a record, keeping an existing one when it is at least as
// confident and the new record is not a user correction.
func (s *MemoryStore) Save(ctx context.Context, rec mapping.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(rec.PlatformID, rec.SourceHeader)
	if current, ok := s.records[key]; ok {
		if rec.Provenance != mapping.ProvenanceUserCorrection &&
			current.EffectiveConfidence() >= rec.Confidence {
			return nil
		}
	}
	if rec.LastUsed.IsZero() {
		rec.LastUsed = s.now()
	}
	s.records[key] = rec
	return nil
}

// RecordUse bumps the usage count of an existing record.
func (s *MemoryStore) RecordUse(ctx context.Context, platformID, sourceHeader string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(platformID, sourceHeader)
	rec, ok := s.records[key]
	if !ok {
		return shared.ErrNotFound
	}
	rec.UsageCount++
	rec.LastUsed = s.now()
	s.records[key] = rec
	return nil
}

// Compile-time interface compliance check
var _ mapping.LearningStore = (*MemoryStore)(nil)
