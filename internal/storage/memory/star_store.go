package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lightcurve-lab/internal/storage"
)

// StarStore is an in-memory implementation of storage.StarStore.
type StarStore struct {
	mu   sync.RWMutex
	data map[string]*storage.StarRecord // keyed by origin|identifier
}

// NewStarStore creates a new in-memory star store.
func NewStarStore() *StarStore {
	return &StarStore{
		data: make(map[string]*storage.StarRecord),
	}
}

func starKey(origin, identifier string) string {
	return fmt.Sprintf("%s|%s", origin, identifier)
}

// Insert adds a new star. Returns ErrDuplicateKey if (origin, identifier) exists.
func (s *StarStore) Insert(_ context.Context, r *storage.StarRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := starKey(r.Origin, r.Identifier)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[key] = stamped(r)
	return nil
}

// InsertBulk adds multiple stars atomically. Fails entire batch on any duplicate.
func (s *StarStore) InsertBulk(_ context.Context, records []*storage.StarRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		key := starKey(r.Origin, r.Identifier)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		s.data[starKey(r.Origin, r.Identifier)] = stamped(r)
	}
	return nil
}

// Get retrieves a star by origin and identifier. Returns ErrNotFound if not exists.
func (s *StarStore) Get(_ context.Context, origin, identifier string) (*storage.StarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[starKey(origin, identifier)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	rCopy := *r
	return &rCopy, nil
}

// Query retrieves stars matching q, ordered by (origin, identifier).
func (s *StarStore) Query(_ context.Context, q storage.StarQuery) ([]*storage.StarRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.StarRecord, 0)
	for _, r := range s.data {
		if q.Matches(r) {
			rCopy := *r
			result = append(result, &rCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Origin != result[j].Origin {
			return result[i].Origin < result[j].Origin
		}
		return result[i].Identifier < result[j].Identifier
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func stamped(r *storage.StarRecord) *storage.StarRecord {
	rCopy := *r
	if rCopy.CreatedAt == 0 {
		rCopy.CreatedAt = time.Now().UnixMilli()
	}
	return &rCopy
}

var _ storage.StarStore = (*StarStore)(nil)
