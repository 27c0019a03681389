package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document // namespace -> id -> doc
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]Document)}
}

// Add implements Store.
func (s *MemoryStore) Add(_ context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		ns := s.docs[doc.Namespace]
		if ns == nil {
			ns = make(map[string]Document)
			s.docs[doc.Namespace] = ns
		}
		ns[doc.ID] = doc
	}
	return nil
}

// Search implements Store.
func (s *MemoryStore) Search(_ context.Context, namespace string, vector []float32, limit int) ([]Scored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return nil, nil
	}

	scored := make([]Scored, 0, len(s.docs[namespace]))
	for _, doc := range s.docs[namespace] {
		scored = append(scored, Scored{Document: doc, Score: CosineSimilarity(vector, doc.Vector)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Document.ID < scored[j].Document.ID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context, namespace string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[namespace]), nil
}
