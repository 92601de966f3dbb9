package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/meshbuilder/internal/domain"
)

// maxMemoryConcepts bounds the in-memory concept log.
const maxMemoryConcepts = 200

// MemoryCache implements Cache in process memory.
type MemoryCache struct {
	mu          sync.RWMutex
	ttl         time.Duration
	now         func() time.Time
	discoveries map[string]domain.Discovery
	concepts    []ConceptRecord
}

// NewMemoryCache creates an empty cache. A zero ttl keeps discoveries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:         ttl,
		now:         time.Now,
		discoveries: make(map[string]domain.Discovery),
	}
}

func (m *MemoryCache) GetDiscovery(_ context.Context, company string) (*domain.Discovery, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.discoveries[companyKey(company)]
	if !ok || (m.ttl > 0 && m.now().Sub(d.FetchedAt) > m.ttl) {
		return nil, false, nil
	}
	return &d, true, nil
}

func (m *MemoryCache) PutDiscovery(_ context.Context, d *domain.Discovery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	if cp.FetchedAt.IsZero() {
		cp.FetchedAt = m.now()
	}
	m.discoveries[companyKey(d.Company)] = cp
	return nil
}

func (m *MemoryCache) RecordConcept(_ context.Context, rec ConceptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	m.concepts = append(m.concepts, rec)
	if len(m.concepts) > maxMemoryConcepts {
		m.concepts = slices.Clone(m.concepts[len(m.concepts)-maxMemoryConcepts:])
	}
	return nil
}

func (m *MemoryCache) RecentConcepts(_ context.Context, limit int) ([]ConceptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	out := make([]ConceptRecord, 0, min(limit, len(m.concepts)))
	for i := len(m.concepts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.concepts[i])
	}
	return out, nil
}

func (m *MemoryCache) Close() error { return nil }
