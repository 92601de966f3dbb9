package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/logging"
)

// ConceptRecord is a generated agent concept as kept in the concept log.
type ConceptRecord struct {
	ID        string              `json:"id"`
	Key       string              `json:"key"`
	Company   string              `json:"company,omitempty"`
	Provider  string              `json:"provider,omitempty"`
	Concept   domain.AgentConcept `json:"concept"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Cache stores discovery results and the concept log.
type Cache interface {
	// GetDiscovery returns a fresh cached discovery for company, if any.
	GetDiscovery(ctx context.Context, company string) (*domain.Discovery, bool, error)
	PutDiscovery(ctx context.Context, d *domain.Discovery) error
	RecordConcept(ctx context.Context, rec ConceptRecord) error
	// RecentConcepts returns the newest records first.
	RecentConcepts(ctx context.Context, limit int) ([]ConceptRecord, error)
	Close() error
}

// OpenCache builds the cache selected by cfg.Store. dbPath is only used by
// the sqlite store.
func OpenCache(cfg config.CacheConfig, dbPath string, log *logging.Logger) (Cache, error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	switch cfg.Store {
	case "", "sqlite":
		db, err := Open(dbPath, log)
		if err != nil {
			return nil, err
		}
		c := NewSQLiteCache(db, ttl)
		if n, err := c.PruneDiscoveries(context.Background()); err != nil {
			db.log.Warn().Err(err).Msg("pruning expired discoveries failed")
		} else if n > 0 {
			db.log.Debug().Int64("removed", n).Msg("pruned expired discoveries")
		}
		return c, nil
	case "memory":
		return NewMemoryCache(ttl), nil
	case "none":
		return NopCache{}, nil
	default:
		return nil, &config.ConfigError{Message: fmt.Sprintf("unknown cache store %q", cfg.Store)}
	}
}

// companyKey folds a company name for cache lookups.
func companyKey(company string) string {
	return strings.Join(strings.Fields(strings.ToLower(company)), " ")
}

// NopCache caches nothing.
type NopCache struct{}

func (NopCache) GetDiscovery(context.Context, string) (*domain.Discovery, bool, error) {
	return nil, false, nil
}
func (NopCache) PutDiscovery(context.Context, *domain.Discovery) error        { return nil }
func (NopCache) RecordConcept(context.Context, ConceptRecord) error           { return nil }
func (NopCache) RecentConcepts(context.Context, int) ([]ConceptRecord, error) { return nil, nil }
func (NopCache) Close() error                                                 { return nil }
