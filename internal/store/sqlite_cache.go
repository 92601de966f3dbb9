package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/meshbuilder/internal/domain"
)

// SQLiteCache implements Cache on a DB.
type SQLiteCache struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache wraps db. A zero ttl keeps discoveries forever.
func NewSQLiteCache(db *DB, ttl time.Duration) *SQLiteCache {
	return &SQLiteCache{db: db, ttl: ttl, now: time.Now}
}

type discoveryPayload struct {
	Solutions  []domain.Solution        `json:"solutions"`
	Priorities domain.Priorities        `json:"priorities"`
	Context    domain.EnterpriseContext `json:"context"`
}

func (c *SQLiteCache) GetDiscovery(ctx context.Context, company string) (*domain.Discovery, bool, error) {
	var (
		name      string
		payload   string
		fetchedAt int64
	)
	err := c.db.sql.QueryRowContext(ctx,
		`SELECT company, payload, fetched_at FROM discoveries WHERE company_key = ?`,
		companyKey(company),
	).Scan(&name, &payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading discovery: %w", err)
	}

	fetched := time.UnixMilli(fetchedAt)
	if c.ttl > 0 && c.now().Sub(fetched) > c.ttl {
		return nil, false, nil
	}

	var p discoveryPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, false, fmt.Errorf("decoding discovery: %w", err)
	}
	return &domain.Discovery{
		Company:    name,
		Solutions:  p.Solutions,
		Priorities: p.Priorities,
		Context:    p.Context,
		FetchedAt:  fetched,
	}, true, nil
}

func (c *SQLiteCache) PutDiscovery(ctx context.Context, d *domain.Discovery) error {
	payload, err := json.Marshal(discoveryPayload{
		Solutions:  d.Solutions,
		Priorities: d.Priorities,
		Context:    d.Context,
	})
	if err != nil {
		return fmt.Errorf("encoding discovery: %w", err)
	}
	fetched := d.FetchedAt
	if fetched.IsZero() {
		fetched = c.now()
	}
	_, err = c.db.sql.ExecContext(ctx,
		`INSERT INTO discoveries (company_key, company, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(company_key) DO UPDATE SET
		   company = excluded.company,
		   payload = excluded.payload,
		   fetched_at = excluded.fetched_at`,
		companyKey(d.Company), d.Company, string(payload), fetched.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing discovery: %w", err)
	}
	return nil
}

// PruneDiscoveries deletes discoveries older than the TTL and returns how
// many were removed. It is a no-op without a TTL.
func (c *SQLiteCache) PruneDiscoveries(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	res, err := c.db.sql.ExecContext(ctx,
		`DELETE FROM discoveries WHERE fetched_at < ?`, c.now().Add(-c.ttl).UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning discoveries: %w", err)
	}
	return res.RowsAffected()
}

func (c *SQLiteCache) RecordConcept(ctx context.Context, rec ConceptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = c.now()
	}
	payload, err := json.Marshal(rec.Concept)
	if err != nil {
		return fmt.Errorf("encoding concept: %w", err)
	}
	_, err = c.db.sql.ExecContext(ctx,
		`INSERT INTO agent_concepts (id, agent_key, company, provider, agent_name, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Key, rec.Company, rec.Provider, rec.Concept.AgentName, string(payload), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing concept: %w", err)
	}
	return nil
}

func (c *SQLiteCache) RecentConcepts(ctx context.Context, limit int) ([]ConceptRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.sql.QueryContext(ctx,
		`SELECT id, agent_key, company, provider, payload, created_at
		 FROM agent_concepts ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing concepts: %w", err)
	}
	defer rows.Close()

	var out []ConceptRecord
	for rows.Next() {
		var (
			rec     ConceptRecord
			payload string
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.Key, &rec.Company, &rec.Provider, &payload, &created); err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Concept); err != nil {
			return nil, fmt.Errorf("decoding concept %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
