package store

import (
	"context"
	"fmt"
)

type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order; versions must increase.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create discoveries",
		SQL: `
			CREATE TABLE discoveries (
				company_key TEXT PRIMARY KEY,
				company     TEXT NOT NULL,
				payload     TEXT NOT NULL,
				fetched_at  INTEGER NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "create agent concepts",
		SQL: `
			CREATE TABLE agent_concepts (
				id          TEXT PRIMARY KEY,
				agent_key   TEXT NOT NULL,
				company     TEXT NOT NULL DEFAULT '',
				provider    TEXT NOT NULL DEFAULT '',
				agent_name  TEXT NOT NULL,
				payload     TEXT NOT NULL,
				created_at  INTEGER NOT NULL
			);

			CREATE INDEX idx_concepts_created ON agent_concepts (created_at DESC);
			CREATE INDEX idx_concepts_key ON agent_concepts (agent_key);
		`,
	},
	{
		Version: 3,
		Name:    "index discovery age",
		SQL:     `CREATE INDEX idx_discoveries_fetched ON discoveries (fetched_at);`,
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].Version
}

// migrate applies every migration newer than from, each in its own
// transaction.
func (db *DB) migrate(ctx context.Context, from int) error {
	for _, m := range migrations {
		if m.Version <= from {
			continue
		}
		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := db.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
