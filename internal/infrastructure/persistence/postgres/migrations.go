package postgres

import (
	"context"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// Migrations describe the PRIMARY schema shape. The live database may
// predate them and carry the legacy drill_logs layout; the repositories
// tolerate both, so migrations are only applied to databases this app
// owns outright.
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one schema version step.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// GetMigrations returns the embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_profiles", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_drill_logs", UpSQL: migration002Up, DownSQL: migration002Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY,
    username VARCHAR(30) NOT NULL DEFAULT 'Player',
    xp INTEGER NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0,
    dupr_rating DECIMAL(2,1) NOT NULL DEFAULT 2.5,
    badges JSONB NOT NULL DEFAULT '[]'::jsonb,
    password_hash TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp CHECK (xp >= 0),
    CONSTRAINT valid_streak CHECK (streak >= 0),
    CONSTRAINT valid_rating CHECK (dupr_rating >= 2.0 AND dupr_rating <= 8.0)
);

CREATE INDEX IF NOT EXISTS idx_profiles_xp ON profiles(xp DESC);
`

const migration001Down = `DROP TABLE IF EXISTS profiles;`

const migration002Up = `
CREATE TABLE IF NOT EXISTS drill_logs (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    drill_id VARCHAR(100) NOT NULL,
    category VARCHAR(50) NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    mastery SMALLINT NOT NULL,
    xp_earned INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    logged_on DATE NOT NULL DEFAULT CURRENT_DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_mastery CHECK (mastery BETWEEN 1 AND 5)
);

CREATE INDEX IF NOT EXISTS idx_drill_logs_user ON drill_logs(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_drill_logs_user_category ON drill_logs(user_id, category);
`

const migration002Down = `DROP TABLE IF EXISTS drill_logs;`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migrator applies embedded migrations in version order.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the bookkeeping table if missing.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`, m.tableName))
	if err != nil {
		return fmt.Errorf("%w: ensure table: %v", ErrMigrationFailed, err)
	}
	return nil
}

// AppliedVersions returns the applied migration versions.
func (m *Migrator) AppliedVersions(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx, fmt.Sprintf("SELECT version, applied_at FROM %s", m.tableName))
	if err != nil {
		return nil, fmt.Errorf("%w: read versions: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", ErrMigrationFailed, err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}

// Migrate applies every pending migration inside a transaction each.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}
	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}
		tx, err := m.conn.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: begin %d: %v", ErrMigrationFailed, migration.Version, err)
		}
		if _, err := tx.Exec(ctx, migration.UpSQL); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("%w: apply %d (%s): %v", ErrMigrationFailed, migration.Version, migration.Name, err)
		}
		if _, err := tx.Exec(ctx,
			fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName),
			migration.Version, migration.Name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("%w: record %d: %v", ErrMigrationFailed, migration.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: commit %d: %v", ErrMigrationFailed, migration.Version, err)
		}
	}
	return nil
}
