package migration

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"designspace/internal"
	"designspace/internal/errors"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// Migration is one versioned SQL file, named <version>_<name>.sql
type Migration struct {
	Version  string
	Name     string
	SQL      string
	Checksum string
}

var _ Migrator = (*MigrationRunner)(nil)

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	Migration
	Applied bool
}

// MigrationRunner applies the embedded migrations, recording each in
// schema_migrations with its checksum.
type MigrationRunner struct {
	migrations []Migration
	logger     *internal.Logger
}

// NewRunner creates a runner over the embedded migrations
func NewRunner(logger *internal.Logger) (*MigrationRunner, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}
	return NewRunnerFS(sub, logger)
}

// NewRunnerFS creates a runner over the .sql files at the root of fsys
func NewRunnerFS(fsys fs.FS, logger *internal.Logger) (*MigrationRunner, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	migrations, err := load(fsys)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load migrations")
	}
	return &MigrationRunner{migrations: migrations, logger: logger}, nil
}

func load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(e.Name(), ".sql"), "_", 2)
		if len(parts) < 2 {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{
			Version:  parts[0],
			Name:     parts[1],
			SQL:      string(data),
			Checksum: checksum(data),
		})
	}
	return out, nil
}

func checksum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// Migrations returns the known migrations in version order
func (r *MigrationRunner) Migrations() []Migration {
	return append([]Migration(nil), r.migrations...)
}

// Version returns the latest known migration version
func (r *MigrationRunner) Version() string {
	if len(r.migrations) == 0 {
		return ""
	}
	return r.migrations[len(r.migrations)-1].Version
}

// Run applies every pending migration, each in its own transaction
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	applied, err := r.applied(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range r.migrations {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum {
				r.logger.Warn("[migration] %s_%s changed after it was applied", m.Version, m.Name)
			}
			continue
		}
		if err := r.apply(ctx, db, m); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s_%s", m.Version, m.Name)
		}
		r.logger.Info("[migration] applied %s_%s", m.Version, m.Name)
	}
	return nil
}

// Status lists every known migration with its applied state
func (r *MigrationRunner) Status(ctx context.Context, db *sqlx.DB) ([]MigrationStatus, error) {
	applied, err := r.applied(ctx, db)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, len(r.migrations))
	for i, m := range r.migrations {
		_, ok := applied[m.Version]
		out[i] = MigrationStatus{Migration: m, Applied: ok}
	}
	return out, nil
}

type appliedRow struct {
	Version  string `db:"version"`
	Checksum string `db:"checksum"`
}

func (r *MigrationRunner) applied(ctx context.Context, db *sqlx.DB) (map[string]string, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, errors.DatabaseError("failed to create schema_migrations", err)
	}

	var rows []appliedRow
	if err := db.SelectContext(ctx, &rows, `SELECT version, checksum FROM schema_migrations`); err != nil {
		return nil, errors.DatabaseError("failed to read schema_migrations", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Version] = row.Checksum
	}
	return out, nil
}

func (r *MigrationRunner) apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return errors.DatabaseError("migration failed", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)`, m.Version, m.Checksum); err != nil {
		_ = tx.Rollback()
		return errors.DatabaseError("failed to record migration", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit migration", err)
	}
	return nil
}
