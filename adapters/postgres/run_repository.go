package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"designspace/domain/core"
	"designspace/domain/run"
	"designspace/internal/errors"
	"designspace/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// Connect opens and pings a PostgreSQL connection pool
func Connect(ctx context.Context, url string, maxOpenConns int) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

type runRow struct {
	Manifest        []byte `db:"manifest"`
	Points          []byte `db:"points"`
	Reconstructions []byte `db:"reconstructions"`
	Skipped         []byte `db:"skipped"`
}

// SaveRun inserts a run, or replaces the stored run with the same id
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, record *run.Record) error {
	if record == nil {
		return errors.InvalidInput("run record is nil")
	}
	if err := record.Manifest.Validate(); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	m := record.Manifest
	manifest, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	points, err := marshalList(record.Points)
	if err != nil {
		return errors.Wrap(err, "failed to marshal points")
	}
	recs, err := marshalList(record.Reconstructions)
	if err != nil {
		return errors.Wrap(err, "failed to marshal reconstructions")
	}
	skipped, err := marshalList(record.Skipped)
	if err != nil {
		return errors.Wrap(err, "failed to marshal skipped pairs")
	}

	var completedAt interface{}
	if m.CompletedAt != nil {
		completedAt = m.CompletedAt.Time()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, schema_version, schema_hash, layout_hash, strategy, components, fingerprint, row_count, status, error_message, manifest, points, reconstructions, skipped, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			manifest = EXCLUDED.manifest,
			points = EXCLUDED.points,
			reconstructions = EXCLUDED.reconstructions,
			skipped = EXCLUDED.skipped,
			completed_at = EXCLUDED.completed_at
	`, m.RunID.String(), m.SchemaVersion, m.Fingerprint.SchemaHash.String(), m.Fingerprint.LayoutHash.String(),
		m.Fingerprint.Strategy, m.Fingerprint.Components, m.Fingerprint.Fingerprint.String(), m.Rows,
		string(m.Status), nullString(m.Error), manifest, points, recs, skipped, m.CreatedAt.Time(), completedAt)
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to save run %s", m.RunID), err)
	}
	return nil
}

// GetRun loads a stored run by id
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT manifest, points, reconstructions, skipped
		FROM analysis_runs
		WHERE id = $1
	`, id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w %s", core.ErrRunNotFound, id))
		}
		return nil, errors.DatabaseError(fmt.Sprintf("failed to load run %s", id), err)
	}

	record := &run.Record{}
	if err := json.Unmarshal(row.Manifest, &record.Manifest); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	if err := json.Unmarshal(row.Points, &record.Points); err != nil {
		return nil, errors.Wrap(err, "failed to decode points")
	}
	if err := json.Unmarshal(row.Reconstructions, &record.Reconstructions); err != nil {
		return nil, errors.Wrap(err, "failed to decode reconstructions")
	}
	if len(row.Skipped) > 0 {
		if err := json.Unmarshal(row.Skipped, &record.Skipped); err != nil {
			return nil, errors.Wrap(err, "failed to decode skipped pairs")
		}
	}
	return record, nil
}

// ListRuns returns the newest manifests first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]run.Manifest, error) {
	if limit <= 0 {
		limit = 50
	}

	var blobs [][]byte
	err := r.db.SelectContext(ctx, &blobs, `
		SELECT manifest FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	out := make([]run.Manifest, 0, len(blobs))
	for _, b := range blobs {
		var m run.Manifest
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, errors.Wrap(err, "failed to decode manifest")
		}
		out = append(out, m)
	}
	return out, nil
}

// marshalList encodes nil slices as an empty JSON array
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
