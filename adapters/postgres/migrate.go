package postgres

import (
	"context"

	"designspace/internal"
	"designspace/internal/migration"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the embedded schema migrations
func Migrate(ctx context.Context, db *sqlx.DB, logger *internal.Logger) error {
	runner, err := migration.NewRunner(logger)
	if err != nil {
		return err
	}
	return runner.Run(ctx, db)
}
