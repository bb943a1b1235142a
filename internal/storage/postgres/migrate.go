package postgres

import (
	"context"
	"fmt"

	"github.com/Hylozoic/entitlements-service/migrations"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate применяет встроенные goose-миграции к базе пула.
// Goose работает с *sql.DB, поэтому поверх пула открывается stdlib-обёртка;
// пул при этом остаётся под управлением вызывающей стороны.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	goose.SetBaseFS(migrations.FS)

	db := stdlib.OpenDBFromPool(s.db)
	defer func() { _ = db.Close() }()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
