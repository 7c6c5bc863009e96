package gormdb

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Column additions made after the first release. They are Go migrations so a
// database created before goose tracked it, which may already carry the
// column, is left alone.
var addedColumns = []struct {
	version  int64
	column   string
	backfill string
}{
	{version: 3, column: "location"},
	{version: 4, column: "deadline"},
	// tags is a JSON array; older rows may hold NULL or a JSON null.
	{version: 5, column: "tags", backfill: "UPDATE applications SET tags = '[]' WHERE tags IS NULL OR tags = 'null'"},
}

// Migrate applies pending schema migrations. Applied versions are recorded in the
// goose version table, so running it against an up-to-date database is a no-op.
// Tables that already exist without a version table are adopted in place.
func Migrate(ctx context.Context, db *gorm.DB, dialect Dialect) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	var (
		gooseDialect goose.Dialect
		fsys         fs.FS
	)
	switch dialect {
	case DialectPostgres:
		gooseDialect, fsys = goose.DialectPostgres, migrations.Postgres()
	case DialectSQLite:
		gooseDialect, fsys = goose.DialectSQLite3, migrations.SQLite()
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	provider, err := goose.NewProvider(gooseDialect, sqlDB, fsys,
		goose.WithGoMigrations(columnMigrations(db)...),
	)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		slog.InfoContext(ctx, "applied migration",
			"component", "gormdb.Migrate",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return nil
}

func columnMigrations(db *gorm.DB) []*goose.Migration {
	out := make([]*goose.Migration, 0, len(addedColumns))
	for _, c := range addedColumns {
		column, backfill := c.column, c.backfill
		out = append(out, goose.NewGoMigration(c.version,
			&goose.GoFunc{RunDB: func(ctx context.Context, _ *sql.DB) error {
				if err := addColumnIfMissing(ctx, db, column); err != nil {
					return err
				}
				if backfill == "" {
					return nil
				}
				if err := db.WithContext(ctx).Exec(backfill).Error; err != nil {
					return fmt.Errorf("backfill applications.%s: %w", column, err)
				}
				return nil
			}},
			&goose.GoFunc{RunDB: func(ctx context.Context, _ *sql.DB) error {
				return dropColumnIfPresent(ctx, db, column)
			}},
		))
	}
	return out
}

func addColumnIfMissing(ctx context.Context, db *gorm.DB, column string) error {
	m := db.WithContext(ctx).Migrator()
	if m.HasColumn(&domain.Application{}, column) {
		return nil
	}
	if err := db.WithContext(ctx).Exec("ALTER TABLE applications ADD COLUMN " + column + " TEXT").Error; err != nil {
		return fmt.Errorf("add applications.%s: %w", column, err)
	}
	return nil
}

func dropColumnIfPresent(ctx context.Context, db *gorm.DB, column string) error {
	m := db.WithContext(ctx).Migrator()
	if !m.HasColumn(&domain.Application{}, column) {
		return nil
	}
	if err := m.DropColumn(&domain.Application{}, column); err != nil {
		return fmt.Errorf("drop applications.%s: %w", column, err)
	}
	return nil
}
