// Package gormdb implements the repositories on gorm, backed by PostgreSQL or by an
// SQLite database file.
package gormdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dom/jobtracker/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DefaultSQLitePath is used when no database URL is configured.
const DefaultSQLitePath = "jobtracker.db"

const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

type Options struct {
	// URL is a postgres:// URL or an SQLite file path (optionally prefixed with
	// sqlite:// or file:).
	URL string
	// AuthToken is used as the postgres password when URL carries none.
	AuthToken string
	LogLevel  logger.LogLevel
}

// ParseURL picks the dialect for a database URL and returns the DSN to hand to the driver.
func ParseURL(rawURL, authToken string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		dsn, err := withPassword(rawURL, authToken)
		if err != nil {
			return "", "", err
		}
		return DialectPostgres, dsn, nil
	}

	path := strings.TrimPrefix(rawURL, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		path = DefaultSQLitePath
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return DialectSQLite, path + sep + sqliteParams, nil
}

func withPassword(rawURL, authToken string) (string, error) {
	if authToken == "" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			return rawURL, nil
		}
		u.User = url.UserPassword(u.User.Username(), authToken)
	} else {
		u.User = url.UserPassword("postgres", authToken)
	}
	return u.String(), nil
}

// Open connects to the configured datastore without touching the schema.
func Open(opts Options) (*gorm.DB, Dialect, error) {
	dialect, dsn, err := ParseURL(opts.URL, opts.AuthToken)
	if err != nil {
		return nil, "", err
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := OpenDialector(dialector, opts.LogLevel)
	if err != nil {
		return nil, "", fmt.Errorf("open %s database: %w", dialect, err)
	}
	return db, dialect, nil
}

// OpenDialector opens db with the settings every repository relies on, such as
// driver error translation and UTC timestamps.
func OpenDialector(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, newConfig(level))
}

func newConfig(level logger.LogLevel) *gorm.Config {
	if level == 0 {
		level = logger.Warn
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewConnection opens the datastore and brings its schema up to date.
func NewConnection(ctx context.Context, opts Options) (*gorm.DB, error) {
	db, dialect, err := Open(opts)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db, dialect); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:        NewUserRepository(db),
		Application: NewApplicationRepository(db),
		Resume:      NewResumeRepository(db),
	}
}
