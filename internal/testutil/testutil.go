package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dom/jobtracker/internal/api"
	"github.com/dom/jobtracker/internal/config"
	"github.com/dom/jobtracker/internal/repository"
	"github.com/dom/jobtracker/internal/repository/gormdb"
	"github.com/dom/jobtracker/internal/service"
)

// TestDB is a migrated database for one test.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	Dialect   gormdb.Dialect
	// URL is what gormdb.Options.URL needs to reopen the same database.
	URL string
}

// NewTestDB creates a migrated SQLite database file in a temp directory.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jobtracker_test.db")
	return openTestDB(t, path, nil)
}

// NewPostgresTestDB starts a PostgreSQL testcontainer. The test is skipped when
// no container provider is available.
func NewPostgresTestDB(t *testing.T) *TestDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_jobtracker"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	return openTestDB(t, dsn, container)
}

func openTestDB(t *testing.T, url string, container testcontainers.Container) *TestDB {
	t.Helper()

	db, dialect, err := gormdb.Open(gormdb.Options{URL: url, LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := gormdb.Migrate(context.Background(), db, dialect); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &TestDB{
		Container: container,
		DB:        db,
		Dialect:   dialect,
		URL:       url,
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"resumes", "applications", "users"} {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// NewMockDB returns a gorm handle whose every query goes to sqlmock.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gormdb.OpenDialector(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}
	return db, mock
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:           "0", // Random port
		Environment:    "test",
		JWTSecret:      "test-jwt-secret-key-for-testing-only",
		MaxResumeBytes: 1 << 20,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by an SQLite test database.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithDB(t, NewTestDB(t).DB, TestConfig())
}

// NewTestServerWithDB wires the full router over db.
func NewTestServerWithDB(t *testing.T, db *gorm.DB, cfg *config.Config) *TestServer {
	t.Helper()

	repos := gormdb.NewRepositories(db)
	services := service.NewServices(repos, cfg)
	server := httptest.NewServer(api.NewRouter(services, cfg))

	t.Cleanup(func() {
		server.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
