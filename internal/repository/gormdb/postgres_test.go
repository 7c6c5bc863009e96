package gormdb_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository/gormdb"
	"github.com/dom/jobtracker/internal/testutil"
)

func TestPostgres_SchemaAndConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testDB := testutil.NewPostgresTestDB(t)
	require.Equal(t, gormdb.DialectPostgres, testDB.Dialect)
	ctx := context.Background()

	// Running the migrations again against the same database changes nothing.
	db, err := gormdb.NewConnection(ctx, gormdb.Options{URL: testDB.URL, LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	columnTypes, err := db.Migrator().ColumnTypes(&domain.Application{})
	require.NoError(t, err)
	assert.Len(t, columnTypes, len(applicationColumns))

	repos := gormdb.NewRepositories(db)
	user := &domain.User{ID: uuid.NewString(), Username: "pguser", PinHash: "hash"}
	require.NoError(t, repos.User.Create(ctx, user))
	assert.ErrorIs(t, repos.User.Create(ctx, &domain.User{ID: uuid.NewString(), Username: "pguser", PinHash: "hash"}), domain.ErrUsernameTaken)

	app := testutil.NewApplicationBuilder().WithTags("go").Build(t, db, user.ID)
	got, err := repos.Application.GetByID(ctx, user.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, []string(got.Tags))
}
