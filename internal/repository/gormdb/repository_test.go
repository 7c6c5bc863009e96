package gormdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository/gormdb"
	"github.com/dom/jobtracker/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormdb.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: &domain.User{ID: uuid.NewString(), Username: "testuser", PinHash: "hash", CreatedAt: time.Now()},
		},
		{
			name:    "duplicate username",
			user:    &domain.User{ID: uuid.NewString(), Username: "testuser", PinHash: "hash2", CreatedAt: time.Now()},
			wantErr: domain.ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUserRepository_Get(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormdb.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("gina").Build(t, testDB.DB)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "gina", byID.Username)
	assert.Equal(t, user.PinHash, byID.PinHash)

	byName, err := repo.GetByUsername(ctx, "gina")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationRepository_ForeignKey(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormdb.NewApplicationRepository(testDB.DB)

	err := repo.Create(context.Background(), &domain.Application{
		ID:       uuid.NewString(),
		UserID:   uuid.NewString(),
		Company:  "Ghost",
		Position: "Nobody",
		Status:   domain.ApplicationStatusWishlist,
	})
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestApplicationRepository_CRUD(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormdb.NewApplicationRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	location := "Remote"
	applied := "2026-03-01"
	created := time.Now().UTC().Add(-time.Hour)
	app := &domain.Application{
		ID:          uuid.NewString(),
		UserID:      owner.ID,
		Company:     "Acme",
		Position:    "Engineer",
		Location:    &location,
		Status:      domain.ApplicationStatusApplied,
		AppliedDate: &applied,
		Tags:        []string{"go", "remote"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, repo.Create(ctx, app))
	newer := testutil.NewApplicationBuilder().WithCompany("Globex").Build(t, testDB.DB, owner.ID)

	got, err := repo.GetByID(ctx, owner.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "Remote", *got.Location)
	assert.Equal(t, []string{"go", "remote"}, []string(got.Tags))
	assert.Nil(t, got.Deadline)

	// Other users cannot see the application.
	_, err = repo.GetByID(ctx, other.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, app.ID, list[1].ID)

	list, err = repo.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	got.Status = domain.ApplicationStatusOffer
	got.Location = nil
	got.Tags = []string{"go"}
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, owner.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusOffer, updated.Status)
	assert.Nil(t, updated.Location)
	assert.Equal(t, []string{"go"}, []string(updated.Tags))
	assert.Equal(t, owner.ID, updated.UserID)

	foreign := *updated
	foreign.UserID = other.ID
	assert.ErrorIs(t, repo.Update(ctx, &foreign), domain.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, other.ID, app.ID), domain.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, owner.ID, app.ID))
	assert.ErrorIs(t, repo.Delete(ctx, owner.ID, app.ID), domain.ErrNotFound)
}

func TestResumeRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := gormdb.NewResumeRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	resume := &domain.Resume{
		ID:       uuid.NewString(),
		UserID:   owner.ID,
		Name:     "Backend",
		FileName: "cv.pdf",
		FileData: "JVBERi0xLjQ=",
		FileType: "application/pdf",
	}
	require.NoError(t, repo.Create(ctx, resume))

	got, err := repo.GetByID(ctx, owner.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, "JVBERi0xLjQ=", got.FileData)

	list, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cv.pdf", list[0].FileName)
	assert.Empty(t, list[0].FileData)

	assert.ErrorIs(t, repo.SoftDelete(ctx, other.ID, resume.ID), domain.ErrNotFound)
	require.NoError(t, repo.SoftDelete(ctx, owner.ID, resume.ID))

	_, err = repo.GetByID(ctx, owner.ID, resume.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err = repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The row stays in the table with a deletion time.
	var stored domain.Resume
	require.NoError(t, testDB.DB.Unscoped().First(&stored, "id = ?", resume.ID).Error)
	assert.True(t, stored.DeletedAt.Valid)

	assert.ErrorIs(t, repo.SoftDelete(ctx, owner.ID, resume.ID), domain.ErrNotFound)
}
