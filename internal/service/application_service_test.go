package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository/gormdb"
	"github.com/dom/jobtracker/internal/service"
	"github.com/dom/jobtracker/internal/testutil"
)

func strPtr(s string) *string { return &s }

func newApplicationService(t *testing.T) (*service.ApplicationService, string) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	repos := gormdb.NewRepositories(testDB.DB)
	return service.NewApplicationService(repos.Application), user.ID
}

func TestApplicationService_CreateDefaults(t *testing.T) {
	appService, userID := newApplicationService(t)
	ctx := context.Background()

	app, err := appService.Create(ctx, userID, service.ApplicationInput{
		Company:  "  Acme  ",
		Position: "Backend Engineer",
		Location: strPtr("   "),
		Tags:     []string{"go", " ", " remote "},
	})
	require.NoError(t, err)

	assert.Len(t, app.ID, 36)
	assert.Equal(t, userID, app.UserID)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, domain.ApplicationStatusWishlist, app.Status)
	assert.Nil(t, app.Location)
	assert.Equal(t, []string{"go", "remote"}, []string(app.Tags))
	assert.False(t, app.CreatedAt.IsZero())
}

func TestApplicationService_Validation(t *testing.T) {
	appService, userID := newApplicationService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.ApplicationInput
		wantMsg string
	}{
		{
			name:    "missing company",
			input:   service.ApplicationInput{Position: "Engineer"},
			wantMsg: "Company and position are required",
		},
		{
			name:    "blank position",
			input:   service.ApplicationInput{Company: "Acme", Position: "  "},
			wantMsg: "Company and position are required",
		},
		{
			name:    "bad applied date",
			input:   service.ApplicationInput{Company: "Acme", Position: "Engineer", AppliedDate: strPtr("03/01/2024")},
			wantMsg: "appliedDate must be a YYYY-MM-DD date",
		},
		{
			name:    "bad deadline",
			input:   service.ApplicationInput{Company: "Acme", Position: "Engineer", Deadline: strPtr("2024-13-01")},
			wantMsg: "deadline must be a YYYY-MM-DD date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := appService.Create(ctx, userID, tt.input)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestApplicationService_CustomStatusAccepted(t *testing.T) {
	appService, userID := newApplicationService(t)

	app, err := appService.Create(context.Background(), userID, service.ApplicationInput{
		Company:  "Acme",
		Position: "Engineer",
		Status:   "phone screen",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatus("phone screen"), app.Status)
}

func TestApplicationService_UpdateReplacesFields(t *testing.T) {
	appService, userID := newApplicationService(t)
	ctx := context.Background()

	created, err := appService.Create(ctx, userID, service.ApplicationInput{
		Company:  "Acme",
		Position: "Engineer",
		Notes:    strPtr("referral"),
		Tags:     []string{"go"},
	})
	require.NoError(t, err)

	updated, err := appService.Update(ctx, userID, created.ID, service.ApplicationInput{
		Company:     "Acme",
		Position:    "Senior Engineer",
		Status:      string(domain.ApplicationStatusInterviewing),
		AppliedDate: strPtr("2024-03-01"),
	})
	require.NoError(t, err)

	got, err := appService.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", got.Position)
	assert.Equal(t, domain.ApplicationStatusInterviewing, got.Status)
	assert.Nil(t, got.Notes)
	assert.Empty(t, got.Tags)
	require.NotNil(t, got.AppliedDate)
	assert.Equal(t, "2024-03-01", *got.AppliedDate)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestApplicationService_OwnerScoping(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	appService := service.NewApplicationService(gormdb.NewRepositories(testDB.DB).Application)
	ctx := context.Background()

	app, err := appService.Create(ctx, owner.ID, service.ApplicationInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	_, err = appService.Get(ctx, other.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = appService.Update(ctx, other.ID, app.ID, service.ApplicationInput{Company: "Evil", Position: "Corp"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, appService.Delete(ctx, other.ID, app.ID), domain.ErrNotFound)

	apps, err := appService.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, apps)

	require.NoError(t, appService.Delete(ctx, owner.ID, app.ID))
	_, err = appService.Get(ctx, owner.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationService_EmptyTagsStoredAsArray(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	appService := service.NewApplicationService(gormdb.NewRepositories(testDB.DB).Application)

	app, err := appService.Create(context.Background(), user.ID, service.ApplicationInput{
		Company:  "Acme",
		Position: "Engineer",
		Tags:     []string{" "},
	})
	require.NoError(t, err)

	var raw string
	require.NoError(t, testDB.DB.Raw("SELECT tags FROM applications WHERE id = ?", app.ID).Scan(&raw).Error)
	assert.Equal(t, "[]", raw)
}
