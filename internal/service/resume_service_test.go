package service_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository/gormdb"
	"github.com/dom/jobtracker/internal/service"
	"github.com/dom/jobtracker/internal/testutil"
)

func newResumeService(t *testing.T, maxBytes int) (*service.ResumeService, string) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	repos := gormdb.NewRepositories(testDB.DB)
	return service.NewResumeService(repos.Resume, maxBytes), user.ID
}

func TestResumeService_Upload(t *testing.T) {
	resumeService, userID := newResumeService(t, 16)
	ctx := context.Background()

	valid := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))
	tooBig := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 17)))

	tests := []struct {
		name    string
		input   service.ResumeInput
		wantMsg string
	}{
		{
			name:  "plain base64",
			input: service.ResumeInput{Name: "CV", FileName: "cv.pdf", FileData: valid, FileType: "application/pdf"},
		},
		{
			name:  "data url",
			input: service.ResumeInput{Name: "CV", FileName: "cv.pdf", FileData: "data:application/pdf;base64," + valid, FileType: "application/pdf"},
		},
		{
			name:    "missing name",
			input:   service.ResumeInput{FileName: "cv.pdf", FileData: valid, FileType: "application/pdf"},
			wantMsg: "Name, file name, file data and file type are required",
		},
		{
			name:    "not base64",
			input:   service.ResumeInput{Name: "CV", FileName: "cv.pdf", FileData: "!!!", FileType: "application/pdf"},
			wantMsg: "File data must be base64 encoded",
		},
		{
			name:    "data url without base64 marker",
			input:   service.ResumeInput{Name: "CV", FileName: "cv.pdf", FileData: "data:text/plain,hello", FileType: "text/plain"},
			wantMsg: "File data must be base64 encoded",
		},
		{
			name:    "too large",
			input:   service.ResumeInput{Name: "CV", FileName: "cv.pdf", FileData: tooBig, FileType: "application/pdf"},
			wantMsg: "Resume must be at most 16 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := resumeService.Upload(ctx, userID, tt.input)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}

			require.NoError(t, err)
			assert.Len(t, resume.ID, 36)
			assert.Equal(t, tt.input.FileData, resume.FileData)
		})
	}
}

func TestResumeService_DeleteHidesResume(t *testing.T) {
	resumeService, userID := newResumeService(t, 0)
	ctx := context.Background()

	resume, err := resumeService.Upload(ctx, userID, service.ResumeInput{
		Name:     "CV",
		FileName: "cv.txt",
		FileData: base64.StdEncoding.EncodeToString([]byte("hello")),
		FileType: "text/plain",
	})
	require.NoError(t, err)

	require.NoError(t, resumeService.Delete(ctx, userID, resume.ID))

	_, err = resumeService.Get(ctx, userID, resume.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resumes, err := resumeService.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, resumes)

	assert.ErrorIs(t, resumeService.Delete(ctx, userID, resume.ID), domain.ErrNotFound)
}
