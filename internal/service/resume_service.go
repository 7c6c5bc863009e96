package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository"
	"github.com/google/uuid"
)

const uploadEnvelopeBytes = 64 << 10

type ResumeService struct {
	resumeRepo repository.ResumeRepository
	maxBytes   int
}

func NewResumeService(resumeRepo repository.ResumeRepository, maxBytes int) *ResumeService {
	return &ResumeService{
		resumeRepo: resumeRepo,
		maxBytes:   maxBytes,
	}
}

type ResumeInput struct {
	Name     string
	FileName string
	// FileData is base64, optionally as a data URL ("data:<type>;base64,<data>").
	FileData string
	FileType string
}

func (s *ResumeService) Upload(ctx context.Context, userID string, input ResumeInput) (*domain.Resume, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.FileName = strings.TrimSpace(input.FileName)
	input.FileType = strings.TrimSpace(input.FileType)
	if input.Name == "" || input.FileName == "" || input.FileData == "" || input.FileType == "" {
		return nil, domain.NewValidationError("Name, file name, file data and file type are required")
	}

	size, err := decodedSize(input.FileData)
	if err != nil {
		return nil, domain.NewValidationError("File data must be base64 encoded")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, s.TooLarge()
	}

	now := time.Now().UTC()
	resume := &domain.Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      input.Name,
		FileName:  input.FileName,
		FileData:  input.FileData,
		FileType:  input.FileType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.resumeRepo.Create(ctx, resume); err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}
	return resume, nil
}

// MaxRequestBytes bounds an upload request body: the base64 form of the
// largest allowed resume plus room for the other fields. Zero means unbounded.
func (s *ResumeService) MaxRequestBytes() int64 {
	if s.maxBytes <= 0 {
		return 0
	}
	return int64(base64.StdEncoding.EncodedLen(s.maxBytes)) + uploadEnvelopeBytes
}

// TooLarge is the validation error for a resume over the size limit.
func (s *ResumeService) TooLarge() *domain.ValidationError {
	return domain.NewValidationError(fmt.Sprintf("Resume must be at most %d bytes", s.maxBytes))
}

func (s *ResumeService) Get(ctx context.Context, userID, id string) (*domain.Resume, error) {
	return s.resumeRepo.GetByID(ctx, userID, id)
}

func (s *ResumeService) List(ctx context.Context, userID string) ([]*domain.Resume, error) {
	return s.resumeRepo.ListByUser(ctx, userID)
}

func (s *ResumeService) Delete(ctx context.Context, userID, id string) error {
	return s.resumeRepo.SoftDelete(ctx, userID, id)
}

func decodedSize(data string) (int, error) {
	if strings.HasPrefix(data, "data:") {
		idx := strings.Index(data, ",")
		if idx < 0 || !strings.HasSuffix(data[:idx], ";base64") {
			return 0, fmt.Errorf("malformed data url")
		}
		data = data[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return 0, err
	}
	return len(decoded), nil
}
