package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApplicationService struct {
	appRepo repository.ApplicationRepository
}

func NewApplicationService(appRepo repository.ApplicationRepository) *ApplicationService {
	return &ApplicationService{appRepo: appRepo}
}

// ApplicationInput holds the user-editable fields of an application. Update
// replaces all of them.
type ApplicationInput struct {
	Company     string
	Position    string
	Location    *string
	Status      string
	AppliedDate *string
	URL         *string
	Notes       *string
	ResumeURL   *string
	Deadline    *string
	Tags        []string
}

func (s *ApplicationService) Create(ctx context.Context, userID string, input ApplicationInput) (*domain.Application, error) {
	if err := validateApplication(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
	applyApplicationInput(app, input, now)

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, userID, id string) (*domain.Application, error) {
	return s.appRepo.GetByID(ctx, userID, id)
}

func (s *ApplicationService) List(ctx context.Context, userID string) ([]*domain.Application, error) {
	return s.appRepo.ListByUser(ctx, userID)
}

func (s *ApplicationService) Update(ctx context.Context, userID, id string, input ApplicationInput) (*domain.Application, error) {
	if err := validateApplication(&input); err != nil {
		return nil, err
	}

	app, err := s.appRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyApplicationInput(app, input, time.Now().UTC())

	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) Delete(ctx context.Context, userID, id string) error {
	return s.appRepo.Delete(ctx, userID, id)
}

func applyApplicationInput(app *domain.Application, input ApplicationInput, now time.Time) {
	app.Company = input.Company
	app.Position = input.Position
	app.Location = input.Location
	app.Status = domain.ApplicationStatus(input.Status)
	app.AppliedDate = input.AppliedDate
	app.URL = input.URL
	app.Notes = input.Notes
	app.ResumeURL = input.ResumeURL
	app.Deadline = input.Deadline
	app.Tags = datatypes.JSONSlice[string]{}
	if len(input.Tags) > 0 {
		app.Tags = datatypes.JSONSlice[string](input.Tags)
	}
	app.UpdatedAt = now
}

// validateApplication checks input and normalizes it in place.
func validateApplication(input *ApplicationInput) error {
	input.Company = strings.TrimSpace(input.Company)
	input.Position = strings.TrimSpace(input.Position)
	if input.Company == "" || input.Position == "" {
		return domain.NewValidationError("Company and position are required")
	}

	input.Status = strings.TrimSpace(input.Status)
	if input.Status == "" {
		input.Status = string(domain.ApplicationStatusWishlist)
	}

	if err := validateDate("appliedDate", input.AppliedDate); err != nil {
		return err
	}
	if err := validateDate("deadline", input.Deadline); err != nil {
		return err
	}

	input.Location = emptyToNil(input.Location)
	input.URL = emptyToNil(input.URL)
	input.Notes = emptyToNil(input.Notes)
	input.ResumeURL = emptyToNil(input.ResumeURL)

	var tags []string
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	input.Tags = tags

	return nil
}

func validateDate(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, *value); err != nil {
		return domain.NewValidationError(field + " must be a YYYY-MM-DD date")
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
