package gormdb

import (
	"context"

	"github.com/dom/jobtracker/internal/domain"
	"gorm.io/gorm"
)

// Columns written by Update. id, user_id and created_at never change.
var applicationUpdateColumns = []string{
	"company", "position", "location", "status", "applied_date", "url",
	"notes", "resume_url", "deadline", "tags", "updated_at",
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *applicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, userID, id string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&app).Error
	if err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Application, error) {
	var apps []*domain.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ? AND user_id = ?", app.ID, app.UserID).
		Select(applicationUpdateColumns).
		Updates(app)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
