package gormdb

import (
	"context"

	"github.com/dom/jobtracker/internal/domain"
	"gorm.io/gorm"
)

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *resumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) GetByID(ctx context.Context, userID, id string) (*domain.Resume, error) {
	var resume domain.Resume
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&resume).Error
	if err != nil {
		return nil, translate(err)
	}
	return &resume, nil
}

// ListByUser returns resume metadata; FileData is left empty.
func (r *resumeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Resume, error) {
	var resumes []*domain.Resume
	err := r.db.WithContext(ctx).
		Omit("file_data").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&resumes).Error
	if err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepository) SoftDelete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Resume{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
