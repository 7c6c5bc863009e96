package repository

import (
	"context"

	"github.com/dom/jobtracker/internal/domain"
)

// UserRepository is the credential store. Create reports domain.ErrUsernameTaken
// when the username is already registered; the unique index decides, not a prior read.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ApplicationRepository reads and writes applications scoped to their owner.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, userID, id string) (*domain.Application, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
	Delete(ctx context.Context, userID, id string) error
}

// ResumeRepository reads and writes resumes scoped to their owner. Soft-deleted
// resumes are not returned.
type ResumeRepository interface {
	Create(ctx context.Context, resume *domain.Resume) error
	GetByID(ctx context.Context, userID, id string) (*domain.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Resume, error)
	SoftDelete(ctx context.Context, userID, id string) error
}

type Repositories struct {
	User        UserRepository
	Application ApplicationRepository
	Resume      ResumeRepository
}
