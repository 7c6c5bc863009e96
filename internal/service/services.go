package service

import (
	"github.com/dom/jobtracker/internal/config"
	"github.com/dom/jobtracker/internal/repository"
)

type Services struct {
	Auth        *AuthService
	Application *ApplicationService
	Resume      *ResumeService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	tokens := NewTokenIssuer(cfg.JWTSecret)
	return &Services{
		Auth:        NewAuthService(repos.User, tokens),
		Application: NewApplicationService(repos.Application),
		Resume:      NewResumeService(repos.Resume, cfg.MaxResumeBytes),
	}
}
