package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	ActionRegister = "register"
	ActionLogin    = "login"
)

const (
	MinUsernameLength = 3
	pinHashCost       = 10
)

// Validation messages returned verbatim to clients.
const (
	MsgCredentialsRequired = "Username and PIN required"
	MsgUsernameTooShort    = "Username must be at least 3 characters"
	MsgInvalidPIN          = "PIN must be exactly 4 digits"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// dummyPinHash is compared against on unknown usernames so a failed login
// costs one bcrypt comparison whether or not the account exists.
var dummyPinHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("0000"), pinHashCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy pin hash: %v", err))
	}
	return hash
})

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

type AuthInput struct {
	Username string
	PIN      string
	Action   string
}

type AuthResult struct {
	User  *domain.User
	Token string
	// Created is set when the account was registered by this call.
	Created bool
}

// Authenticate validates the credentials and registers or logs in depending on
// Action. Any action other than "register" is a login.
func (s *AuthService) Authenticate(ctx context.Context, input AuthInput) (*AuthResult, error) {
	username, err := normalizeCredentials(input.Username, input.PIN)
	if err != nil {
		return nil, err
	}

	switch input.Action {
	case ActionRegister:
		return s.register(ctx, username, input.PIN)
	case "", ActionLogin:
	default:
		slog.WarnContext(ctx, "unknown auth action, treating as login",
			"component", "service.Authenticate",
			"action", input.Action,
		)
	}
	return s.login(ctx, username, input.PIN)
}

func (s *AuthService) Register(ctx context.Context, username, pin string) (*AuthResult, error) {
	normalized, err := normalizeCredentials(username, pin)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, normalized, pin)
}

func (s *AuthService) Login(ctx context.Context, username, pin string) (*AuthResult, error) {
	normalized, err := normalizeCredentials(username, pin)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, normalized, pin)
}

func (s *AuthService) register(ctx context.Context, username, pin string) (*AuthResult, error) {
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		PinHash:   string(pinHash),
		CreatedAt: time.Now().UTC(),
	}

	// The unique index on username is the only conflict check.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "component", "service.Register", "user_id", user.ID)
	return &AuthResult{User: user, Token: token, Created: true}, nil
}

func (s *AuthService) login(ctx context.Context, username, pin string) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyPinHash(), []byte(pin))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// ValidateToken returns the user id carried by a bearer token.
func (s *AuthService) ValidateToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// normalizeCredentials checks the shape of a username/PIN pair and returns the
// lower-cased username.
func normalizeCredentials(username, pin string) (string, error) {
	if username == "" || pin == "" {
		return "", domain.NewValidationError(MsgCredentialsRequired)
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return "", domain.NewValidationError(MsgUsernameTooShort)
	}
	if !pinPattern.MatchString(pin) {
		return "", domain.NewValidationError(MsgInvalidPIN)
	}
	return strings.ToLower(username), nil
}
