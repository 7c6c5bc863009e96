package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dom/jobtracker/internal/domain"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	pin      string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: fmt.Sprintf("user_%s", uuid.NewString()[:8]),
		pin:      "1234",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithPIN(pin string) *UserBuilder {
	b.pin = pin
	return b
}

// Build creates the user in the database and returns it with the raw PIN
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  strings.ToLower(b.username),
		PinHash:   string(hash),
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.pin
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// BuildAndAuthenticate registers the user via the API and returns the user id
// and bearer token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (string, string) {
	t.Helper()

	resp := DoJSON(t, http.MethodPost, ts.APIURL("/auth"), map[string]string{
		"username": b.username,
		"pin":      b.pin,
		"action":   "register",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return authResp.UserID, authResp.Token
}

// ApplicationBuilder creates test applications
type ApplicationBuilder struct {
	company  string
	position string
	status   domain.ApplicationStatus
	tags     []string
}

func NewApplicationBuilder() *ApplicationBuilder {
	return &ApplicationBuilder{
		company:  "Acme",
		position: "Engineer",
		status:   domain.ApplicationStatusWishlist,
	}
}

func (b *ApplicationBuilder) WithCompany(company string) *ApplicationBuilder {
	b.company = company
	return b
}

func (b *ApplicationBuilder) WithPosition(position string) *ApplicationBuilder {
	b.position = position
	return b
}

func (b *ApplicationBuilder) WithStatus(status domain.ApplicationStatus) *ApplicationBuilder {
	b.status = status
	return b
}

func (b *ApplicationBuilder) WithTags(tags ...string) *ApplicationBuilder {
	b.tags = tags
	return b
}

// Build creates the application for userID in the database
func (b *ApplicationBuilder) Build(t *testing.T, db *gorm.DB, userID string) *domain.Application {
	t.Helper()

	app := &domain.Application{
		ID:       uuid.NewString(),
		UserID:   userID,
		Company:  b.company,
		Position: b.position,
		Status:   b.status,
		Tags:     b.tags,
	}

	if err := db.Create(app).Error; err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	return app
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// DoJSON sends body as JSON and returns the response. The caller closes the body.
func DoJSON(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}
