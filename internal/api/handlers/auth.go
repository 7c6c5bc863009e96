package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dom/jobtracker/internal/api/middleware"
	"github.com/dom/jobtracker/internal/api/respond"
	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/service"
)

type AuthHandler struct {
	authService  *service.AuthService
	exposeErrors bool
}

// NewAuthHandler builds the auth endpoint. exposeErrors includes internal error
// text in 500 responses.
func NewAuthHandler(authService *service.AuthService, exposeErrors bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		exposeErrors: exposeErrors,
	}
}

type AuthRequest struct {
	Username string     `json:"username"`
	PIN      looseToken `json:"pin"`
	Action   string     `json:"action"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Authenticate handles POST /api/auth. action "register" creates the account,
// anything else logs in.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	// An empty body is treated as missing credentials.
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Authenticate(r.Context(), service.AuthInput{
		Username: req.Username,
		PIN:      string(req.PIN),
		Action:   req.Action,
	})
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			respond.Error(w, http.StatusBadRequest, ve.Message)
		case errors.Is(err, domain.ErrUsernameTaken):
			respond.Error(w, http.StatusBadRequest, "Username already taken")
		case errors.Is(err, domain.ErrInvalidCredentials):
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			respond.InternalError(w, r, "handlers.Auth", err, h.exposeErrors)
		}
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, AuthResponse{
		Token:  result.Token,
		UserID: result.User.ID,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		respond.InternalError(w, r, "handlers.Me", err, h.exposeErrors)
		return
	}

	respond.JSON(w, http.StatusOK, UserResponse{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

// looseToken accepts a JSON string or number. Clients send the PIN either way.
type looseToken string

func (t *looseToken) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = looseToken(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = looseToken(n.String())
	return nil
}
