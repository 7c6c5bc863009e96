package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dom/jobtracker/internal/api/middleware"
	"github.com/dom/jobtracker/internal/api/respond"
	"github.com/dom/jobtracker/internal/domain"
	"github.com/dom/jobtracker/internal/service"
	"github.com/go-chi/chi/v5"
)

type ApplicationHandler struct {
	appService   *service.ApplicationService
	exposeErrors bool
}

func NewApplicationHandler(appService *service.ApplicationService, exposeErrors bool) *ApplicationHandler {
	return &ApplicationHandler{
		appService:   appService,
		exposeErrors: exposeErrors,
	}
}

type ApplicationRequest struct {
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Location    *string  `json:"location"`
	Status      string   `json:"status"`
	AppliedDate *string  `json:"appliedDate"`
	URL         *string  `json:"url"`
	Notes       *string  `json:"notes"`
	ResumeURL   *string  `json:"resumeUrl"`
	Deadline    *string  `json:"deadline"`
	Tags        []string `json:"tags"`
}

type ApplicationResponse struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Location    *string   `json:"location"`
	Status      string    `json:"status"`
	AppliedDate *string   `json:"appliedDate"`
	URL         *string   `json:"url"`
	Notes       *string   `json:"notes"`
	ResumeURL   *string   `json:"resumeUrl"`
	Deadline    *string   `json:"deadline"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (req ApplicationRequest) input() service.ApplicationInput {
	return service.ApplicationInput{
		Company:     req.Company,
		Position:    req.Position,
		Location:    req.Location,
		Status:      req.Status,
		AppliedDate: req.AppliedDate,
		URL:         req.URL,
		Notes:       req.Notes,
		ResumeURL:   req.ResumeURL,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
	}
}

func toApplicationResponse(app *domain.Application) ApplicationResponse {
	tags := []string(app.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ApplicationResponse{
		ID:          app.ID,
		Company:     app.Company,
		Position:    app.Position,
		Location:    app.Location,
		Status:      string(app.Status),
		AppliedDate: app.AppliedDate,
		URL:         app.URL,
		Notes:       app.Notes,
		ResumeURL:   app.ResumeURL,
		Deadline:    app.Deadline,
		Tags:        tags,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	apps, err := h.appService.List(r.Context(), userID)
	if err != nil {
		respond.InternalError(w, r, "handlers.ApplicationList", err, h.exposeErrors)
		return
	}

	resp := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, toApplicationResponse(app))
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.appService.Create(r.Context(), userID, req.input())
	if err != nil {
		h.writeError(w, r, "handlers.ApplicationCreate", err)
		return
	}

	respond.JSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	app, err := h.appService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "handlers.ApplicationGet", err)
		return
	}

	respond.JSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, err := h.appService.Update(r.Context(), userID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeError(w, r, "handlers.ApplicationUpdate", err)
		return
	}

	respond.JSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.appService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "handlers.ApplicationDelete", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ApplicationHandler) writeError(w http.ResponseWriter, r *http.Request, component string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Application not found")
	default:
		respond.InternalError(w, r, component, err, h.exposeErrors)
	}
}
