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

type ResumeHandler struct {
	resumeService *service.ResumeService
	exposeErrors  bool
}

func NewResumeHandler(resumeService *service.ResumeService, exposeErrors bool) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
		exposeErrors:  exposeErrors,
	}
}

type ResumeRequest struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
	FileType string `json:"fileType"`
}

// ResumeResponse omits fileData in listings.
type ResumeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FileName  string    `json:"fileName"`
	FileData  string    `json:"fileData,omitempty"`
	FileType  string    `json:"fileType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResumeResponse(resume *domain.Resume, withData bool) ResumeResponse {
	resp := ResumeResponse{
		ID:        resume.ID,
		Name:      resume.Name,
		FileName:  resume.FileName,
		FileType:  resume.FileType,
		CreatedAt: resume.CreatedAt,
		UpdatedAt: resume.UpdatedAt,
	}
	if withData {
		resp.FileData = resume.FileData
	}
	return resp
}

func (h *ResumeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resumes, err := h.resumeService.List(r.Context(), userID)
	if err != nil {
		respond.InternalError(w, r, "handlers.ResumeList", err, h.exposeErrors)
		return
	}

	resp := make([]ResumeResponse, 0, len(resumes))
	for _, resume := range resumes {
		resp = append(resp, toResumeResponse(resume, false))
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if limit := h.resumeService.MaxRequestBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	var req ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusBadRequest, h.resumeService.TooLarge().Message)
			return
		}
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resume, err := h.resumeService.Upload(r.Context(), userID, service.ResumeInput{
		Name:     req.Name,
		FileName: req.FileName,
		FileData: req.FileData,
		FileType: req.FileType,
	})
	if err != nil {
		h.writeError(w, r, "handlers.ResumeUpload", err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResumeResponse(resume, false))
}

func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resume, err := h.resumeService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "handlers.ResumeGet", err)
		return
	}

	respond.JSON(w, http.StatusOK, toResumeResponse(resume, true))
}

func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.resumeService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "handlers.ResumeDelete", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ResumeHandler) writeError(w http.ResponseWriter, r *http.Request, component string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Resume not found")
	default:
		respond.InternalError(w, r, component, err, h.exposeErrors)
	}
}
