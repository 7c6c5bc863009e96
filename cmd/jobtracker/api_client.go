package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dom/jobtracker/internal/api/handlers"
	"github.com/dom/jobtracker/internal/api/respond"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/api",
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Authenticate registers or logs in and returns the issued token.
func (c *APIClient) Authenticate(username, pin, action string) (*handlers.AuthResponse, error) {
	body := map[string]string{
		"username": username,
		"pin":      pin,
		"action":   action,
	}

	var result handlers.AuthResponse
	if err := c.do(http.MethodPost, "/auth", body, &result, http.StatusOK, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("%s failed: %w", action, err)
	}
	return &result, nil
}

func (c *APIClient) Me() (*handlers.UserResponse, error) {
	var user handlers.UserResponse
	if err := c.do(http.MethodGet, "/auth/me", nil, &user, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &user, nil
}

func (c *APIClient) ListApplications() ([]handlers.ApplicationResponse, error) {
	var apps []handlers.ApplicationResponse
	if err := c.do(http.MethodGet, "/applications", nil, &apps, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list applications failed: %w", err)
	}
	return apps, nil
}

func (c *APIClient) GetApplication(id string) (*handlers.ApplicationResponse, error) {
	var app handlers.ApplicationResponse
	if err := c.do(http.MethodGet, "/applications/"+id, nil, &app, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get application failed: %w", err)
	}
	return &app, nil
}

func (c *APIClient) CreateApplication(req handlers.ApplicationRequest) (*handlers.ApplicationResponse, error) {
	var app handlers.ApplicationResponse
	if err := c.do(http.MethodPost, "/applications", req, &app, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("create application failed: %w", err)
	}
	return &app, nil
}

func (c *APIClient) UpdateApplication(id string, req handlers.ApplicationRequest) (*handlers.ApplicationResponse, error) {
	var app handlers.ApplicationResponse
	if err := c.do(http.MethodPut, "/applications/"+id, req, &app, http.StatusOK); err != nil {
		return nil, fmt.Errorf("update application failed: %w", err)
	}
	return &app, nil
}

func (c *APIClient) DeleteApplication(id string) error {
	if err := c.do(http.MethodDelete, "/applications/"+id, nil, nil, http.StatusOK); err != nil {
		return fmt.Errorf("delete application failed: %w", err)
	}
	return nil
}

func (c *APIClient) ListResumes() ([]handlers.ResumeResponse, error) {
	var resumes []handlers.ResumeResponse
	if err := c.do(http.MethodGet, "/resumes", nil, &resumes, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list resumes failed: %w", err)
	}
	return resumes, nil
}

func (c *APIClient) UploadResume(req handlers.ResumeRequest) (*handlers.ResumeResponse, error) {
	var resume handlers.ResumeResponse
	if err := c.do(http.MethodPost, "/resumes", req, &resume, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("upload resume failed: %w", err)
	}
	return &resume, nil
}

func (c *APIClient) DeleteResume(id string) error {
	if err := c.do(http.MethodDelete, "/resumes/"+id, nil, nil, http.StatusOK); err != nil {
		return fmt.Errorf("delete resume failed: %w", err)
	}
	return nil
}

// do sends body as JSON and decodes the response into out when the status is
// one of want.
func (c *APIClient) do(method, path string, body, out interface{}, want ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, status := range want {
		if resp.StatusCode == status {
			if out == nil {
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)
		}
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	var apiErr respond.ErrorResponse
	if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
}
