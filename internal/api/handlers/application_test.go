package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/jobtracker/internal/api/handlers"
	"github.com/dom/jobtracker/internal/testutil"
)

func TestApplicationRoutes_RequireToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name      string
		header    string
		wantError string
	}{
		{name: "no header", wantError: "Authorization header required"},
		{name: "wrong scheme", header: "Basic abc", wantError: "Invalid authorization header"},
		{name: "extra parts", header: "Bearer a b", wantError: "Invalid authorization header"},
		{name: "garbage token", header: "Bearer not-a-token", wantError: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.APIURL("/applications"), nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, tt.wantError)
		})
	}
}

func TestApplicationHandler_CRUD(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	// Empty list is an array, not null.
	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/applications"), nil, token)
	var list []handlers.ApplicationResponse
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	assert.NotNil(t, list)
	assert.Empty(t, list)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/applications"), map[string]interface{}{
		"company":     "Acme",
		"position":    "Backend Engineer",
		"appliedDate": "2026-02-14",
		"tags":        []string{" go ", "", "remote"},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created handlers.ApplicationResponse
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "wishlist", created.Status)
	require.NotNil(t, created.AppliedDate)
	assert.Equal(t, "2026-02-14", *created.AppliedDate)
	assert.Equal(t, []string{"go", "remote"}, created.Tags)
	assert.Nil(t, created.Location)

	resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/applications/"+created.ID), map[string]interface{}{
		"company":  "Acme",
		"position": "Backend Engineer",
		"status":   "interviewing",
		"location": "Berlin",
		"deadline": "2026-03-01",
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated handlers.ApplicationResponse
	testutil.AssertJSONResponse(t, resp, &updated)
	resp.Body.Close()

	assert.Equal(t, "interviewing", updated.Status)
	require.NotNil(t, updated.Location)
	assert.Equal(t, "Berlin", *updated.Location)
	assert.Nil(t, updated.AppliedDate)
	assert.Equal(t, []string{}, updated.Tags)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/applications/"+created.ID), nil, token)
	var fetched handlers.ApplicationResponse
	testutil.AssertJSONResponse(t, resp, &fetched)
	resp.Body.Close()
	assert.Equal(t, updated.Status, fetched.Status)
	require.NotNil(t, fetched.Deadline)
	assert.Equal(t, "2026-03-01", *fetched.Deadline)

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/applications/"+created.ID), nil, token)
	var deleted map[string]bool
	testutil.AssertJSONResponse(t, resp, &deleted)
	resp.Body.Close()
	assert.True(t, deleted["success"])

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/applications/"+created.ID), nil, token)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Application not found")
	resp.Body.Close()
}

func TestApplicationHandler_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantError string
	}{
		{name: "missing company", body: map[string]interface{}{"position": "Engineer"}, wantError: "Company and position are required"},
		{name: "blank position", body: map[string]interface{}{"company": "Acme", "position": "  "}, wantError: "Company and position are required"},
		{name: "bad applied date", body: map[string]interface{}{"company": "Acme", "position": "Engineer", "appliedDate": "14/02/2026"}, wantError: "appliedDate must be a YYYY-MM-DD date"},
		{name: "bad deadline", body: map[string]interface{}{"company": "Acme", "position": "Engineer", "deadline": "2026-13-01"}, wantError: "deadline must be a YYYY-MM-DD date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/applications"), tt.body, token)
			defer resp.Body.Close()
			testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, tt.wantError)
		})
	}
}

func TestApplicationHandler_Isolation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ownerID, ownerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	app := testutil.NewApplicationBuilder().WithCompany("Initech").Build(t, ts.DB, ownerID)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp := testutil.DoJSON(t, method, ts.APIURL("/applications/"+app.ID), nil, otherToken)
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Application not found")
		resp.Body.Close()
	}

	resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/applications/"+app.ID), map[string]interface{}{
		"company": "Hijacked", "position": "Owner",
	}, otherToken)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Application not found")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/applications"), nil, ownerToken)
	var list []handlers.ApplicationResponse
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, "Initech", list[0].Company)
}
