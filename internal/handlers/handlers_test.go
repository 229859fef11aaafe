package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/applicant-tracker/internal/auth"
	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/dtos"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/models"
	"github.com/justsurfingit/applicant-tracker/internal/services"
	"github.com/justsurfingit/applicant-tracker/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubExtractor struct {
	job *dtos.ExtractedJob
}

func (s stubExtractor) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.ExtractedJob, error) {
	return s.job, nil
}

type testEnv struct {
	router *gin.Engine
	store  *database.MemoryStore
	forms  *services.FormService
	jobH   *JobHandler
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	store := database.NewMemoryStore()
	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	formSvc := services.NewFormService(store)
	jobSvc := services.NewJobService(store, store)
	appSvc := services.NewApplicationService(store, files, jobSvc, nil)

	h := Handlers{
		Jobs:         NewJobHandler(nil, jobSvc),
		Forms:        NewFormHandler(formSvc),
		Applications: NewApplicationHandler(appSvc, 1),
	}
	r := gin.New()
	Register(r, h, secret)
	return &testEnv{router: r, store: store, forms: formSvc, jobH: h.Jobs}
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// applyForm is Full Name (required), Email (required), Resume (optional).
func (e *testEnv) applyForm(t *testing.T) (forms.Form, map[string]string) {
	t.Helper()
	ctx := context.Background()
	form, err := e.forms.Create(ctx, "Backend", "", false)
	require.NoError(t, err)

	ids := map[string]string{}
	for _, fd := range []struct {
		t        string
		label    string
		required bool
	}{
		{"TEXT", "Full Name", true},
		{"EMAIL", "Email", true},
		{"FILE", "Resume", false},
	} {
		var field forms.FormField
		form, field, err = e.forms.InsertField(ctx, form.ID, fd.t, nil)
		require.NoError(t, err)
		label, required := fd.label, fd.required
		form, err = e.forms.UpdateField(ctx, form.ID, field.ID, forms.FieldPatch{Label: &label, IsRequired: &required})
		require.NoError(t, err)
		ids[fd.label] = field.ID
	}
	return form, ids
}

func (e *testEnv) openJob(t *testing.T, formID string) models.Job {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/admin/jobs", dtos.JobCreationRequest{
		CompanyName: "Acme",
		Title:       "Backend Engineer",
		Description: "Build APIs",
		FormID:      formID,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Job](t, w)
}

func TestHealthCheck(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestFormBuilderRoutes(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(http.MethodPost, "/api/v1/admin/forms", dtos.CreateFormRequest{Name: "Ops"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	form := decode[forms.Form](t, w)
	base := "/api/v1/admin/forms/" + form.ID

	w = e.do(http.MethodPost, base+"/fields", gin.H{"fieldType": "TEXT"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	text := decode[struct{ Field forms.FormField }](t, w).Field

	w = e.do(http.MethodPost, base+"/fields", gin.H{"fieldType": "SELECT", "target": 0}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	sel := decode[struct{ Field forms.FormField }](t, w).Field
	assert.Equal(t, forms.Options(forms.DefaultOptions), sel.Options)

	w = e.do(http.MethodPost, base+"/fields/"+sel.ID+"/move", gin.H{"target": 2}, "")
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[forms.Form](t, w)
	assert.Equal(t, []string{text.ID, sel.ID}, []string{moved.Fields[0].ID, moved.Fields[1].ID})

	w = e.do(http.MethodPut, base+"/fields/"+sel.ID+"/options", gin.H{"options": "Remote\nOnsite\n"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPut, base+"/fields/"+text.ID+"/options", gin.H{"options": "a"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, base+"/fields/"+text.ID, gin.H{"label": "Team", "fieldWidth": "50%", "isRequired": true}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPatch, base+"/fields/"+text.ID, gin.H{"fieldType": "HOLOGRAM"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodPatch, base+"/fields/missing", gin.H{"label": "x"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/v1/forms/"+form.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	rendered := decode[struct{ Widgets []forms.Widget }](t, w)
	require.Len(t, rendered.Widgets, 2)
	assert.Equal(t, "Team", rendered.Widgets[0].Label)
	assert.Equal(t, 6, rendered.Widgets[0].Span)
	assert.Equal(t, []string{"Remote", "Onsite"}, rendered.Widgets[1].Options)

	w = e.do(http.MethodDelete, base+"/fields/"+text.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[forms.Form](t, w).Fields, 1)

	w = e.do(http.MethodPost, base+"/default", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[forms.Form](t, w).IsDefault)

	w = e.do(http.MethodGet, "/api/v1/admin/forms", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]forms.Form](t, w), 1)

	w = e.do(http.MethodDelete, base, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFormBuilderRejectsInvalidForms(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(http.MethodPost, "/api/v1/admin/forms", dtos.CreateFormRequest{Name: "   "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "invalid form")

	w = e.do(http.MethodPost, "/api/v1/admin/forms", dtos.CreateFormRequest{Name: "Ops"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/v1/admin/forms/" + decode[forms.Form](t, w).ID

	w = e.do(http.MethodPost, base+"/fields", gin.H{"fieldType": "TEXT"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	field := decode[struct{ Field forms.FormField }](t, w).Field

	w = e.do(http.MethodPatch, base+"/fields/"+field.ID, gin.H{"label": ""}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = e.do(http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Text Input", decode[forms.Form](t, w).Fields[0].Label)
}

func TestApplyWithJSON(t *testing.T) {
	e := newTestEnv(t, "")
	form, ids := e.applyForm(t)
	job := e.openJob(t, form.ID)
	jobPath := fmt.Sprintf("/api/v1/jobs/%d", job.ID)

	w := e.do(http.MethodGet, jobPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		FormID  string
		Widgets []forms.Widget
	}](t, w)
	assert.Equal(t, form.ID, page.FormID)
	assert.Len(t, page.Widgets, 3)

	w = e.do(http.MethodPost, jobPath+"/apply", gin.H{"values": gin.H{ids["Full Name"]: "Ada Lovelace"}}, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode[struct{ Errors map[string]string }](t, w).Errors
	assert.Equal(t, "Email is required", errs[ids["Email"]])

	w = e.do(http.MethodPost, jobPath+"/apply", gin.H{"values": gin.H{
		ids["Full Name"]: "Ada Lovelace",
		ids["Email"]:     "ada@example.com",
	}}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct{ ID, Status string }](t, w)
	assert.Equal(t, models.StatusApplied, created.Status)

	w = e.do(http.MethodGet, "/api/v1/admin/applications/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	review := decode[services.Review](t, w)
	assert.Equal(t, "Ada Lovelace", review.Identity.Name)
	assert.Equal(t, "ada@example.com", review.Application.CandidateEmail)

	w = e.do(http.MethodPatch, "/api/v1/admin/applications/"+created.ID+"/status", gin.H{"status": "screening"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusScreening, decode[models.Application](t, w).Status)
	w = e.do(http.MethodPatch, "/api/v1/admin/applications/"+created.ID+"/status", gin.H{"status": "LIMBO"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/applications?job_id=%d", job.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Application](t, w), 1)
	w = e.do(http.MethodGet, "/api/v1/admin/applications?job_id=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyWithMultipartUpload(t *testing.T) {
	e := newTestEnv(t, "")
	form, ids := e.applyForm(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	data, _ := json.Marshal(map[string]string{
		ids["Full Name"]: "Grace Hopper",
		ids["Email"]:     "grace@example.com",
	})
	require.NoError(t, mw.WriteField("data", string(data)))
	part, err := mw.CreateFormFile(ids["Resume"], "grace-cv.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 resume"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/"+form.ID+"/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("CF-IPCity", "Arlington")
	req.Header.Set("CF-IPCountry", "US")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[struct{ ID string }](t, w).ID

	w = e.do(http.MethodGet, "/api/v1/admin/applications/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	review := decode[services.Review](t, w)
	require.Len(t, review.Profile.Files, 1)
	file := review.Profile.Files[0]
	assert.Equal(t, "grace-cv.pdf", file.DisplayName)
	assert.Equal(t, "Arlington", review.Application.City)

	w = e.do(http.MethodGet, "/api/v1/admin/files/"+file.Handle, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 resume", w.Body.String())
	assert.Equal(t, `attachment; filename="grace-cv.pdf"`, w.Header().Get("Content-Disposition"))

	w = e.do(http.MethodGet, "/api/v1/admin/files/1700000000000_missing.pdf", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClosedJob(t *testing.T) {
	e := newTestEnv(t, "")
	form, ids := e.applyForm(t)
	job := e.openJob(t, form.ID)
	jobPath := fmt.Sprintf("/api/v1/jobs/%d", job.ID)

	w := e.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/jobs/%d/status", job.ID), gin.H{"status": "CLOSED"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, jobPath, nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = e.do(http.MethodPost, jobPath+"/apply", gin.H{"values": gin.H{ids["Email"]: "a@b.co"}}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodGet, "/api/v1/jobs", nil, "")
	assert.Empty(t, decode[[]models.Job](t, w))
	w = e.do(http.MethodGet, "/api/v1/admin/jobs", nil, "")
	assert.Len(t, decode[[]models.Job](t, w), 1)

	w = e.do(http.MethodGet, "/api/v1/jobs/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodGet, "/api/v1/jobs/404", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseJob(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(http.MethodPost, "/api/v1/admin/jobs/extract", gin.H{"raw_html": "<p>Go dev</p>"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	e.jobH.Extractor = stubExtractor{job: &dtos.ExtractedJob{CompanyName: "Acme", Title: "Go dev", TechStack: []string{"Go"}}}
	w = e.do(http.MethodPost, "/api/v1/admin/jobs/extract", gin.H{"raw_html": "<p>Go dev</p>"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[struct {
		Success bool
		Data    dtos.ExtractedJob
	}](t, w)
	assert.True(t, out.Success)
	assert.Equal(t, "Acme", out.Data.CompanyName)

	w = e.do(http.MethodPost, "/api/v1/admin/jobs/extract", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	const secret = "test-secret"
	e := newTestEnv(t, secret)

	w := e.do(http.MethodGet, "/api/v1/admin/forms", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer, err := auth.GenerateToken(secret, "intern@acme.io", "viewer", time.Hour)
	require.NoError(t, err)
	w = e.do(http.MethodGet, "/api/v1/admin/forms", nil, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := auth.GenerateToken(secret, "hr@acme.io", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	w = e.do(http.MethodGet, "/api/v1/admin/forms", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	// public routes stay open
	w = e.do(http.MethodGet, "/api/v1/jobs", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGeoFromRequest(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.RemoteAddr = "203.0.113.7:5555"
	c.Request.Header.Set("CF-IPCity", " London ")
	c.Request.Header.Set("CF-Region", "England")
	c.Request.Header.Set("CF-IPCountry", "GB")
	c.Request.Header.Set("CF-IPLatitude", "51.5074")
	c.Request.Header.Set("CF-IPLongitude", "not-a-number")

	geo := GeoFromRequest(c)
	assert.Equal(t, "203.0.113.7", geo.IP)
	assert.Equal(t, "London", geo.City)
	assert.Equal(t, "England", geo.State)
	assert.Equal(t, "GB", geo.Country)
	require.NotNil(t, geo.Latitude)
	assert.InDelta(t, 51.5074, *geo.Latitude, 1e-9)
	assert.Nil(t, geo.Longitude)
}
