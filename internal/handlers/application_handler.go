package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/applicant-tracker/internal/dtos"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
	// MaxUploadBytes caps a whole multipart submission.
	MaxUploadBytes int64
}

func NewApplicationHandler(a *services.ApplicationService, maxUploadMB int) *ApplicationHandler {
	return &ApplicationHandler{Applications: a, MaxUploadBytes: int64(maxUploadMB) << 20}
}

// Apply is POST /jobs/:id/apply
func (h *ApplicationHandler) Apply(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	h.submit(c, services.Submission{JobID: &id})
}

// SubmitForm is POST /forms/:id/submit, for forms not tied to a job.
func (h *ApplicationHandler) SubmitForm(c *gin.Context) {
	h.submit(c, services.Submission{FormID: c.Param("id")})
}

func (h *ApplicationHandler) submit(c *gin.Context, sub services.Submission) {
	values, status, err := h.readValues(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	sub.Values = values
	sub.Geo = GeoFromRequest(c)

	app, err := h.Applications.Submit(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": app.ID, "status": app.Status})
}

// readValues accepts either a JSON body or a multipart form whose "data" part
// holds the JSON values and whose file parts are keyed by field id.
func (h *ApplicationHandler) readValues(c *gin.Context) (forms.Values, int, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req dtos.SubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid JSON format: %w", err)
		}
		return req.Values, 0, nil
	}

	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	mf, err := c.MultipartForm()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d MB", h.MaxUploadBytes>>20)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}

	values := forms.Values{}
	if data := mf.Value["data"]; len(data) > 0 && strings.TrimSpace(data[0]) != "" {
		if err := json.Unmarshal([]byte(data[0]), &values); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid data part: %w", err)
		}
	}
	for fieldID, headers := range mf.File {
		if len(headers) == 0 {
			continue
		}
		upload, err := readUpload(headers[0])
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		values[fieldID] = forms.UploadValue(upload)
	}
	return values, 0, nil
}

func readUpload(fh *multipart.FileHeader) (forms.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return forms.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return forms.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return forms.Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// ListApplications is GET /admin/applications?job_id=
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var jobFilter *uint
	if raw := c.Query("job_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
			return
		}
		v := uint(id)
		jobFilter = &v
	}
	apps, err := h.Applications.List(c.Request.Context(), jobFilter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// GetApplication returns the classified review of one application.
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	review, err := h.Applications.Review(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	app, err := h.Applications.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// DownloadFile is GET /admin/files/*handle
func (h *ApplicationHandler) DownloadFile(c *gin.Context) {
	handle := strings.TrimPrefix(c.Param("handle"), "/")
	data, err := h.Applications.DownloadFile(c.Request.Context(), handle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", forms.LegacyDisplayName(handle)))
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
