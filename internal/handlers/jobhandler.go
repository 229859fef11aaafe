package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/applicant-tracker/internal/dtos"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/services"
)

type JobHandler struct {
	Extractor  services.JobExtractor
	JobService *services.JobService
}

// NewJobHandler creates the handler with dependencies. extractor may be nil
// when no LLM key is configured.
func NewJobHandler(extractor services.JobExtractor, j *services.JobService) *JobHandler {
	return &JobHandler{Extractor: extractor, JobService: j}
}

// ParseJob is the POST /admin/jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if h.Extractor == nil {
		respondError(c, services.ErrLLMDisabled)
		return
	}
	job, err := h.Extractor.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// ListJobs is the public careers list: open jobs only.
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.JobService.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) ListAllJobs(c *gin.Context) {
	jobs, err := h.JobService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob returns an open job together with the widgets of its form.
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	job, err := h.JobService.OpenJob(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	form, err := h.JobService.FormFor(ctx, job)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job":     job,
		"formId":  form.ID,
		"widgets": forms.Render(form),
	})
}

func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.JobService.UpdateStatus(ctx, id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	job, err := h.JobService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func jobID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return 0, false
	}
	return uint(id), true
}
