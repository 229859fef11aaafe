package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/dtos"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

var (
	ErrJobClosed     = errors.New("job is no longer accepting applications")
	ErrInvalidStatus = errors.New("invalid status")
)

type JobService struct {
	Jobs  database.JobStore
	Forms database.FormStore
}

func NewJobService(jobs database.JobStore, formStore database.FormStore) *JobService {
	return &JobService{Jobs: jobs, Forms: formStore}
}

// CreateJob stores a posting, creating its company on first use. A form id,
// when given, must point at an existing form.
func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	job := &models.Job{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		JobLink:     req.JobLink,
		Location:    req.Location,
		SalaryRange: req.SalaryRange,
		TechStack:   req.TechStack,
		Status:      req.Status,
	}
	if job.Status == "" {
		job.Status = models.JobOpen
	}
	if !models.ValidJobStatus(job.Status) {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, job.Status)
	}
	if req.FormID != "" {
		if _, err := s.Forms.LoadForm(ctx, req.FormID); err != nil {
			return nil, err
		}
		formID := req.FormID
		job.FormID = &formID
	}

	if err := s.Jobs.CreateJob(ctx, strings.TrimSpace(req.CompanyName), job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	log.WithFields(log.Fields{"job_id": job.ID, "company": req.CompanyName, "title": job.Title}).Info("job created")
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id uint) (*models.Job, error) {
	return s.Jobs.LoadJob(ctx, id)
}

// ListOpen returns the jobs shown on the public careers page.
func (s *JobService) ListOpen(ctx context.Context) ([]models.Job, error) {
	return s.Jobs.ListJobs(ctx, models.JobOpen)
}

func (s *JobService) List(ctx context.Context) ([]models.Job, error) {
	return s.Jobs.ListJobs(ctx, "")
}

func (s *JobService) UpdateStatus(ctx context.Context, id uint, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !models.ValidJobStatus(status) {
		return fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	return s.Jobs.UpdateJobStatus(ctx, id, status)
}

// FormFor returns the form candidates fill in for a job: its own form, or the
// default form.
func (s *JobService) FormFor(ctx context.Context, job *models.Job) (forms.Form, error) {
	if job.FormID != nil && *job.FormID != "" {
		return s.Forms.LoadForm(ctx, *job.FormID)
	}
	return s.Forms.DefaultForm(ctx)
}

// OpenJob loads a job that still accepts applications.
func (s *JobService) OpenJob(ctx context.Context, id uint) (*models.Job, error) {
	job, err := s.Jobs.LoadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobOpen {
		return nil, fmt.Errorf("job %d: %w", id, ErrJobClosed)
	}
	return job, nil
}
