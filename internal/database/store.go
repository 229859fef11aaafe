package database

import (
	"context"
	"errors"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// FormStore persists form schemas. At most one form is the default.
type FormStore interface {
	LoadForm(ctx context.Context, id string) (forms.Form, error)
	// SaveForm creates or replaces a form. Saving a form marked default
	// clears the flag on every other form.
	SaveForm(ctx context.Context, form forms.Form) error
	ListForms(ctx context.Context) ([]forms.Form, error)
	DeleteForm(ctx context.Context, id string) error
	DefaultForm(ctx context.Context) (forms.Form, error)
	SetDefaultForm(ctx context.Context, id string) error
}

// ApplicationStore persists submissions and their audit trail.
type ApplicationStore interface {
	SaveApplication(ctx context.Context, app *models.Application) error
	LoadApplication(ctx context.Context, id string) (*models.Application, error)
	LoadSubmission(ctx context.Context, id string) ([]forms.SubmittedField, error)
	// ListApplications returns newest first. A nil jobID lists everything.
	ListApplications(ctx context.Context, jobID *uint) ([]models.Application, error)
	FindApplicationsByEmail(ctx context.Context, email string) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id, status string) error
	AppendEvent(ctx context.Context, event *models.ApplicationEvent) error
	ListEvents(ctx context.Context, applicationID string) ([]models.ApplicationEvent, error)
}

// JobStore persists job postings and their companies.
type JobStore interface {
	// CreateJob attaches the job to the named company, creating it if needed.
	CreateJob(ctx context.Context, companyName string, job *models.Job) error
	LoadJob(ctx context.Context, id uint) (*models.Job, error)
	// ListJobs filters by status unless status is "".
	ListJobs(ctx context.Context, status string) ([]models.Job, error)
	UpdateJobStatus(ctx context.Context, id uint, status string) error
}

// NotificationStore tracks alert recipients and what was already sent.
type NotificationStore interface {
	AlertRecipients(ctx context.Context) ([]models.User, error)
	WasNotified(ctx context.Context, key string) (bool, error)
	// MarkNotified records key and reports whether it was new.
	MarkNotified(ctx context.Context, key string) (bool, error)
}

// Store is everything the service persists.
type Store interface {
	FormStore
	ApplicationStore
	JobStore
	NotificationStore
}
