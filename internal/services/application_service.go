package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/justsurfingit/applicant-tracker/internal/classifier"
	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

// ErrNoForm is returned when a submission names neither a job nor a form.
var ErrNoForm = errors.New("no form to submit against")

// ValidationError carries per-field messages back to the candidate.
type ValidationError struct {
	Errors forms.ErrorMap
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%d field(s) invalid: %s", len(ids), strings.Join(ids, ", "))
}

// Submission is one filled-in form as received over HTTP.
type Submission struct {
	FormID string
	JobID  *uint
	Values forms.Values
	Geo    *classifier.GeoMetadata
}

// Review is everything the admin screen shows for one application.
type Review struct {
	Application *models.Application       `json:"application"`
	Identity    classifier.Identity       `json:"identity"`
	Profile     classifier.Profile        `json:"profile"`
	Events      []models.ApplicationEvent `json:"events"`
}

type ApplicationService struct {
	Store    database.Store
	Files    forms.FileStore
	Jobs     *JobService
	Matcher  *MatcherService
	Notifier Notifier
}

func NewApplicationService(store database.Store, files forms.FileStore, jobs *JobService, notifier Notifier) *ApplicationService {
	return &ApplicationService{
		Store:    store,
		Files:    files,
		Jobs:     jobs,
		Matcher:  NewMatcherService(store),
		Notifier: notifier,
	}
}

// FormForSubmission resolves the form a submission is checked against: the
// job's form when a job is given, otherwise the named form.
func (s *ApplicationService) FormForSubmission(ctx context.Context, jobID *uint, formID string) (forms.Form, *models.Job, error) {
	if jobID != nil {
		job, err := s.Jobs.OpenJob(ctx, *jobID)
		if err != nil {
			return forms.Form{}, nil, err
		}
		form, err := s.Jobs.FormFor(ctx, job)
		return form, job, err
	}
	if formID == "" {
		return forms.Form{}, nil, ErrNoForm
	}
	form, err := s.Store.LoadForm(ctx, formID)
	return form, nil, err
}

// Submit validates, encodes and stores one application. Field problems come
// back as *ValidationError; nothing is stored in that case.
func (s *ApplicationService) Submit(ctx context.Context, sub Submission) (*models.Application, error) {
	form, job, err := s.FormForSubmission(ctx, sub.JobID, sub.FormID)
	if err != nil {
		return nil, err
	}
	if sub.Values == nil {
		sub.Values = forms.Values{}
	}

	if errs := forms.Validate(form, sub.Values); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	res := forms.Encode(ctx, form, sub.Values, s.Files)
	if len(res.Errors) > 0 {
		return nil, &ValidationError{Errors: res.Errors}
	}

	id := classifier.ExtractIdentity(res.Fields)
	app := &models.Application{
		ID:             uuid.NewString(),
		JobID:          sub.JobID,
		FormID:         form.ID,
		CandidateName:  id.Name,
		CandidateEmail: NormalizeEmail(id.Email),
		CandidatePhone: id.Phone,
		Status:         models.StatusApplied,
	}
	if err := app.SetSubmission(res.Fields); err != nil {
		return nil, err
	}
	app.SetGeo(sub.Geo)

	// looked up before saving so the new record does not match itself
	dups, err := s.Matcher.FindDuplicates(ctx, app.CandidateEmail, sub.JobID)
	if err != nil {
		log.WithError(err).Warn("duplicate check failed")
	}

	if err := s.Store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}

	logger := log.WithFields(log.Fields{"application_id": app.ID, "form_id": form.ID})
	s.event(ctx, app.ID, models.EventSubmitted, fmt.Sprintf("Submitted via form %q", form.Name))
	if len(dups) > 0 {
		prev := make([]string, len(dups))
		for i, d := range dups {
			prev[i] = d.ID
		}
		s.event(ctx, app.ID, models.EventDuplicate, "Same email as "+strings.Join(prev, ", "))
		logger.WithField("previous", len(dups)).Info("possible duplicate application")
	}
	logger.Info("application received")

	if s.Notifier != nil {
		title := ""
		if job != nil {
			title = job.Title
		}
		s.Notifier.NotifyNewApplication(*app, title)
	}
	return app, nil
}

func (s *ApplicationService) event(ctx context.Context, appID, kind, details string) {
	err := s.Store.AppendEvent(ctx, &models.ApplicationEvent{
		ApplicationID: appID,
		EventType:     kind,
		Details:       details,
	})
	if err != nil {
		log.WithError(err).WithField("application_id", appID).Warn("could not record event")
	}
}

func (s *ApplicationService) List(ctx context.Context, jobID *uint) ([]models.Application, error) {
	return s.Store.ListApplications(ctx, jobID)
}

// Review loads an application and classifies its answers.
func (s *ApplicationService) Review(ctx context.Context, id string) (*Review, error) {
	app, err := s.Store.LoadApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := app.Submission()
	if err != nil {
		// shown degraded rather than not at all
		log.WithError(err).WithField("application_id", id).Warn("stored answers unreadable")
		fields = nil
	}
	events, err := s.Store.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.ApplicationEvent{}
	}
	return &Review{
		Application: app,
		Identity:    classifier.ExtractIdentity(fields),
		Profile:     classifier.Classify(fields, app.Geo()),
		Events:      events,
	}, nil
}

// UpdateStatus moves an application along the pipeline and records the move.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, status, note string) (*models.Application, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !models.ValidApplicationStatus(status) {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	app, err := s.Store.LoadApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == status {
		return app, nil
	}
	if err := s.Store.UpdateApplicationStatus(ctx, id, status); err != nil {
		return nil, err
	}

	details := app.Status + " -> " + status
	if note = strings.TrimSpace(note); note != "" {
		details += ": " + note
	}
	s.event(ctx, id, models.EventStatusChanged, details)
	log.WithFields(log.Fields{"application_id": id, "from": app.Status, "to": status}).Info("application status changed")

	app.Status = status
	return app, nil
}

// DownloadFile returns the bytes behind a stored file handle.
func (s *ApplicationService) DownloadFile(ctx context.Context, handle string) ([]byte, error) {
	if s.Files == nil {
		return nil, fmt.Errorf("file %s: %w", handle, database.ErrNotFound)
	}
	return s.Files.Retrieve(ctx, handle)
}
