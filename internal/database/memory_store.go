package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

// MemoryStore is an in-memory Store for tests and STORE_DRIVER=memory.
// Everything handed in or out is copied.
type MemoryStore struct {
	mu sync.RWMutex

	forms     map[string]formEntry
	apps      map[string]models.Application
	appSeq    map[string]uint
	events    []models.ApplicationEvent
	companies map[string]models.Company
	jobs      map[uint]models.Job
	users     []models.User
	sent      map[string]bool

	nextID uint
	now    func() time.Time
}

type formEntry struct {
	form forms.Form
	seq  uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forms:     make(map[string]formEntry),
		apps:      make(map[string]models.Application),
		appSeq:    make(map[string]uint),
		companies: make(map[string]models.Company),
		jobs:      make(map[uint]models.Job),
		sent:      make(map[string]bool),
		now:       time.Now,
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

// AddUser registers an alert recipient.
func (s *MemoryStore) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	u.CreatedAt = s.now()
	s.users = append(s.users, u)
	return u
}

// --- forms ---

func (s *MemoryStore) LoadForm(_ context.Context, id string) (forms.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.forms[id]
	if !ok {
		return forms.Form{}, fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	return e.form.Sorted(), nil
}

func (s *MemoryStore) SaveForm(_ context.Context, form forms.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if form.IsDefault {
		s.clearDefault(form.ID)
	}
	e, ok := s.forms[form.ID]
	if !ok {
		e.seq = s.id()
	}
	if form.Fields == nil {
		form.Fields = []forms.FormField{}
	}
	e.form = form.Sorted()
	s.forms[form.ID] = e
	return nil
}

func (s *MemoryStore) ListForms(_ context.Context) ([]forms.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]formEntry, 0, len(s.forms))
	for _, e := range s.forms {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]forms.Form, len(entries))
	for i, e := range entries {
		out[i] = e.form.Sorted()
	}
	return out, nil
}

func (s *MemoryStore) DeleteForm(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	delete(s.forms, id)
	return nil
}

func (s *MemoryStore) DefaultForm(_ context.Context) (forms.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.forms {
		if e.form.IsDefault {
			return e.form.Sorted(), nil
		}
	}
	return forms.Form{}, fmt.Errorf("default form: %w", ErrNotFound)
}

func (s *MemoryStore) SetDefaultForm(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.forms[id]
	if !ok {
		return fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	s.clearDefault(id)
	e.form.IsDefault = true
	s.forms[id] = e
	return nil
}

func (s *MemoryStore) clearDefault(except string) {
	for id, e := range s.forms {
		if id != except && e.form.IsDefault {
			e.form.IsDefault = false
			s.forms[id] = e
		}
	}
}

// --- applications ---

func copyApplication(a models.Application) models.Application {
	a.Fields = append(a.Fields[:0:0], a.Fields...)
	return a
}

func (s *MemoryStore) SaveApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app.ID == "" {
		return fmt.Errorf("application has no id")
	}
	if _, ok := s.apps[app.ID]; ok {
		return fmt.Errorf("application %s already exists", app.ID)
	}
	now := s.now()
	app.CreatedAt, app.UpdatedAt = now, now
	if app.Status == "" {
		app.Status = models.StatusApplied
	}
	s.apps[app.ID] = copyApplication(*app)
	s.appSeq[app.ID] = s.id()
	return nil
}

func (s *MemoryStore) LoadApplication(_ context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	app = copyApplication(app)
	return &app, nil
}

func (s *MemoryStore) LoadSubmission(ctx context.Context, id string) ([]forms.SubmittedField, error) {
	app, err := s.LoadApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return app.Submission()
}

func (s *MemoryStore) ListApplications(_ context.Context, jobID *uint) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterApps(func(a models.Application) bool {
		return jobID == nil || (a.JobID != nil && *a.JobID == *jobID)
	}), nil
}

func (s *MemoryStore) FindApplicationsByEmail(_ context.Context, email string) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterApps(func(a models.Application) bool {
		return strings.EqualFold(a.CandidateEmail, email)
	}), nil
}

// filterApps returns matching applications newest first.
func (s *MemoryStore) filterApps(keep func(models.Application) bool) []models.Application {
	out := make([]models.Application, 0)
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, copyApplication(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.appSeq[out[i].ID] > s.appSeq[out[j].ID] })
	return out
}

func (s *MemoryStore) UpdateApplicationStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	app.Status = status
	app.UpdatedAt = s.now()
	s.apps[id] = app
	return nil
}

func (s *MemoryStore) AppendEvent(_ context.Context, event *models.ApplicationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.id()
	event.CreatedAt = s.now()
	s.events = append(s.events, *event)
	return nil
}

func (s *MemoryStore) ListEvents(_ context.Context, applicationID string) ([]models.ApplicationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ApplicationEvent, 0)
	for _, e := range s.events {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- jobs ---

func (s *MemoryStore) CreateJob(_ context.Context, companyName string, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[companyName]
	if !ok {
		company = models.Company{ID: s.id(), Name: companyName, CreatedAt: s.now()}
		s.companies[companyName] = company
	}
	job.ID = s.id()
	job.CompanyID = company.ID
	job.Company = company
	job.CreatedAt = s.now()
	job.UpdatedAt = job.CreatedAt
	if job.Status == "" {
		job.Status = models.JobOpen
	}
	s.jobs[job.ID] = copyJob(*job)
	return nil
}

func copyJob(j models.Job) models.Job {
	j.TechStack = append(j.TechStack[:0:0], j.TechStack...)
	if j.FormID != nil {
		id := *j.FormID
		j.FormID = &id
	}
	return j
}

func (s *MemoryStore) LoadJob(_ context.Context, id uint) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	job = copyJob(job)
	return &job, nil
}

func (s *MemoryStore) ListJobs(_ context.Context, status string) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if status == "" || j.Status == status {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateJobStatus(_ context.Context, id uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	job.Status = status
	job.UpdatedAt = s.now()
	s.jobs[id] = job
	return nil
}

// --- notifications ---

func (s *MemoryStore) AlertRecipients(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ReceiveAlerts {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) WasNotified(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sent[key], nil
}

func (s *MemoryStore) MarkNotified(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent[key] {
		return false, nil
	}
	s.sent[key] = true
	return true, nil
}
