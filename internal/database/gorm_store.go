package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

// GormStore is the Postgres backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// --- forms ---

func (s *GormStore) LoadForm(ctx context.Context, id string) (forms.Form, error) {
	var rec models.FormRecord
	if err := s.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return forms.Form{}, notFound(err, "form "+id)
	}
	return rec.Form()
}

func (s *GormStore) SaveForm(ctx context.Context, form forms.Form) error {
	rec, err := models.NewFormRecord(form)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.IsDefault {
			if err := clearDefault(tx, rec.ID); err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "is_default", "fields", "updated_at"}),
		}).Create(&rec).Error
	})
}

func (s *GormStore) ListForms(ctx context.Context) ([]forms.Form, error) {
	var recs []models.FormRecord
	if err := s.DB.WithContext(ctx).Order("created_at asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]forms.Form, 0, len(recs))
	for _, rec := range recs {
		f, err := rec.Form()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *GormStore) DeleteForm(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.FormRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) DefaultForm(ctx context.Context) (forms.Form, error) {
	var rec models.FormRecord
	if err := s.DB.WithContext(ctx).Where("is_default = ?", true).First(&rec).Error; err != nil {
		return forms.Form{}, notFound(err, "default form")
	}
	return rec.Form()
}

func (s *GormStore) SetDefaultForm(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.FormRecord
		if err := tx.Select("id").First(&rec, "id = ?", id).Error; err != nil {
			return notFound(err, "form "+id)
		}
		if err := clearDefault(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.FormRecord{}).Where("id = ?", id).Update("is_default", true).Error
	})
}

func clearDefault(tx *gorm.DB, except string) error {
	return tx.Model(&models.FormRecord{}).
		Where("is_default = ? AND id <> ?", true, except).
		Update("is_default", false).Error
}

// --- applications ---

func (s *GormStore) SaveApplication(ctx context.Context, app *models.Application) error {
	return s.DB.WithContext(ctx).Create(app).Error
}

func (s *GormStore) LoadApplication(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := s.DB.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "application "+id)
	}
	return &app, nil
}

func (s *GormStore) LoadSubmission(ctx context.Context, id string) ([]forms.SubmittedField, error) {
	app, err := s.LoadApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return app.Submission()
}

func (s *GormStore) ListApplications(ctx context.Context, jobID *uint) ([]models.Application, error) {
	q := s.DB.WithContext(ctx).Order("created_at desc")
	if jobID != nil {
		q = q.Where("job_id = ?", *jobID)
	}
	var apps []models.Application
	if err := q.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *GormStore) FindApplicationsByEmail(ctx context.Context, email string) ([]models.Application, error) {
	var apps []models.Application
	err := s.DB.WithContext(ctx).
		Where("LOWER(candidate_email) = LOWER(?)", email).
		Order("created_at desc").
		Find(&apps).Error
	return apps, err
}

func (s *GormStore) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	res := s.DB.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) AppendEvent(ctx context.Context, event *models.ApplicationEvent) error {
	return s.DB.WithContext(ctx).Create(event).Error
}

func (s *GormStore) ListEvents(ctx context.Context, applicationID string) ([]models.ApplicationEvent, error) {
	var events []models.ApplicationEvent
	err := s.DB.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at asc, id asc").
		Find(&events).Error
	return events, err
}

// --- jobs ---

func (s *GormStore) CreateJob(ctx context.Context, companyName string, job *models.Job) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		// creates the company on first use
		if err := tx.Where(models.Company{Name: companyName}).FirstOrCreate(&company).Error; err != nil {
			return err
		}
		job.CompanyID = company.ID
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		job.Company = company
		return nil
	})
}

func (s *GormStore) LoadJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).Preload("Company").First(&job, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("job %d", id))
	}
	return &job, nil
}

func (s *GormStore) ListJobs(ctx context.Context, status string) ([]models.Job, error) {
	q := s.DB.WithContext(ctx).Preload("Company").Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var jobs []models.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *GormStore) UpdateJobStatus(ctx context.Context, id uint, status string) error {
	res := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- notifications ---

func (s *GormStore) AlertRecipients(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).Where("receive_alerts = ?", true).Order("id asc").Find(&users).Error
	return users, err
}

func (s *GormStore) WasNotified(ctx context.Context, key string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.SentNotification{}).Where("id = ?", key).Count(&n).Error
	return n > 0, err
}

func (s *GormStore) MarkNotified(ctx context.Context, key string) (bool, error) {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SentNotification{ID: key})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
