package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/justsurfingit/applicant-tracker/internal/classifier"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// Job statuses.
const (
	JobOpen   = "OPEN"
	JobClosed = "CLOSED"
)

// Application statuses, in pipeline order.
const (
	StatusApplied   = "APPLIED"
	StatusScreening = "SCREENING"
	StatusInterview = "INTERVIEW"
	StatusOffer     = "OFFER"
	StatusRejected  = "REJECTED"
	StatusHired     = "HIRED"
)

var applicationStatuses = []string{StatusApplied, StatusScreening, StatusInterview, StatusOffer, StatusRejected, StatusHired}

// ValidApplicationStatus reports whether s is a known pipeline status.
func ValidApplicationStatus(s string) bool {
	for _, status := range applicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidJobStatus reports whether s is OPEN or CLOSED.
func ValidJobStatus(s string) bool { return s == JobOpen || s == JobClosed }

// User is an admin who receives new-application alerts.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Name          string `json:"name"`
	ReceiveAlerts bool   `gorm:"not null;default:true" json:"receive_alerts"`
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// omitempty keeps Job -> Company -> Jobs from recursing
	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint `json:"company_id"`
	// filled by Preload
	Company Company `json:"company"`

	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `json:"location"`
	SalaryRange string         `json:"salary_range"`
	TechStack   pq.StringArray `gorm:"type:text[]" json:"tech_stack"`
	JobLink     string         `json:"job_link"`
	Status      string         `gorm:"default:'OPEN'" json:"status"`

	// nil means the default form
	FormID *string `gorm:"type:varchar(36)" json:"form_id"`
}

// FormRecord is the stored form of a forms.Form. Fields are kept as one JSON
// document so the schema can evolve without migrations.
type FormRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsDefault   bool           `gorm:"index" json:"is_default"`
	Fields      datatypes.JSON `json:"fields"`
}

func (FormRecord) TableName() string { return "forms" }

// NewFormRecord encodes a form for storage.
func NewFormRecord(f forms.Form) (FormRecord, error) {
	fields := f.Fields
	if fields == nil {
		fields = []forms.FormField{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return FormRecord{}, fmt.Errorf("encode fields of form %s: %w", f.ID, err)
	}
	return FormRecord{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		IsDefault:   f.IsDefault,
		Fields:      datatypes.JSON(b),
	}, nil
}

// Form decodes the record. Field order is renumbered densely on the way out.
func (r FormRecord) Form() (forms.Form, error) {
	f := forms.Form{ID: r.ID, Name: r.Name, Description: r.Description, IsDefault: r.IsDefault}
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &f.Fields); err != nil {
			return forms.Form{}, fmt.Errorf("decode fields of form %s: %w", r.ID, err)
		}
	}
	if f.Fields == nil {
		f.Fields = []forms.FormField{}
	}
	return f.Sorted(), nil
}

// Application is one submitted form. Fields holds the SubmittedField list and
// is never rewritten after creation; only Status changes.
type Application struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID  *uint  `gorm:"index" json:"job_id"`
	FormID string `gorm:"index;type:varchar(36)" json:"form_id"`

	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `gorm:"index" json:"candidate_email"`
	CandidatePhone string `json:"candidate_phone"`
	Status         string `gorm:"default:'APPLIED'" json:"status"`

	Fields datatypes.JSON `json:"fields"`

	IP        string   `json:"ip"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// SetSubmission stores the encoded answers.
func (a *Application) SetSubmission(fields []forms.SubmittedField) error {
	if fields == nil {
		fields = []forms.SubmittedField{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	a.Fields = datatypes.JSON(b)
	return nil
}

// Submission decodes the stored answers.
func (a Application) Submission() ([]forms.SubmittedField, error) {
	fields := []forms.SubmittedField{}
	if len(a.Fields) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(a.Fields, &fields); err != nil {
		return nil, fmt.Errorf("decode submission of application %s: %w", a.ID, err)
	}
	return fields, nil
}

// SetGeo copies request metadata onto the record. nil clears nothing.
func (a *Application) SetGeo(g *classifier.GeoMetadata) {
	if g == nil {
		return
	}
	a.IP, a.City, a.State, a.Country = g.IP, g.City, g.State, g.Country
	a.Latitude, a.Longitude = g.Latitude, g.Longitude
}

// Geo returns the stored request metadata, or nil when none was captured.
func (a Application) Geo() *classifier.GeoMetadata {
	if a.IP == "" && a.City == "" && a.State == "" && a.Country == "" && a.Latitude == nil {
		return nil
	}
	return &classifier.GeoMetadata{
		IP:        a.IP,
		City:      a.City,
		State:     a.State,
		Country:   a.Country,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}

type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ApplicationID string    `gorm:"index;type:varchar(36)" json:"application_id"`
	EventType     string    `json:"event_type"`
	Details       string    `gorm:"type:text" json:"details"`
}

// Event types.
const (
	EventSubmitted     = "SUBMITTED"
	EventStatusChanged = "STATUS_CHANGED"
	EventDuplicate     = "POSSIBLE_DUPLICATE"
	EventNotified      = "NOTIFIED"
)

// SentNotification marks an alert as delivered so it is never sent twice.
type SentNotification struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// NotificationKey identifies one alert about one application to one admin.
func NotificationKey(applicationID, email string) string {
	return applicationID + ":" + email
}
