package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// FormService is the form builder backend. Every edit is load, apply one
// builder operation, validate, save.
type FormService struct {
	Store database.FormStore

	// guards load-modify-save
	mu sync.Mutex
}

func NewFormService(store database.FormStore) *FormService {
	return &FormService{Store: store}
}

func (s *FormService) List(ctx context.Context) ([]forms.Form, error) {
	return s.Store.ListForms(ctx)
}

func (s *FormService) Get(ctx context.Context, id string) (forms.Form, error) {
	return s.Store.LoadForm(ctx, id)
}

func (s *FormService) Default(ctx context.Context) (forms.Form, error) {
	return s.Store.DefaultForm(ctx)
}

// Create stores a new empty form.
func (s *FormService) Create(ctx context.Context, name, description string, isDefault bool) (forms.Form, error) {
	form := forms.Form{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
		Fields:      []forms.FormField{},
	}
	if err := form.Validate(); err != nil {
		return forms.Form{}, err
	}
	if err := s.Store.SaveForm(ctx, form); err != nil {
		return forms.Form{}, fmt.Errorf("save form: %w", err)
	}
	log.WithFields(log.Fields{"form_id": form.ID, "name": form.Name}).Info("form created")
	return form, nil
}

func (s *FormService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.DeleteForm(ctx, id)
}

func (s *FormService) SetDefault(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.SetDefaultForm(ctx, id)
}

// InsertField adds a palette item at target, or at the end when target is nil.
func (s *FormService) InsertField(ctx context.Context, formID, fieldType string, target *int) (forms.Form, forms.FormField, error) {
	t, ok := forms.ParseFieldType(fieldType)
	if !ok {
		return forms.Form{}, forms.FormField{}, fmt.Errorf("%w %q", forms.ErrUnknownType, fieldType)
	}
	var created forms.FormField
	form, err := s.edit(ctx, formID, func(f forms.Form) (forms.Form, error) {
		at := len(f.Fields)
		if target != nil {
			at = *target
		}
		f, created = forms.InsertField(f, t, at)
		return f, nil
	})
	return form, created, err
}

func (s *FormService) MoveField(ctx context.Context, formID, fieldID string, target int) (forms.Form, error) {
	return s.edit(ctx, formID, func(f forms.Form) (forms.Form, error) {
		return forms.Reorder(f, forms.Op{Kind: forms.OpMove, FieldID: fieldID, Target: target})
	})
}

func (s *FormService) UpdateField(ctx context.Context, formID, fieldID string, patch forms.FieldPatch) (forms.Form, error) {
	return s.edit(ctx, formID, func(f forms.Form) (forms.Form, error) {
		return forms.UpdateField(f, fieldID, patch)
	})
}

func (s *FormService) SetOptions(ctx context.Context, formID, fieldID, blob string) (forms.Form, error) {
	return s.edit(ctx, formID, func(f forms.Form) (forms.Form, error) {
		return forms.SetOptions(f, fieldID, blob)
	})
}

func (s *FormService) RemoveField(ctx context.Context, formID, fieldID string) (forms.Form, error) {
	return s.edit(ctx, formID, func(f forms.Form) (forms.Form, error) {
		return forms.Reorder(f, forms.Op{Kind: forms.OpRemove, FieldID: fieldID})
	})
}

func (s *FormService) edit(ctx context.Context, formID string, apply func(forms.Form) (forms.Form, error)) (forms.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	form, err := s.Store.LoadForm(ctx, formID)
	if err != nil {
		return forms.Form{}, err
	}
	form, err = apply(form)
	if err != nil {
		return forms.Form{}, err
	}
	if err := form.Validate(); err != nil {
		return forms.Form{}, err
	}
	if err := s.Store.SaveForm(ctx, form); err != nil {
		return forms.Form{}, fmt.Errorf("save form: %w", err)
	}
	return form, nil
}

// EnsureDefault seeds a general application form when no default exists, so
// jobs without a form of their own can still take applications.
func (s *FormService) EnsureDefault(ctx context.Context) (forms.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	form, err := s.Store.DefaultForm(ctx)
	if err == nil {
		return form, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return forms.Form{}, err
	}

	form = GeneralApplicationForm()
	if err := s.Store.SaveForm(ctx, form); err != nil {
		return forms.Form{}, fmt.Errorf("seed default form: %w", err)
	}
	log.WithField("form_id", form.ID).Info("seeded default application form")
	return form, nil
}

// GeneralApplicationForm is the starter form used when nothing else is set up.
func GeneralApplicationForm() forms.Form {
	type seed struct {
		t        forms.FieldType
		label    string
		required bool
		width    forms.FieldWidth
	}
	seeds := []seed{
		{forms.TypeText, "Full Name", true, forms.Width50},
		{forms.TypeEmail, "Email", true, forms.Width50},
		{forms.TypePhone, "Phone Number", false, forms.Width50},
		{forms.TypeText, "Current Location", false, forms.Width50},
		{forms.TypeNumber, "Years of Experience", false, forms.Width33},
		{forms.TypeText, "Expected Salary", false, forms.Width33},
		{forms.TypeText, "Notice Period", false, forms.Width33},
		{forms.TypeSkills, "Skills", true, forms.Width100},
		{forms.TypeURL, "LinkedIn Profile", false, forms.Width50},
		{forms.TypeTags, "GitHub / Portfolio Links", false, forms.Width50},
		{forms.TypeFile, "Resume", true, forms.Width100},
		{forms.TypeTextarea, "Why do you want to join us?", false, forms.Width100},
	}

	form := forms.Form{ID: uuid.NewString(), Name: "General Application", IsDefault: true}
	for i, sd := range seeds {
		f := forms.NewField(sd.t)
		f.Label = sd.label
		f.IsRequired = sd.required
		f.FieldWidth = sd.width
		f.Order = i
		if sd.t == forms.TypeSkills || sd.t == forms.TypeTags {
			f.Options = forms.Options{}
		}
		form.Fields = append(form.Fields, f)
	}
	return form
}
