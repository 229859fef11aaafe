package dtos

import (
	"fmt"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

type CreateFormRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

// InsertFieldRequest adds a palette item. A nil Target appends.
type InsertFieldRequest struct {
	FieldType string `json:"fieldType" binding:"required"`
	Target    *int   `json:"target" binding:"omitempty,min=0"`
}

type MoveFieldRequest struct {
	Target *int `json:"target" binding:"required,min=0"`
}

// SetOptionsRequest carries the builder's options text box, one option per
// line.
type SetOptionsRequest struct {
	Options string `json:"options"`
}

type UpdateFieldRequest struct {
	Label       *string  `json:"label"`
	FieldType   *string  `json:"fieldType"`
	Placeholder *string  `json:"placeholder"`
	Options     []string `json:"options"`
	CSSClass    *string  `json:"cssClass"`
	FieldID     *string  `json:"fieldId"`
	IsRequired  *bool    `json:"isRequired"`
	FieldWidth  *string  `json:"fieldWidth"`
}

// Patch converts the request into a forms.FieldPatch.
func (r UpdateFieldRequest) Patch() (forms.FieldPatch, error) {
	p := forms.FieldPatch{
		Label:       r.Label,
		Placeholder: r.Placeholder,
		Options:     r.Options,
		CSSClass:    r.CSSClass,
		FieldID:     r.FieldID,
		IsRequired:  r.IsRequired,
	}
	if r.FieldType != nil {
		t, ok := forms.ParseFieldType(*r.FieldType)
		if !ok {
			return forms.FieldPatch{}, fmt.Errorf("%w %q", forms.ErrUnknownType, *r.FieldType)
		}
		p.FieldType = &t
	}
	if r.FieldWidth != nil {
		w := forms.FieldWidth(*r.FieldWidth)
		p.FieldWidth = &w
	}
	return p, nil
}
