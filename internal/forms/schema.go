package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrFieldNotFound = errors.New("field not found")
	ErrInvalidForm   = errors.New("invalid form")
	ErrNoOptions     = errors.New("field type does not carry options")
	ErrUnknownType   = errors.New("unknown field type")
)

// DefaultOptions is what a freshly created options-bearing field starts with.
var DefaultOptions = []string{"Option 1", "Option 2", "Option 3"}

// FieldWidth is the share of a form row a field occupies.
type FieldWidth string

const (
	Width25  FieldWidth = "25%"
	Width33  FieldWidth = "33%"
	Width50  FieldWidth = "50%"
	Width66  FieldWidth = "66%"
	Width75  FieldWidth = "75%"
	Width100 FieldWidth = "100%"
)

var widthSpans = map[FieldWidth]int{
	Width25:  3,
	Width33:  4,
	Width50:  6,
	Width66:  8,
	Width75:  9,
	Width100: 12,
}

// Span maps the width onto a 12-column grid. Anything unrecognised,
// including the empty width, is a full row.
func (w FieldWidth) Span() int {
	if span, ok := widthSpans[w]; ok {
		return span
	}
	return 12
}

// ParseWidth normalises user input ("50", "50%", " 50 % ") to a known width.
func ParseWidth(s string) FieldWidth {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s != "" && !strings.HasSuffix(s, "%") {
		s += "%"
	}
	w := FieldWidth(s)
	if _, ok := widthSpans[w]; ok {
		return w
	}
	return Width100
}

// Options is the option list of a select-like field. On the wire it is a JSON
// array; older rows hold either a JSON array serialised into a string or a
// single bare string, which becomes a one-element list.
type Options []string

// MarshalJSON always emits an array so fields without options read as [].
func (o Options) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(o))
}

func (o *Options) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		if string(data) == "null" {
			*o = nil
			return nil
		}
		return fmt.Errorf("options: %w", err)
	}
	*o = DecodeOptions(raw)
	return nil
}

// DecodeOptions reads the stored options encoding.
func DecodeOptions(raw string) Options {
	if strings.TrimSpace(raw) == "" {
		return Options{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	return Options{raw}
}

// FormField is one input on an application form.
type FormField struct {
	ID          string     `json:"id" validate:"required"`
	Label       string     `json:"label" validate:"required"`
	FieldType   FieldType  `json:"fieldType" validate:"required"`
	Placeholder string     `json:"placeholder,omitempty"`
	Options     Options    `json:"options"`
	CSSClass    string     `json:"cssClass,omitempty"`
	FieldID     string     `json:"fieldId,omitempty"`
	IsRequired  bool       `json:"isRequired"`
	Order       int        `json:"order" validate:"min=0"`
	FieldWidth  FieldWidth `json:"fieldWidth"`
}

// Name is the DOM-facing input name, falling back to the id.
func (f FormField) Name() string {
	if f.FieldID != "" {
		return f.FieldID
	}
	return f.ID
}

// Form is an ordered set of fields. Fields are kept sorted by Order and
// Order is always the dense sequence 0..n-1.
type Form struct {
	ID          string      `json:"id"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description,omitempty"`
	IsDefault   bool        `json:"isDefault"`
	Fields      []FormField `json:"fields" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural invariants of a form before it is stored.
// Every failure wraps ErrInvalidForm.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidForm)
	}
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidForm, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	seen := make(map[string]bool, len(f.Fields))
	for i, field := range f.Fields {
		if strings.TrimSpace(field.Label) == "" {
			return fmt.Errorf("%w: field %s needs a label", ErrInvalidForm, field.ID)
		}
		if seen[field.ID] {
			return fmt.Errorf("%w: duplicate field id %s", ErrInvalidForm, field.ID)
		}
		seen[field.ID] = true
		if field.Order != i {
			return fmt.Errorf("%w: field %s has order %d at position %d", ErrInvalidForm, field.ID, field.Order, i)
		}
		if _, ok := Lookup(field.FieldType); !ok {
			return fmt.Errorf("%w: field %s: %w %q", ErrInvalidForm, field.ID, ErrUnknownType, field.FieldType)
		}
	}
	return nil
}

// Sorted returns a copy of the form with fields ordered by Order and the
// order renumbered densely. Stored forms pass through here on load so a
// sparse legacy ordering heals itself.
func (f Form) Sorted() Form {
	fields := cloneFields(f.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	f.Fields = renumber(fields)
	return f
}

// Field returns the field with the given id.
func (f Form) Field(id string) (FormField, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FormField{}, false
}

// NewField builds a field of type t with registry defaults.
func NewField(t FieldType) FormField {
	info, ok := Lookup(t)
	if !ok {
		info = registryByType[TypeText]
		t = TypeText
	}
	field := FormField{
		ID:          uuid.NewString(),
		Label:       info.Label,
		FieldType:   t,
		Placeholder: info.Placeholder,
		Options:     Options{},
		FieldWidth:  Width100,
	}
	if info.HasOptions {
		field.Options = append(Options{}, DefaultOptions...)
	}
	return field
}

// FieldPatch carries the editable properties of a field. Nil members are left
// unchanged. The id and order are not patchable.
type FieldPatch struct {
	Label       *string
	FieldType   *FieldType
	Placeholder *string
	Options     []string
	CSSClass    *string
	FieldID     *string
	IsRequired  *bool
	FieldWidth  *FieldWidth
}

// UpdateField replaces the field with the given id by its patched copy.
func UpdateField(form Form, id string, patch FieldPatch) (Form, error) {
	idx := indexOf(form.Fields, id)
	if idx < 0 {
		return form, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	fields := cloneFields(form.Fields)
	field := fields[idx]

	if patch.Label != nil {
		field.Label = *patch.Label
	}
	if patch.FieldType != nil {
		if _, ok := Lookup(*patch.FieldType); !ok {
			return form, fmt.Errorf("%w %q", ErrUnknownType, *patch.FieldType)
		}
		field.FieldType = *patch.FieldType
		switch {
		case !field.FieldType.HasOptions():
			field.Options = Options{}
		case len(field.Options) == 0:
			field.Options = append(Options{}, DefaultOptions...)
		}
	}
	if patch.Placeholder != nil {
		field.Placeholder = *patch.Placeholder
	}
	if patch.Options != nil {
		if !field.FieldType.HasOptions() {
			return form, fmt.Errorf("%w: %s", ErrNoOptions, field.FieldType)
		}
		field.Options = append(Options{}, patch.Options...)
	}
	if patch.CSSClass != nil {
		field.CSSClass = *patch.CSSClass
	}
	if patch.FieldID != nil {
		field.FieldID = *patch.FieldID
	}
	if patch.IsRequired != nil {
		field.IsRequired = *patch.IsRequired
	}
	if patch.FieldWidth != nil {
		field.FieldWidth = ParseWidth(string(*patch.FieldWidth))
	}

	fields[idx] = field
	form.Fields = fields
	return form, nil
}

// RemoveField drops a field and renumbers the rest.
func RemoveField(form Form, id string) (Form, error) {
	idx := indexOf(form.Fields, id)
	if idx < 0 {
		return form, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	fields := make([]FormField, 0, len(form.Fields)-1)
	fields = append(fields, form.Fields[:idx]...)
	fields = append(fields, form.Fields[idx+1:]...)
	form.Fields = renumber(fields)
	return form, nil
}

func indexOf(fields []FormField, id string) int {
	for i := range fields {
		if fields[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneFields(fields []FormField) []FormField {
	out := make([]FormField, len(fields))
	for i, f := range fields {
		if f.Options != nil {
			f.Options = append(Options{}, f.Options...)
		}
		out[i] = f
	}
	return out
}

// renumber sets every field's order to its slice position.
func renumber(fields []FormField) []FormField {
	for i := range fields {
		fields[i].Order = i
	}
	return fields
}
