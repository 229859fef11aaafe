package forms

import "strings"

// FieldType is the closed set of input kinds a form field can take.
type FieldType string

const (
	TypeText        FieldType = "TEXT"
	TypeEmail       FieldType = "EMAIL"
	TypePhone       FieldType = "PHONE"
	TypeTextarea    FieldType = "TEXTAREA"
	TypeSelect      FieldType = "SELECT"
	TypeRadio       FieldType = "RADIO"
	TypeCheckbox    FieldType = "CHECKBOX"
	TypeDate        FieldType = "DATE"
	TypeNumber      FieldType = "NUMBER"
	TypeTags        FieldType = "TAGS"
	TypeSkills      FieldType = "SKILLS"
	TypeFile        FieldType = "FILE"
	TypeURL         FieldType = "URL"
	TypeCountryCode FieldType = "COUNTRY_CODE"
)

// ValueShape describes what a field of a given type submits.
type ValueShape int

const (
	ShapeScalar ValueShape = iota
	ShapeList
	ShapeSkills
	ShapeFile
)

// Info is the registry entry for one field type.
type Info struct {
	Type        FieldType
	Label       string
	Placeholder string
	HasOptions  bool
	Shape       ValueShape
}

// registry is kept in palette order; Types() exposes it in this order.
var registry = []Info{
	{Type: TypeText, Label: "Text Input", Placeholder: "Enter text", Shape: ShapeScalar},
	{Type: TypeEmail, Label: "Email", Placeholder: "you@example.com", Shape: ShapeScalar},
	{Type: TypePhone, Label: "Phone Number", Placeholder: "Enter phone number", Shape: ShapeScalar},
	{Type: TypeTextarea, Label: "Paragraph", Placeholder: "Enter your answer", Shape: ShapeScalar},
	{Type: TypeSelect, Label: "Dropdown", Placeholder: "Select an option", HasOptions: true, Shape: ShapeScalar},
	{Type: TypeRadio, Label: "Single Choice", HasOptions: true, Shape: ShapeScalar},
	{Type: TypeCheckbox, Label: "Multiple Choice", HasOptions: true, Shape: ShapeList},
	{Type: TypeDate, Label: "Date", Placeholder: "YYYY-MM-DD", Shape: ShapeScalar},
	{Type: TypeNumber, Label: "Number", Placeholder: "0", Shape: ShapeScalar},
	{Type: TypeTags, Label: "Tags", Placeholder: "Type and press Enter", HasOptions: true, Shape: ShapeList},
	{Type: TypeSkills, Label: "Skills", Placeholder: "Add a skill", HasOptions: true, Shape: ShapeSkills},
	{Type: TypeFile, Label: "File Upload", Placeholder: "Upload a file", Shape: ShapeFile},
	{Type: TypeURL, Label: "Website", Placeholder: "https://", Shape: ShapeScalar},
	{Type: TypeCountryCode, Label: "Country Code", Placeholder: "+1", Shape: ShapeScalar},
}

var registryByType map[FieldType]Info

func init() {
	registryByType = make(map[FieldType]Info, len(registry))
	for _, info := range registry {
		registryByType[info.Type] = info
	}
}

// Lookup returns the registry entry for t.
func Lookup(t FieldType) (Info, bool) {
	info, ok := registryByType[t]
	return info, ok
}

// Types returns every supported field type in palette order.
func Types() []FieldType {
	out := make([]FieldType, len(registry))
	for i, info := range registry {
		out[i] = info.Type
	}
	return out
}

// ParseFieldType accepts any casing and surrounding whitespace.
func ParseFieldType(s string) (FieldType, bool) {
	t := FieldType(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := registryByType[t]
	return t, ok
}

// HasOptions reports whether fields of type t carry an options list.
func (t FieldType) HasOptions() bool {
	return registryByType[t].HasOptions
}

// Shape returns the submitted value shape; unknown types are scalar.
func (t FieldType) Shape() ValueShape {
	return registryByType[t].Shape
}
