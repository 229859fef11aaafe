package forms

// WidgetKind is how a field is rendered and which input rules apply to it.
type WidgetKind string

const (
	WidgetSingleLineText     WidgetKind = "single-line-text"
	WidgetMultilineText      WidgetKind = "multiline-text"
	WidgetSingleSelect       WidgetKind = "single-select"
	WidgetMultiSelectInline  WidgetKind = "multi-select-inline"
	WidgetTagEditor          WidgetKind = "tag-editor"
	WidgetSkillRatingEditor  WidgetKind = "skill-rating-editor"
	WidgetDatePicker         WidgetKind = "date-picker"
	WidgetNumeric            WidgetKind = "numeric"
	WidgetFilePicker         WidgetKind = "file-picker"
	WidgetURL                WidgetKind = "url"
	WidgetPhoneCountryPrefix WidgetKind = "phone-country-prefix"
)

var widgetByType = map[FieldType]WidgetKind{
	TypeText:        WidgetSingleLineText,
	TypeEmail:       WidgetSingleLineText,
	TypePhone:       WidgetPhoneCountryPrefix,
	TypeTextarea:    WidgetMultilineText,
	TypeSelect:      WidgetSingleSelect,
	TypeRadio:       WidgetMultiSelectInline,
	TypeCheckbox:    WidgetMultiSelectInline,
	TypeDate:        WidgetDatePicker,
	TypeNumber:      WidgetNumeric,
	TypeTags:        WidgetTagEditor,
	TypeSkills:      WidgetSkillRatingEditor,
	TypeFile:        WidgetFilePicker,
	TypeURL:         WidgetURL,
	TypeCountryCode: WidgetPhoneCountryPrefix,
}

var inputTypeByType = map[FieldType]string{
	TypeEmail:    "email",
	TypePhone:    "tel",
	TypeDate:     "date",
	TypeNumber:   "number",
	TypeFile:     "file",
	TypeURL:      "url",
	TypeRadio:    "radio",
	TypeCheckbox: "checkbox",
}

// Dispatch picks the widget for a field. Unknown types render as plain text.
func Dispatch(field FormField) WidgetKind {
	if kind, ok := widgetByType[field.FieldType]; ok {
		return kind
	}
	return WidgetSingleLineText
}

// Widget is the render description handed to the public form page.
type Widget struct {
	FieldID     string     `json:"fieldId"`
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Kind        WidgetKind `json:"kind"`
	InputType   string     `json:"inputType"`
	Placeholder string     `json:"placeholder,omitempty"`
	Options     []string   `json:"options,omitempty"`
	Multiple    bool       `json:"multiple"`
	Required    bool       `json:"required"`
	Span        int        `json:"span"`
	CSSClass    string     `json:"cssClass,omitempty"`
}

// Describe expands Dispatch with everything a renderer needs.
func Describe(field FormField) Widget {
	inputType, ok := inputTypeByType[field.FieldType]
	if !ok {
		inputType = "text"
	}
	w := Widget{
		FieldID:     field.ID,
		Name:        field.Name(),
		Label:       field.Label,
		Kind:        Dispatch(field),
		InputType:   inputType,
		Placeholder: field.Placeholder,
		Required:    field.IsRequired,
		Span:        field.FieldWidth.Span(),
		CSSClass:    field.CSSClass,
	}
	if field.FieldType.HasOptions() {
		w.Options = append([]string(nil), field.Options...)
	}
	switch field.FieldType.Shape() {
	case ShapeList, ShapeSkills:
		w.Multiple = true
	}
	return w
}

// Render describes every field of a form in order.
func Render(form Form) []Widget {
	form = form.Sorted()
	out := make([]Widget, len(form.Fields))
	for i, field := range form.Fields {
		out[i] = Describe(field)
	}
	return out
}
