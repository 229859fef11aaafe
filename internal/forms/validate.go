package forms

import (
	"fmt"
	"strings"
	"time"
)

// ErrorMap holds one message per failing field, keyed by field id.
type ErrorMap map[string]string

// Values are the answers entered for a form, keyed by field id.
type Values map[string]Value

// shapeRules are go-playground/validator tags applied to non-empty answers of
// required fields.
var shapeRules = map[FieldType]struct {
	tag     string
	message string
}{
	TypeEmail:  {"email", "Please enter a valid email address for %s"},
	TypeURL:    {"url", "Please enter a valid URL for %s"},
	TypeNumber: {"numeric", "%s must be a number"},
}

// Validate checks every required field. Optional fields never fail. An empty
// map means the answers may be submitted.
func Validate(form Form, values Values) ErrorMap {
	errs := ErrorMap{}
	for _, field := range form.Fields {
		if !field.IsRequired {
			continue
		}
		value, present := values[field.ID]
		if msg := checkRequired(field, value, present); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}

func checkRequired(field FormField, value Value, present bool) string {
	required := fmt.Sprintf("%s is required", field.Label)

	switch field.FieldType.Shape() {
	case ShapeSkills:
		if !present || value.Kind == KindEmpty {
			return required
		}
		rows := skillsForValidation(value)
		if len(rows) == 0 {
			return required
		}
		for _, row := range rows {
			if row.Rating == 0 {
				return fmt.Sprintf("Please rate all skills in %s", field.Label)
			}
		}
		return ""

	case ShapeList:
		if !present || len(listOf(value)) == 0 {
			return required
		}
		return ""

	case ShapeFile:
		if !present || value.IsEmpty() {
			return required
		}
		return ""
	}

	// a list on a scalar field is checked as the joined text Encode stores
	text := strings.TrimSpace(value.Display())
	if !present || text == "" {
		return required
	}
	return checkShape(field, text)
}

func checkShape(field FormField, text string) string {
	if rule, ok := shapeRules[field.FieldType]; ok {
		if err := validate.Var(text, rule.tag); err != nil {
			return fmt.Sprintf(rule.message, field.Label)
		}
		return ""
	}
	switch field.FieldType {
	case TypeDate:
		if _, err := time.Parse("2006-01-02", text); err != nil {
			return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field.Label)
		}
	case TypeSelect, TypeRadio:
		if len(field.Options) > 0 && !contains(field.Options, text) {
			return fmt.Sprintf("Please choose one of the options for %s", field.Label)
		}
	}
	return ""
}

// skillsForValidation drops blank skill names; an answer typed as plain text
// goes through the same decode chain the review screen uses.
func skillsForValidation(v Value) []SkillRating {
	rows, source := DecodeSkills(v)
	if source == SkillsFromRaw && strings.TrimSpace(v.Text()) == "" {
		return nil
	}
	out := rows[:0:0]
	for _, row := range rows {
		if strings.TrimSpace(row.Skill) == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}

// listOf reads a list answer; a lone non-empty string counts as one item.
func listOf(v Value) []string {
	switch v.Kind {
	case KindList:
		return v.List
	case KindString:
		if s := strings.TrimSpace(v.Str); s != "" {
			return []string{s}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
