package classifier

import (
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// QARow is one question and its answer.
type QARow struct {
	FieldID  string `json:"fieldId"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// questions is the catch-all view: every answer that is not identity, contact
// number, file or skills data. It overlaps Basic Info on purpose.
func questions(entries []entry) []QARow {
	rows := make([]QARow, 0)
	for _, e := range entries {
		if excludedFromQA(e) {
			continue
		}
		answer, ok := qaAnswer(e.field.Value)
		if !ok {
			continue
		}
		rows = append(rows, QARow{FieldID: e.field.ID, Question: e.field.Label, Answer: answer})
	}
	return rows
}

func excludedFromQA(e entry) bool {
	switch {
	case e.isTypeTag:
		return true
	case isNameLabel(e.label):
		return true
	case hasAny(e.label, "email", "e-mail"):
		return true
	case hasAny(e.label, "phone", "mobile", "contact number"):
		return true
	case e.field.FieldType == forms.TypeFile:
		return true
	case strings.HasPrefix(e.text, "{") && has(e.text, "fileName"):
		return true
	case isSkillsField(e), isFileField(e):
		return true
	}
	return false
}

func isNameLabel(l string) bool {
	l = strings.TrimSpace(l)
	if l == "name" || l == "your name" {
		return true
	}
	return hasAny(l, "full name", "first name", "last name", "fullname", "firstname", "lastname")
}

// qaAnswer keeps strings verbatim and joins lists.
func qaAnswer(v forms.Value) (string, bool) {
	switch v.Kind {
	case forms.KindString:
		if strings.TrimSpace(v.Str) == "" {
			return "", false
		}
		return v.Str, true
	case forms.KindList:
		items := make([]string, 0, len(v.List))
		for _, item := range v.List {
			if strings.TrimSpace(item) != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return "", false
		}
		return strings.Join(items, ", "), true
	}
	return "", false
}
