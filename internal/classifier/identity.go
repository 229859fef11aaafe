package classifier

import (
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// Identity is who submitted the application, as far as the answers tell.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ExtractIdentity picks the candidate's name, email and phone from the
// answers. The first plausible field of each kind wins; a full-name field
// beats separate first and last name fields.
func ExtractIdentity(fields []forms.SubmittedField) Identity {
	var id Identity
	var full, first, last string
	for _, e := range makeEntries(fields) {
		if e.isTypeTag || e.display == "" {
			continue
		}
		l := strings.TrimSpace(e.label)
		switch {
		case e.field.FieldType == forms.TypeEmail || hasAny(l, "email", "e-mail"):
			if id.Email == "" && has(e.display, "@") {
				id.Email = e.display
			}
		case hasAny(l, "first name", "firstname"):
			if first == "" {
				first = e.display
			}
		case hasAny(l, "last name", "lastname", "surname"):
			if last == "" {
				last = e.display
			}
		case isNameLabel(l):
			if full == "" {
				full = e.display
			}
		case e.field.FieldType == forms.TypePhone || hasAny(l, "phone", "mobile", "contact number"):
			if id.Phone == "" {
				id.Phone = e.display
			}
		}
	}
	id.Name = full
	if id.Name == "" {
		id.Name = strings.TrimSpace(first + " " + last)
	}
	return id
}
