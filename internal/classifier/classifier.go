// Package classifier rebuilds a candidate profile from the answers stored on
// an application. Forms are free-form, so nothing records which field holds
// the salary or the resume; every view here is derived from label text and
// value shape at read time.
//
// All functions are pure. Classify can be called concurrently and returns the
// same Profile for the same input every time.
package classifier

import (
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// Profile is the categorised view of one application. The views are
// independent and may overlap, except that skills and file fields never show
// up in QA.
type Profile struct {
	BasicInfo []InfoRow    `json:"basicInfo"`
	Skills    []SkillGroup `json:"skills"`
	Contact   []ContactRow `json:"contact"`
	QA        []QARow      `json:"qa"`
	Files     []FileRow    `json:"files"`
}

// Classify derives every view for one application's answers. geo may be nil.
func Classify(fields []forms.SubmittedField, geo *GeoMetadata) Profile {
	entries := makeEntries(fields)
	return Profile{
		BasicInfo: basicInfo(entries),
		Skills:    skills(entries),
		Contact:   contact(entries, geo),
		QA:        questions(entries),
		Files:     files(entries),
	}
}

// entry caches the lower-cased label and text form of a field so each rule
// does not recompute them.
type entry struct {
	field     forms.SubmittedField
	label     string
	text      string
	display   string
	typeTag   string
	isTypeTag bool
}

const typeTagSuffix = "_fieldType"

func makeEntries(fields []forms.SubmittedField) []entry {
	// Older forms stored a field's type next to it as "<label>_fieldType".
	tags := make(map[string]string)
	for _, f := range fields {
		if strings.HasSuffix(f.Label, typeTagSuffix) {
			tags[strings.TrimSuffix(f.Label, typeTagSuffix)] = strings.TrimSpace(f.Value.Text())
		}
	}

	out := make([]entry, len(fields))
	for i, f := range fields {
		out[i] = entry{
			field:     f,
			label:     strings.ToLower(f.Label),
			text:      strings.TrimSpace(f.Value.Text()),
			display:   f.Value.Display(),
			typeTag:   tags[f.Label],
			isTypeTag: strings.HasSuffix(f.Label, typeTagSuffix),
		}
	}
	return out
}

func has(s, sub string) bool { return strings.Contains(s, sub) }

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
