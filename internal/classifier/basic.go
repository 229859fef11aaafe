package classifier

import (
	"regexp"
	"strings"
)

// InfoRow is one line of the Basic Info card.
type InfoRow struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	FieldID  string `json:"fieldId"`
	Question string `json:"question"`
}

// basicState is carried through the fold over an application's fields.
type basicState struct {
	experienceSeen bool
}

var yearsOfExperience = regexp.MustCompile(`years of.*experience`)

// basicRule maps a lower-cased label to a Basic Info heading. accept, when set,
// gets the final say on the value; a rejected value still consumes the field.
type basicRule struct {
	match  func(label string) string
	accept func(e entry) bool
}

// basicRules run in priority order after the experience family.
var basicRules = []basicRule{
	{match: func(l string) string {
		switch {
		case hasAny(l, "current position", "current role"):
			return "Current Position"
		case hasAny(l, "position", "designation"):
			return "Position"
		}
		return ""
	}},
	{match: func(l string) string {
		if hasAny(l, "education", "qualification", "degree") {
			return "Education"
		}
		return ""
	}},
	{match: func(l string) string {
		switch {
		case hasAny(l, "current salary", "present salary"):
			return "Current Salary"
		case hasAny(l, "expected salary", "salary expectation"):
			return "Expected Salary"
		case has(l, "salary"):
			return "Salary"
		}
		return ""
	}},
	{
		match: func(l string) string {
			if hasAny(l, "location", "city") || (has(l, "address") && !has(l, "email")) {
				return "Location"
			}
			return ""
		},
		accept: plausibleLocation,
	},
	{match: func(l string) string {
		if has(l, "notice") && has(l, "period") {
			return "Notice Period"
		}
		return ""
	}},
	{match: func(l string) string {
		if hasAny(l, "availability", "joining") {
			return "Availability"
		}
		return ""
	}},
}

// experienceHeading classifies the experience family of labels.
func experienceHeading(l string) string {
	switch {
	case yearsOfExperience.MatchString(l):
		return "Years of Experience"
	case has(l, "professional") && has(l, "experience"):
		return "Professional Experience"
	case hasAny(l, "work experience", "working experience"):
		return "Work Experience"
	case has(l, "total experience"):
		return "Total Experience"
	case has(l, "experience") && !hasAny(l, "describe", "explain", "team", "leading"):
		return "Experience"
	}
	return ""
}

// plausibleLocation keeps emails and local dev noise out of the location line.
func plausibleLocation(e entry) bool {
	v := strings.ToLower(e.display)
	return v != "" &&
		!has(v, "@") &&
		!has(v, "localhost") &&
		!has(v, "development environment")
}

func basicInfo(entries []entry) []InfoRow {
	rows := make([]InfoRow, 0)
	state := basicState{}
	for _, e := range entries {
		var row InfoRow
		var ok bool
		state, row, ok = state.step(e)
		if ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// step classifies one field. The first matching rule wins; only one
// experience-like field is ever kept per application.
func (s basicState) step(e entry) (basicState, InfoRow, bool) {
	if e.isTypeTag {
		return s, InfoRow{}, false
	}
	if heading := experienceHeading(e.label); heading != "" {
		if s.experienceSeen {
			return s, InfoRow{}, false
		}
		s.experienceSeen = true
		return s, infoRow(heading, e), true
	}
	for _, rule := range basicRules {
		heading := rule.match(e.label)
		if heading == "" {
			continue
		}
		if rule.accept != nil && !rule.accept(e) {
			return s, InfoRow{}, false
		}
		return s, infoRow(heading, e), true
	}
	return s, InfoRow{}, false
}

func infoRow(heading string, e entry) InfoRow {
	return InfoRow{
		Label:    heading,
		Value:    e.display,
		FieldID:  e.field.ID,
		Question: e.field.Label,
	}
}
