package classifier

import (
	"fmt"
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// NoRating is shown for skills without a 1..5 rating.
const NoRating = "No rating provided"

// SkillRow is one rendered skill.
type SkillRow struct {
	Skill   string `json:"skill"`
	Rating  int    `json:"rating"`
	Rated   bool   `json:"rated"`
	Display string `json:"display"`
}

// SkillGroup is every skill row decoded from one field. Raw is set when the
// value could not be parsed and was kept as a single unrated name.
type SkillGroup struct {
	FieldID string     `json:"fieldId"`
	Label   string     `json:"label"`
	Rows    []SkillRow `json:"rows"`
	Raw     bool       `json:"raw"`
}

// isSkillsField accepts the current SKILLS type, JSON that looks like skills
// under a skill-ish label, and the legacy "<label>_fieldType" side channel.
func isSkillsField(e entry) bool {
	if e.isTypeTag {
		return false
	}
	if e.field.FieldType == forms.TypeSkills {
		return true
	}
	if has(e.label, "skill") && (strings.HasPrefix(e.text, "[") || strings.HasPrefix(e.text, "{")) {
		return true
	}
	lowerText := strings.ToLower(e.text)
	if strings.HasPrefix(e.text, "[") && has(lowerText, "skill") && has(lowerText, "rating") {
		return true
	}
	return e.typeTag == string(forms.TypeSkills)
}

func skills(entries []entry) []SkillGroup {
	groups := make([]SkillGroup, 0)
	for _, e := range entries {
		if !isSkillsField(e) || e.field.Value.IsEmpty() {
			continue
		}
		rows, source := forms.DecodeSkills(e.field.Value)
		group := SkillGroup{
			FieldID: e.field.ID,
			Label:   e.field.Label,
			Rows:    make([]SkillRow, 0, len(rows)),
			Raw:     source == forms.SkillsFromRaw,
		}
		for _, r := range rows {
			group.Rows = append(group.Rows, skillRow(r))
		}
		groups = append(groups, group)
	}
	return groups
}

func skillRow(r forms.SkillRating) SkillRow {
	row := SkillRow{Skill: r.Skill, Rating: r.Rating, Rated: r.Rated(), Display: NoRating}
	if row.Rated {
		row.Display = fmt.Sprintf("%d/5", r.Rating)
	}
	return row
}
