package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

func field(id, label string, t forms.FieldType, v forms.Value) forms.SubmittedField {
	return forms.SubmittedField{ID: id, Label: label, FieldType: t, Value: v}
}

func text(id, label, value string) forms.SubmittedField {
	return field(id, label, forms.TypeText, forms.StringValue(value))
}

func sampleApplication() []forms.SubmittedField {
	return []forms.SubmittedField{
		text("f1", "Full Name", "Ada Lovelace"),
		field("f2", "Email Address", forms.TypeEmail, forms.StringValue("ada@example.com")),
		field("f3", "Phone", forms.TypePhone, forms.StringValue("+44 20 7946 0000")),
		text("f4", "Years of professional experience", "8"),
		text("f5", "Team leading experience", "3"),
		text("f6", "Current Location", "London, UK"),
		text("f7", "Expected Salary", "90k"),
		field("f8", "Skills", forms.TypeSkills, forms.SkillsValue(
			forms.SkillRating{Skill: "Go", Rating: 5},
			forms.SkillRating{Skill: "Kubernetes", Rating: 0},
		)),
		field("f9", "Resume", forms.TypeFile, forms.FileValue(forms.FileDescriptor{
			FileName: "1700000000000_ada-cv.pdf", OriginalName: "ada-cv.pdf", Path: "uploads/1700000000000_ada-cv.pdf",
		})),
		field("f10", "Portfolio links", forms.TypeTags, forms.ListValue("https://github.com/ada", "ada.dev")),
		text("f11", "Why do you want to join?", "Engines."),
		field("f12", "Notice Period", forms.TypeSelect, forms.StringValue("1 month")),
	}
}

func TestClassify_Idempotent(t *testing.T) {
	fields := sampleApplication()
	geo := &GeoMetadata{IP: "81.2.69.160", City: "London", Country: "GB"}
	assert.Equal(t, Classify(fields, geo), Classify(fields, geo))
}

func TestClassify_ViewsAreNeverNil(t *testing.T) {
	p := Classify(nil, nil)
	assert.NotNil(t, p.BasicInfo)
	assert.NotNil(t, p.Skills)
	assert.NotNil(t, p.Contact)
	assert.NotNil(t, p.QA)
	assert.NotNil(t, p.Files)
}

func TestBasicInfo_KeepsOneExperienceField(t *testing.T) {
	p := Classify(sampleApplication(), nil)

	var labels []string
	for _, row := range p.BasicInfo {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"Years of Experience", "Location", "Expected Salary", "Notice Period"}, labels)
	assert.Equal(t, "8", p.BasicInfo[0].Value)
	assert.Equal(t, "f4", p.BasicInfo[0].FieldID)
	assert.Equal(t, "Years of professional experience", p.BasicInfo[0].Question)
}

func TestBasicInfo_ExperienceHeadings(t *testing.T) {
	tests := map[string]string{
		"Years of relevant experience":  "Years of Experience",
		"Professional experience":       "Professional Experience",
		"Work experience (years)":       "Work Experience",
		"Total experience":              "Total Experience",
		"Experience with Go":            "Experience",
		"Describe your experience":      "",
		"Team leading experience":       "",
		"Explain a hard bug you solved": "",
	}
	for label, want := range tests {
		assert.Equal(t, want, experienceHeading(strings.ToLower(label)), label)
	}
}

func TestBasicInfo_LocationRejectsNoise(t *testing.T) {
	for _, v := range []string{"admin@example.com", "localhost", "Development Environment", "  "} {
		p := Classify([]forms.SubmittedField{text("l", "Location", v)}, nil)
		assert.Empty(t, p.BasicInfo, v)
	}

	// a rejected location does not fall through to later rules
	p := Classify([]forms.SubmittedField{text("l", "Location / availability", "me@x.io")}, nil)
	assert.Empty(t, p.BasicInfo)

	p = Classify([]forms.SubmittedField{text("l", "Email address", "ada@example.com")}, nil)
	assert.Empty(t, p.BasicInfo)
}

func TestSkills(t *testing.T) {
	p := Classify(sampleApplication(), nil)
	require.Len(t, p.Skills, 1)

	g := p.Skills[0]
	assert.Equal(t, "f8", g.FieldID)
	assert.False(t, g.Raw)
	require.Len(t, g.Rows, 2)
	assert.Equal(t, SkillRow{Skill: "Go", Rating: 5, Rated: true, Display: "5/5"}, g.Rows[0])
	assert.Equal(t, SkillRow{Skill: "Kubernetes", Rating: 0, Rated: false, Display: NoRating}, g.Rows[1])
}

func TestSkills_FallbackChain(t *testing.T) {
	p := Classify([]forms.SubmittedField{
		text("a", "Key skills", `{"skill":"Rust","rating":3}`),
		text("b", "Other", `[{"skill":"SQL","rating":2}]`),
		text("c", "Languages", "Go, Python"),
		text("Languages_fieldType", "Languages_fieldType", "SKILLS"),
		text("d", "Top skills", "   "),
	}, nil)

	require.Len(t, p.Skills, 3)
	assert.Equal(t, "a", p.Skills[0].FieldID)
	assert.Equal(t, "3/5", p.Skills[0].Rows[0].Display)

	assert.Equal(t, "b", p.Skills[1].FieldID)
	assert.Equal(t, "SQL", p.Skills[1].Rows[0].Skill)

	assert.Equal(t, "c", p.Skills[2].FieldID)
	assert.True(t, p.Skills[2].Raw)
	assert.Equal(t, []SkillRow{{Skill: "Go, Python", Display: NoRating}}, p.Skills[2].Rows)
}

func TestContact_MetadataFirst(t *testing.T) {
	lat, lng := 51.50741, -0.12776
	geo := &GeoMetadata{IP: "81.2.69.160", City: "London", State: "England", Country: "GB", Latitude: &lat, Longitude: &lng}
	p := Classify(sampleApplication(), geo)

	require.GreaterOrEqual(t, len(p.Contact), 3)
	assert.Equal(t, ContactRow{Label: "IP Address", Value: "81.2.69.160", Source: SourceMetadata}, p.Contact[0])
	assert.Equal(t, ContactRow{Label: "Location", Value: "London, England, GB", Source: SourceMetadata}, p.Contact[1])
	assert.Equal(t, "51.5074, -0.1278", p.Contact[2].Value)

	var form []ContactRow
	for _, row := range p.Contact {
		if row.Source == SourceForm {
			form = append(form, row)
		}
	}
	require.Len(t, form, 3)
	assert.Equal(t, "Current Location", form[0].Label)
	assert.Equal(t, "GitHub", form[1].Label)
	assert.Equal(t, "https://github.com/ada", form[1].URL)
	assert.Equal(t, "Portfolio 1", form[2].Label)
	assert.Equal(t, "", form[2].URL)
}

func TestContact_DevEnvironment(t *testing.T) {
	lat, lng := 1.0, 2.0
	geo := &GeoMetadata{IP: "::1", City: "Local Development", Latitude: &lat, Longitude: &lng}
	p := Classify(nil, geo)

	require.Len(t, p.Contact, 2)
	assert.Equal(t, "IP Address (Dev Environment)", p.Contact[0].Label)
	assert.True(t, p.Contact[0].Dev)
	assert.Equal(t, "Location (Dev Environment)", p.Contact[1].Label)
}

func TestContact_OnlyFirstLocation(t *testing.T) {
	p := Classify([]forms.SubmittedField{
		text("a", "City", "Berlin"),
		text("b", "Country", "Germany"),
		text("c", "LinkedIn profile", "linkedin.com/in/ada"),
		text("d", "Social security number", "000"),
	}, nil)

	require.Len(t, p.Contact, 2)
	assert.Equal(t, "City", p.Contact[0].Label)
	assert.Equal(t, "LinkedIn", p.Contact[1].Label)
	assert.Equal(t, "https://linkedin.com/in/ada", p.Contact[1].URL)
}

func TestQA_Exclusions(t *testing.T) {
	p := Classify(sampleApplication(), nil)

	var ids []string
	for _, row := range p.QA {
		ids = append(ids, row.FieldID)
	}
	assert.Equal(t, []string{"f4", "f5", "f6", "f7", "f10", "f11", "f12"}, ids)
	for _, row := range p.QA {
		if row.FieldID == "f10" {
			assert.Equal(t, "https://github.com/ada, ada.dev", row.Answer)
		}
	}
}

func TestFiles(t *testing.T) {
	p := Classify(sampleApplication(), nil)
	require.Len(t, p.Files, 1)
	assert.Equal(t, FileRow{
		FieldID:     "f9",
		Label:       "Resume",
		DisplayName: "ada-cv.pdf",
		Handle:      "1700000000000_ada-cv.pdf",
		Path:        "uploads/1700000000000_ada-cv.pdf",
	}, p.Files[0])
}

func TestFiles_LegacyFilename(t *testing.T) {
	p := Classify([]forms.SubmittedField{
		text("r", "Upload your CV", "1700000000000_resume.pdf"),
	}, nil)

	require.Len(t, p.Files, 1)
	assert.Equal(t, "resume.pdf", p.Files[0].DisplayName)
	assert.Equal(t, "1700000000000_resume.pdf", p.Files[0].Handle)
	assert.True(t, p.Files[0].Legacy)
	assert.Empty(t, p.QA)
}

func TestExtractIdentity(t *testing.T) {
	id := ExtractIdentity(sampleApplication())
	assert.Equal(t, Identity{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0000"}, id)

	id = ExtractIdentity([]forms.SubmittedField{
		text("a", "First name", "Grace"),
		text("b", "Last name", "Hopper"),
		text("c", "Contact email", "not given"),
		text("d", "E-mail", "grace@navy.mil"),
	})
	assert.Equal(t, Identity{Name: "Grace Hopper", Email: "grace@navy.mil"}, id)
}
