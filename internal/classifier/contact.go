package classifier

import (
	"fmt"
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

const (
	SourceMetadata = "metadata"
	SourceForm     = "form"

	devSuffix = " (Dev Environment)"
)

// GeoMetadata is what the server learned about the submitting client.
type GeoMetadata struct {
	IP        string   `json:"ip,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// IsDev reports whether the metadata came from a local or development setup.
// Such data is still shown, just labelled.
func (g GeoMetadata) IsDev() bool {
	if g.IP == "::1" || g.IP == "127.0.0.1" {
		return true
	}
	for _, s := range []string{g.City, g.State, g.Country} {
		if hasAny(strings.ToLower(s), "development", "local") {
			return true
		}
	}
	return false
}

// ContactRow is one line of the Contact & Metadata card.
type ContactRow struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source"`
	Dev     bool   `json:"dev,omitempty"`
	FieldID string `json:"fieldId,omitempty"`
}

// contact lists the request metadata first and the form answers after it.
func contact(entries []entry, geo *GeoMetadata) []ContactRow {
	rows := make([]ContactRow, 0)
	rows = append(rows, metadataRows(geo)...)
	rows = append(rows, formContactRows(entries)...)
	return rows
}

func metadataRows(geo *GeoMetadata) []ContactRow {
	if geo == nil {
		return nil
	}
	dev := geo.IsDev()
	suffix := ""
	if dev {
		suffix = devSuffix
	}

	var rows []ContactRow
	if ip := strings.TrimSpace(geo.IP); ip != "" {
		rows = append(rows, ContactRow{Label: "IP Address" + suffix, Value: ip, Source: SourceMetadata, Dev: dev})
	}
	var parts []string
	for _, s := range []string{geo.City, geo.State, geo.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		rows = append(rows, ContactRow{Label: "Location" + suffix, Value: strings.Join(parts, ", "), Source: SourceMetadata, Dev: dev})
	}
	if !dev && geo.Latitude != nil && geo.Longitude != nil {
		rows = append(rows, ContactRow{
			Label:  "Coordinates",
			Value:  fmt.Sprintf("%.4f, %.4f", *geo.Latitude, *geo.Longitude),
			Source: SourceMetadata,
		})
	}
	return rows
}

// contactState is carried through the fold over the form answers.
type contactState struct {
	locationSeen bool
	portfolios   int
}

func formContactRows(entries []entry) []ContactRow {
	rows := make([]ContactRow, 0)
	state := contactState{}
	for _, e := range entries {
		var out []ContactRow
		state, out = state.step(e)
		rows = append(rows, out...)
	}
	return rows
}

func (s contactState) step(e entry) (contactState, []ContactRow) {
	l := e.label
	if e.isTypeTag || e.display == "" {
		return s, nil
	}

	switch {
	case hasAny(l, "location", "city", "state", "country", "address") && !has(l, "email"):
		if s.locationSeen {
			return s, nil
		}
		s.locationSeen = true
		return s, []ContactRow{formRow(e.field.Label, e.display, e)}

	case hasAny(l, "linkedin", "social") && !has(l, "security"):
		return s, []ContactRow{formRow("LinkedIn", e.display, e)}

	case has(l, "github") || (has(l, "portfolio") && e.field.Value.Kind == forms.KindList):
		var rows []ContactRow
		for _, link := range linkList(e.field.Value) {
			var name string
			name, s = s.linkName(link, has(l, "github"))
			rows = append(rows, formRow(name, link, e))
		}
		return s, rows

	case has(l, "timezone"):
		return s, []ContactRow{formRow("Timezone", e.display, e)}

	case hasAny(l, "preferred contact", "contact preference"):
		return s, []ContactRow{formRow("Preferred Contact", e.display, e)}

	case hasAny(l, "work authorization", "visa", "sponsorship"):
		return s, []ContactRow{formRow("Work Authorization", e.display, e)}
	}
	return s, nil
}

// linkName names a profile link by the site it points at.
func (s contactState) linkName(link string, githubLabel bool) (string, contactState) {
	lower := strings.ToLower(link)
	switch {
	case has(lower, "github.com"):
		return "GitHub", s
	case has(lower, "linkedin.com"):
		return "LinkedIn", s
	case githubLabel:
		return "GitHub", s
	}
	s.portfolios++
	return fmt.Sprintf("Portfolio %d", s.portfolios), s
}

func linkList(v forms.Value) []string {
	var items []string
	if v.Kind == forms.KindList {
		items = v.List
	} else {
		items = []string{v.Text()}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func formRow(label, value string, e entry) ContactRow {
	return ContactRow{
		Label:   label,
		Value:   value,
		URL:     linkURL(value),
		Source:  SourceForm,
		FieldID: e.field.ID,
	}
}

// linkURL returns a clickable URL for values that are links, or "".
func linkURL(value string) string {
	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return value
	case strings.HasPrefix(lower, "www."), hasAny(lower, "github.com/", "linkedin.com/"):
		if !has(value, " ") {
			return "https://" + value
		}
	}
	return ""
}
