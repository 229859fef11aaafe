package classifier

import (
	"encoding/json"
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// FileRow is one downloadable attachment. Handle is what the file store
// understands; DisplayName is what the reviewer sees.
type FileRow struct {
	FieldID     string `json:"fieldId"`
	Label       string `json:"label"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	Path        string `json:"path,omitempty"`
	Legacy      bool   `json:"legacy"`
}

func isFileField(e entry) bool {
	if e.isTypeTag {
		return false
	}
	if e.field.FieldType == forms.TypeFile || e.field.Value.Kind == forms.KindFile {
		return true
	}
	if strings.HasPrefix(e.text, "{") && objectHasFileName(e.text) {
		return true
	}
	if hasAny(e.label, "resume", "upload", "cv") && e.text != "" {
		return strings.HasPrefix(e.text, "{") || has(e.text, ".")
	}
	return false
}

func objectHasFileName(text string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return false
	}
	_, ok := obj["fileName"]
	return ok
}

func files(entries []entry) []FileRow {
	rows := make([]FileRow, 0)
	for _, e := range entries {
		if !isFileField(e) {
			continue
		}
		d, legacy, ok := forms.DecodeFile(e.field.Value)
		if !ok {
			continue
		}
		rows = append(rows, FileRow{
			FieldID:     e.field.ID,
			Label:       e.field.Label,
			DisplayName: d.OriginalName,
			Handle:      d.FileName,
			Path:        d.Path,
			Legacy:      legacy,
		})
	}
	return rows
}
