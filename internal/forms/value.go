package forms

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// SkillRating is one row of a SKILLS answer. Rating 0 means the candidate
// typed the skill but has not rated it yet.
type SkillRating struct {
	Skill  string `json:"skill"`
	Rating int    `json:"rating"`
}

// Rated reports whether the row carries a usable 1..5 rating.
func (r SkillRating) Rated() bool {
	return r.Rating >= 1 && r.Rating <= 5
}

// UnmarshalJSON tolerates ratings stored as floats or numeric strings. A
// rating outside 0..5 reads as 0, unrated.
func (r *SkillRating) UnmarshalJSON(data []byte) error {
	var raw struct {
		Skill  any `json:"skill"`
		Rating any `json:"rating"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Skill = scalarText(raw.Skill)
	r.Rating = parseRating(raw.Rating)
	return nil
}

func parseRating(v any) int {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if n < 0 || n > 5 {
		return 0
	}
	return int(n)
}

// FileDescriptor identifies an uploaded file. FileName is the storage handle.
type FileDescriptor struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
}

// Upload is a file picked in the browser that has not been stored yet.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ValueKind tags which member of Value is populated.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindString
	KindList
	KindSkills
	KindFile
)

// Value is a submitted answer: a string, a list of strings, a list of skill
// ratings, or a file descriptor. Upload is only set between the HTTP layer and
// the encoder and is never serialised.
type Value struct {
	Kind   ValueKind
	Str    string
	List   []string
	Skills []SkillRating
	File   *FileDescriptor
	Upload *Upload
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

func ListValue(items ...string) Value {
	return Value{Kind: KindList, List: append([]string{}, items...)}
}

func SkillsValue(rows ...SkillRating) Value {
	return Value{Kind: KindSkills, Skills: append([]SkillRating{}, rows...)}
}

func FileValue(d FileDescriptor) Value { return Value{Kind: KindFile, File: &d} }

func UploadValue(u Upload) Value { return Value{Kind: KindFile, Upload: &u} }

// Text is the value as the string the browser would have stored: structured
// skills and files come back as their JSON encoding. Lists have no single
// string form and return "".
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindSkills:
		b, _ := json.Marshal(v.Skills)
		return string(b)
	case KindFile:
		if v.File == nil {
			return ""
		}
		b, _ := json.Marshal(v.File)
		return string(b)
	}
	return ""
}

// Display is the human readable rendering used by plain table cells.
func (v Value) Display() string {
	if v.Kind == KindList {
		return strings.Join(v.List, ", ")
	}
	return strings.TrimSpace(v.Text())
}

// IsEmpty reports whether the answer carries nothing worth showing.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindString:
		return strings.TrimSpace(v.Str) == ""
	case KindList:
		return len(v.List) == 0
	case KindSkills:
		return len(v.Skills) == 0
	case KindFile:
		return v.File == nil && (v.Upload == nil || len(v.Upload.Data) == 0)
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindSkills:
		if v.Skills == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Skills)
	case KindFile:
		if v.File != nil {
			return json.Marshal(v.File)
		}
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes the stored shapes in a fixed order: string, skill
// array, string array, file object. Anything else is kept as its raw JSON
// text so nothing a browser ever stored is lost.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	for _, decode := range valueDecoders {
		if out, ok := decode(data); ok {
			*v = out
			return nil
		}
	}
	*v = StringValue(string(data))
	return nil
}

var valueDecoders = []func([]byte) (Value, bool){
	decodeStringValue,
	decodeSkillArrayValue,
	decodeListValue,
	decodeFileValue,
}

func decodeStringValue(data []byte) (Value, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return Value{}, false
	}
	return StringValue(s), true
}

func decodeSkillArrayValue(data []byte) (Value, bool) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return Value{}, false
	}
	for _, row := range rows {
		if _, ok := row["skill"]; !ok {
			return Value{}, false
		}
	}
	var skills []SkillRating
	if err := json.Unmarshal(data, &skills); err != nil {
		return Value{}, false
	}
	return SkillsValue(skills...), true
}

func decodeListValue(data []byte) (Value, bool) {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return Value{}, false
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		list = append(list, scalarText(item))
	}
	return ListValue(list...), true
}

func decodeFileValue(data []byte) (Value, bool) {
	var d FileDescriptor
	if err := json.Unmarshal(data, &d); err != nil || d.FileName == "" {
		return Value{}, false
	}
	return FileValue(d), true
}

// SkillSource records which step of the skills decode chain produced the rows.
type SkillSource int

const (
	SkillsStructured SkillSource = iota
	SkillsFromArray
	SkillsFromObject
	SkillsFromRaw
)

// DecodeSkills reads a skills answer. Structured values are used as-is; text
// is tried as a JSON array (one row per element), then as a single JSON
// object, and finally kept as one unrated skill named by the raw text.
func DecodeSkills(v Value) ([]SkillRating, SkillSource) {
	switch v.Kind {
	case KindSkills:
		return append([]SkillRating{}, v.Skills...), SkillsStructured
	case KindList:
		rows := make([]SkillRating, 0, len(v.List))
		for _, s := range v.List {
			rows = append(rows, SkillRating{Skill: s})
		}
		return rows, SkillsFromArray
	}
	return DecodeSkillText(v.Text())
}

// DecodeSkillText is DecodeSkills for a raw stored string.
func DecodeSkillText(text string) ([]SkillRating, SkillSource) {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		switch p := parsed.(type) {
		case []any:
			rows := make([]SkillRating, 0, len(p))
			for _, el := range p {
				rows = append(rows, skillFromJSON(el))
			}
			return rows, SkillsFromArray
		case map[string]any:
			return []SkillRating{skillFromJSON(p)}, SkillsFromObject
		}
	}
	return []SkillRating{{Skill: text}}, SkillsFromRaw
}

func skillFromJSON(el any) SkillRating {
	obj, ok := el.(map[string]any)
	if !ok {
		return SkillRating{Skill: scalarText(el)}
	}
	return SkillRating{Skill: scalarText(obj["skill"]), Rating: parseRating(obj["rating"])}
}

var timestampPrefix = regexp.MustCompile(`^\d+_`)

// LegacyDisplayName strips an "<epoch-ms>_" prefix from a stored filename.
func LegacyDisplayName(handle string) string {
	if loc := timestampPrefix.FindStringIndex(handle); loc != nil && loc[1] < len(handle) {
		return handle[loc[1]:]
	}
	return handle
}

// DecodeFile reads a file answer: a descriptor, a JSON object carrying
// fileName (and ideally originalName), or a legacy bare filename. legacy is
// true when the display name had to be derived from the handle.
func DecodeFile(v Value) (d FileDescriptor, legacy bool, ok bool) {
	if v.Kind == KindFile && v.File != nil {
		d = *v.File
		if d.OriginalName == "" {
			d.OriginalName = LegacyDisplayName(d.FileName)
			return d, true, d.FileName != ""
		}
		return d, false, d.FileName != ""
	}
	text := strings.TrimSpace(v.Text())
	if text == "" {
		return FileDescriptor{}, false, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		name := scalarText(obj["fileName"])
		original := scalarText(obj["originalName"])
		if name != "" && original != "" {
			return FileDescriptor{FileName: name, OriginalName: original, Path: scalarText(obj["path"])}, false, true
		}
		if name != "" {
			return FileDescriptor{FileName: name, OriginalName: LegacyDisplayName(name), Path: scalarText(obj["path"])}, true, true
		}
	}
	return FileDescriptor{FileName: text, OriginalName: LegacyDisplayName(text)}, true, true
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
