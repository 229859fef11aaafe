package forms

import (
	"context"
	"fmt"
	"strings"
)

// FileStore keeps uploaded bytes and hands back a descriptor for them.
type FileStore interface {
	Store(ctx context.Context, data []byte, originalName string) (FileDescriptor, error)
	Retrieve(ctx context.Context, handle string) ([]byte, error)
}

// SubmittedField is one stored answer. It is written once per application and
// never patched.
type SubmittedField struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	FieldType FieldType `json:"fieldType"`
	Value     Value     `json:"value"`
}

// EncodeResult carries the encoded answers plus per-field failures. A field
// whose upload failed is left out of Fields and reported in Errors so the
// caller can retry just that file.
type EncodeResult struct {
	Fields []SubmittedField
	Errors ErrorMap
}

// Encode turns entered values into their stored shapes, in form order. Only
// fields present in values are emitted. The file store is the only I/O.
func Encode(ctx context.Context, form Form, values Values, files FileStore) EncodeResult {
	form = form.Sorted()
	res := EncodeResult{Fields: make([]SubmittedField, 0, len(values)), Errors: ErrorMap{}}

	for _, field := range form.Fields {
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		encoded, err := encodeValue(ctx, field, value, files)
		if err != nil {
			res.Errors[field.ID] = err.Error()
			continue
		}
		res.Fields = append(res.Fields, SubmittedField{
			ID:        field.ID,
			Label:     field.Label,
			FieldType: field.FieldType,
			Value:     encoded,
		})
	}
	return res
}

func encodeValue(ctx context.Context, field FormField, v Value, files FileStore) (Value, error) {
	switch field.FieldType.Shape() {
	case ShapeSkills:
		if v.Kind == KindEmpty || (v.Kind == KindString && strings.TrimSpace(v.Str) == "") {
			return SkillsValue(), nil
		}
		rows, _ := DecodeSkills(v)
		return SkillsValue(rows...), nil

	case ShapeFile:
		return encodeFile(ctx, field, v, files)

	case ShapeList:
		if v.Kind == KindList {
			return ListValue(v.List...), nil
		}
		return ListValue(listOf(v)...), nil
	}

	if v.Kind == KindList {
		return StringValue(strings.TrimSpace(strings.Join(v.List, ", "))), nil
	}
	return StringValue(strings.TrimSpace(v.Text())), nil
}

func encodeFile(ctx context.Context, field FormField, v Value, files FileStore) (Value, error) {
	switch {
	case v.Upload != nil && len(v.Upload.Data) > 0:
		if files == nil {
			return Value{}, fmt.Errorf("%s could not be uploaded: no file storage configured", field.Label)
		}
		d, err := files.Store(ctx, v.Upload.Data, v.Upload.Name)
		if err != nil {
			return Value{}, fmt.Errorf("%s could not be uploaded: %w", field.Label, err)
		}
		return FileValue(d), nil
	case v.File != nil:
		return FileValue(*v.File), nil
	case v.Kind == KindString:
		// legacy bare filename
		return StringValue(strings.TrimSpace(v.Str)), nil
	}
	return StringValue(""), nil
}
