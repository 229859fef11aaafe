package forms

import (
	"fmt"
	"strings"
)

// OpKind selects what a builder operation does.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpMove   OpKind = "move"
	OpRemove OpKind = "remove"
)

// Op is one drag/drop or palette action from the form builder. Insert uses
// FieldType and Target, Move uses FieldID and Target, Remove uses FieldID.
type Op struct {
	Kind      OpKind
	FieldType FieldType
	FieldID   string
	Target    int
}

// Reorder applies a single builder operation. Operations are applied in the
// order they are issued; when two target the same index the later one wins.
func Reorder(form Form, op Op) (Form, error) {
	switch op.Kind {
	case OpInsert:
		if _, ok := Lookup(op.FieldType); !ok {
			return form, fmt.Errorf("%w %q", ErrUnknownType, op.FieldType)
		}
		form, _ = InsertField(form, op.FieldType, op.Target)
		return form, nil
	case OpMove:
		return MoveField(form, op.FieldID, op.Target)
	case OpRemove:
		return RemoveField(form, op.FieldID)
	default:
		return form, fmt.Errorf("unknown builder operation %q", op.Kind)
	}
}

// InsertField splices a new field of type t at index target and returns the
// updated form along with the created field.
func InsertField(form Form, t FieldType, target int) (Form, FormField) {
	field := NewField(t)
	target = clamp(target, 0, len(form.Fields))

	fields := make([]FormField, 0, len(form.Fields)+1)
	fields = append(fields, cloneFields(form.Fields[:target])...)
	fields = append(fields, field)
	fields = append(fields, cloneFields(form.Fields[target:])...)
	form.Fields = renumber(fields)

	field.Order = target
	return form, field
}

// MoveField moves an existing field so that it lands in front of whatever
// currently sits at index target (target == len means "to the end").
func MoveField(form Form, id string, target int) (Form, error) {
	src := indexOf(form.Fields, id)
	if src < 0 {
		return form, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	fields := cloneFields(form.Fields)
	moved := fields[src]
	rest := append(fields[:src:src], fields[src+1:]...)

	dst := insertionIndex(src, clamp(target, 0, len(form.Fields)))
	out := make([]FormField, 0, len(fields))
	out = append(out, rest[:dst]...)
	out = append(out, moved)
	out = append(out, rest[dst:]...)
	form.Fields = renumber(out)
	return form, nil
}

// insertionIndex converts a drop target measured against the list before
// removal into an index in the list after the source has been removed.
func insertionIndex(src, target int) int {
	if target > src {
		return target - 1
	}
	return target
}

// ParseOptions turns the builder's multi-line options box into a list. Blank
// lines are dropped; everything else keeps its text and order.
func ParseOptions(blob string) []string {
	lines := strings.Split(blob, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// SetOptions replaces an options-bearing field's list from a text blob.
func SetOptions(form Form, id, blob string) (Form, error) {
	field, ok := form.Field(id)
	if !ok {
		return form, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if !field.FieldType.HasOptions() {
		return form, fmt.Errorf("%w: %s", ErrNoOptions, field.FieldType)
	}
	return UpdateField(form, id, FieldPatch{Options: ParseOptions(blob)})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
