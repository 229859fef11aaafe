package forms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testForm(types ...FieldType) Form {
	form := Form{ID: "form-1", Name: "Backend Engineer"}
	for i, t := range types {
		f := NewField(t)
		f.Order = i
		form.Fields = append(form.Fields, f)
	}
	return form
}

func orders(form Form) []int {
	out := make([]int, len(form.Fields))
	for i, f := range form.Fields {
		out[i] = f.Order
	}
	return out
}

func TestRegistry_CoversEveryType(t *testing.T) {
	types := Types()
	assert.Len(t, types, 14)
	for _, ft := range types {
		info, ok := Lookup(ft)
		require.True(t, ok, "missing registry entry for %s", ft)
		assert.Equal(t, ft, info.Type)
	}
}

func TestParseFieldType(t *testing.T) {
	ft, ok := ParseFieldType("  skills ")
	assert.True(t, ok)
	assert.Equal(t, TypeSkills, ft)

	_, ok = ParseFieldType("SIGNATURE")
	assert.False(t, ok)
}

func TestNewField_OptionsOnlyForOptionTypes(t *testing.T) {
	for _, ft := range Types() {
		f := NewField(ft)
		if ft.HasOptions() {
			assert.Equal(t, Options{"Option 1", "Option 2", "Option 3"}, f.Options, ft)
		} else {
			assert.NotNil(t, f.Options, ft)
			assert.Empty(t, f.Options, ft)
		}
		assert.Equal(t, Width100, f.FieldWidth)
		assert.NotEmpty(t, f.ID)
	}
}

func TestNewField_DefaultOptionsAreNotShared(t *testing.T) {
	a := NewField(TypeSelect)
	a.Options[0] = "Changed"
	b := NewField(TypeSelect)
	assert.Equal(t, "Option 1", b.Options[0])
}

func TestUpdateField_ReplacesOnlyTarget(t *testing.T) {
	form := testForm(TypeText, TypeEmail, TypeSelect)
	label := "Work email"
	required := true

	updated, err := UpdateField(form, form.Fields[1].ID, FieldPatch{Label: &label, IsRequired: &required})
	require.NoError(t, err)

	assert.Equal(t, "Work email", updated.Fields[1].Label)
	assert.True(t, updated.Fields[1].IsRequired)
	assert.Equal(t, form.Fields[0], updated.Fields[0])
	assert.Equal(t, form.Fields[2], updated.Fields[2])
	assert.Equal(t, []int{0, 1, 2}, orders(updated))
	// the input form is untouched
	assert.NotEqual(t, "Work email", form.Fields[1].Label)
}

func TestUpdateField_TypeChangeAdjustsOptions(t *testing.T) {
	form := testForm(TypeSelect)
	id := form.Fields[0].ID

	text := TypeText
	updated, err := UpdateField(form, id, FieldPatch{FieldType: &text})
	require.NoError(t, err)
	assert.Empty(t, updated.Fields[0].Options)

	radio := TypeRadio
	updated, err = UpdateField(updated, id, FieldPatch{FieldType: &radio})
	require.NoError(t, err)
	assert.Equal(t, Options(DefaultOptions), updated.Fields[0].Options)
}

func TestUpdateField_Errors(t *testing.T) {
	form := testForm(TypeText)

	_, err := UpdateField(form, "nope", FieldPatch{})
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = UpdateField(form, form.Fields[0].ID, FieldPatch{Options: []string{"a"}})
	assert.ErrorIs(t, err, ErrNoOptions)

	bogus := FieldType("SIGNATURE")
	_, err = UpdateField(form, form.Fields[0].ID, FieldPatch{FieldType: &bogus})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestUpdateField_WidthIsNormalised(t *testing.T) {
	form := testForm(TypeText)
	w := FieldWidth("50")
	updated, err := UpdateField(form, form.Fields[0].ID, FieldPatch{FieldWidth: &w})
	require.NoError(t, err)
	assert.Equal(t, Width50, updated.Fields[0].FieldWidth)
}

func TestRemoveField_RenumbersDensely(t *testing.T) {
	for pos := 0; pos < 4; pos++ {
		form := testForm(TypeText, TypeEmail, TypePhone, TypeFile)
		removed := form.Fields[pos].ID

		updated, err := RemoveField(form, removed)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, orders(updated), "removed position %d", pos)
		_, still := updated.Field(removed)
		assert.False(t, still)
	}
}

func TestRemoveField_Unknown(t *testing.T) {
	_, err := RemoveField(testForm(TypeText), "missing")
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestWidthSpan_Total(t *testing.T) {
	cases := map[FieldWidth]int{
		Width25: 3, Width33: 4, Width50: 6, Width66: 8, Width75: 9, Width100: 12,
		"": 12, "10%": 12, "wide": 12,
	}
	for w, span := range cases {
		assert.Equal(t, span, w.Span(), "width %q", w)
	}
}

func TestParseWidth(t *testing.T) {
	assert.Equal(t, Width33, ParseWidth("33"))
	assert.Equal(t, Width75, ParseWidth(" 75 % "))
	assert.Equal(t, Width100, ParseWidth("40%"))
	assert.Equal(t, Width100, ParseWidth(""))
}

func TestOptions_LegacyEncodings(t *testing.T) {
	var f FormField
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","options":["A","B"]}`), &f))
	assert.Equal(t, Options{"A", "B"}, f.Options)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","options":"[\"A\",\"B\"]"}`), &f))
	assert.Equal(t, Options{"A", "B"}, f.Options)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","options":"Only choice"}`), &f))
	assert.Equal(t, Options{"Only choice"}, f.Options)
}

func TestOptions_MarshalEmptyAsArray(t *testing.T) {
	b, err := json.Marshal(FormField{ID: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"options":[]`)
}

func TestForm_Validate(t *testing.T) {
	form := testForm(TypeText, TypeSkills)
	assert.NoError(t, form.Validate())

	noName := form
	noName.Name = "  "
	assert.ErrorIs(t, noName.Validate(), ErrInvalidForm)

	sparse := testForm(TypeText, TypeEmail)
	sparse.Fields[1].Order = 5
	assert.ErrorIs(t, sparse.Validate(), ErrInvalidForm)

	dup := testForm(TypeText, TypeEmail)
	dup.Fields[1].ID = dup.Fields[0].ID
	assert.ErrorIs(t, dup.Validate(), ErrInvalidForm)

	noLabel := testForm(TypeText, TypeEmail)
	noLabel.Fields[0].Label = " "
	assert.ErrorIs(t, noLabel.Validate(), ErrInvalidForm)

	unknown := testForm(TypeText)
	unknown.Fields[0].FieldType = "HOLOGRAM"
	err := unknown.Validate()
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestForm_SortedHealsSparseOrder(t *testing.T) {
	form := testForm(TypeText, TypeEmail, TypePhone)
	form.Fields[0].Order = 7
	form.Fields[1].Order = 2
	form.Fields[2].Order = 4

	sorted := form.Sorted()
	assert.Equal(t, []int{0, 1, 2}, orders(sorted))
	assert.Equal(t, TypeEmail, sorted.Fields[0].FieldType)
	assert.Equal(t, TypeText, sorted.Fields[2].FieldType)
}
