package schema

import (
	"testing"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() types.Schema {
	return types.Schema{
		{ID: "a", Name: "id", Type: registry.TypeRowNumber, Options: map[string]any{"start": float64(1)}},
		{ID: "b", Name: "email", Type: registry.TypeEmail, Options: map[string]any{"domain": ""}},
		{ID: "c", Name: "status", Type: registry.TypeCustomList, Options: map[string]any{"values": "new, done"}},
	}
}

func TestAddFieldPlaceholderNames(t *testing.T) {
	s := AddField(nil)
	require.Len(t, s, 1)
	assert.Equal(t, "field_1", s[0].Name)
	assert.Empty(t, s[0].Type)
	assert.NotEmpty(t, s[0].ID)

	s = AddField(s)
	assert.Equal(t, "field_2", s[1].Name)

	s = SetFieldName(s, 0, "field_3")
	s = AddField(s)
	assert.Equal(t, "field_4", s[2].Name)
}

func TestAddFieldLeavesInputUntouched(t *testing.T) {
	in := sample()
	out := AddField(in)
	assert.Len(t, in, 3)
	assert.Len(t, out, 4)
}

func TestRemoveField(t *testing.T) {
	out := RemoveField(sample(), 1)
	assert.Equal(t, []string{"id", "status"}, Names(out))

	assert.Equal(t, Names(sample()), Names(RemoveField(sample(), 7)))
	assert.Equal(t, Names(sample()), Names(RemoveField(sample(), -1)))
}

func TestDuplicateFieldNames(t *testing.T) {
	s := DuplicateField(sample(), 1)
	require.Len(t, s, 4)
	assert.Equal(t, "email_copy", s[3].Name)
	assert.NotEqual(t, s[1].ID, s[3].ID)
	assert.Equal(t, s[1].Options, s[3].Options)

	s = DuplicateField(s, 1)
	assert.Equal(t, "email_copy_2", s[4].Name)
	s = DuplicateField(s, 1)
	assert.Equal(t, "email_copy_3", s[5].Name)
}

func TestDuplicateFieldClonesOptions(t *testing.T) {
	s := DuplicateField(sample(), 2)
	s = SetFieldOption(s, 3, "values", "other")
	assert.Equal(t, "new, done", s[2].Options["values"])
}

func TestMoveField(t *testing.T) {
	assert.Equal(t, []string{"email", "id", "status"}, Names(MoveField(sample(), 1, Up)))
	assert.Equal(t, []string{"id", "status", "email"}, Names(MoveField(sample(), 1, Down)))
	assert.Equal(t, Names(sample()), Names(MoveField(sample(), 0, Up)))
	assert.Equal(t, Names(sample()), Names(MoveField(sample(), 2, Down)))
}

func TestSetFieldTypeResetsOptions(t *testing.T) {
	s := SetFieldType(sample(), 2, "number")
	assert.Equal(t, registry.TypeNumber, s[2].Type)
	assert.Equal(t, map[string]any{"min": float64(1), "max": float64(1000)}, s[2].Options)

	s = SetFieldType(s, 2, registry.TypeReference)
	if diff := cmp.Diff(map[string]any{registry.OptionSourceField: ""}, s[2].Options); diff != "" {
		t.Errorf("reference options mismatch (-want +got):\n%s", diff)
	}

	s = SetFieldType(s, 2, registry.TypeBoolean)
	assert.Empty(t, s[2].Options)
}

func TestReplaceAssignsFreshIDs(t *testing.T) {
	in := sample()
	out := Replace(in)
	require.Len(t, out, len(in))
	for i := range in {
		assert.NotEqual(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Name, out[i].Name)
	}
}

func TestEnsureIDs(t *testing.T) {
	out := EnsureIDs(types.Schema{{Name: "a"}, {ID: "keep", Name: "b"}})
	assert.NotEmpty(t, out[0].ID)
	assert.Equal(t, "keep", out[1].ID)
}

func TestAIFields(t *testing.T) {
	s := append(sample(), types.FieldDefinition{Name: "bio", Type: "ai generated"})
	assert.Equal(t, []string{"bio"}, AIFields(s))
	assert.True(t, HasAIFields(s))
	assert.False(t, HasAIFields(sample()))
	assert.Equal(t, 2, IndexOf(s, "status"))
	assert.Equal(t, -1, IndexOf(s, "nope"))
}
