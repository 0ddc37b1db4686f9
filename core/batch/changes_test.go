package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffer_Changes(t *testing.T) {
	store := newFakeStore(
		note("1", "m1", map[string]string{"Front": "Hallo", "Back": "B"}),
		note("2", "m1", map[string]string{"Front": "World", "Back": "B"}),
	)
	d := NewDiffer(store, &Log{})

	pairs := []Pair{
		{NoteID: "1", Row: Record{"nid": "1", "front": "Hello"}},
		{NoteID: "2", Row: Record{"nid": "2", "front": "World"}},
	}
	mapping := FieldMapping{{FileField: "front", NoteField: "Front"}}

	cs, summary, err := d.Changes(context.Background(), pairs, mapping)
	require.NoError(t, err)

	// Note 1 differs, note 2 is identical.
	require.Equal(t, 1, cs.Len())
	changes := cs.Changes("1")
	require.Len(t, changes, 1)
	assert.Equal(t, NoteChange{NoteID: "1", Field: "Front", Old: "Hallo", New: "Hello"}, changes[0])
	assert.Equal(t, 1, summary.NotesChanged)
	assert.Equal(t, 1, summary.FieldChanges)
	assert.Equal(t, 0, summary.EmptyFieldChanges)
}

func TestDiffer_ExactEqualityNoNormalization(t *testing.T) {
	store := newFakeStore(note("1", "m1", map[string]string{"Front": "value"}))
	d := NewDiffer(store, &Log{})

	// Trailing whitespace counts as a difference.
	cs, _, err := d.Changes(context.Background(),
		[]Pair{{NoteID: "1", Row: Record{"front": "value "}}},
		FieldMapping{{FileField: "front", NoteField: "Front"}})
	require.NoError(t, err)
	require.Equal(t, 1, cs.Total())
	assert.Equal(t, "value ", cs.Changes("1")[0].New)
}

func TestDiffer_ChangeOrderFollowsMapping(t *testing.T) {
	store := newFakeStore(note("1", "m1", map[string]string{"a": "1", "b": "2", "c": "3"}))
	d := NewDiffer(store, &Log{})

	mapping := FieldMapping{
		{FileField: "c", NoteField: "c"},
		{FileField: "a", NoteField: "a"},
		{FileField: "b", NoteField: "b"},
	}
	cs, _, err := d.Changes(context.Background(),
		[]Pair{{NoteID: "1", Row: Record{"a": "x", "b": "y", "c": "z"}}},
		mapping)
	require.NoError(t, err)

	changes := cs.Changes("1")
	require.Len(t, changes, 3)
	assert.Equal(t, "c", changes[0].Field)
	assert.Equal(t, "a", changes[1].Field)
	assert.Equal(t, "b", changes[2].Field)
}

func TestDiffer_EmptyFieldCounters(t *testing.T) {
	store := newFakeStore(
		note("1", "m1", map[string]string{"Front": "", "Back": ""}),
		note("2", "m1", map[string]string{"Front": "", "Back": "kept"}),
	)
	d := NewDiffer(store, &Log{})

	mapping := FieldMapping{
		{FileField: "front", NoteField: "Front"},
		{FileField: "back", NoteField: "Back"},
	}
	pairs := []Pair{
		{NoteID: "1", Row: Record{"front": "a", "back": "b"}},
		{NoteID: "2", Row: Record{"front": "c", "back": "kept"}},
	}

	_, summary, err := d.Changes(context.Background(), pairs, mapping)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.EmptyFieldChanges)
	assert.Equal(t, 2, summary.NotesWithEmptyFields)
}

func TestDiffer_MissingTargetFieldsListed(t *testing.T) {
	store := newFakeStore(
		note("1", "m1", map[string]string{"Front": "a"}),
		note("2", "m1", map[string]string{"Other": "b"}),
	)
	d := NewDiffer(store, &Log{})

	mapping := FieldMapping{{FileField: "front", NoteField: "Front"}}
	pairs := []Pair{
		{NoteID: "1", Row: Record{"front": "x"}},
		{NoteID: "2", Row: Record{"front": "y"}},
	}

	_, _, err := d.Changes(context.Background(), pairs, mapping)
	var jerr *JoinError
	require.ErrorAs(t, err, &jerr)
	assert.Equal(t, MissingField, jerr.Kind)
	assert.Equal(t, []string{"Front (note 2)"}, jerr.Values)
}

func TestDiffer_NoChanges(t *testing.T) {
	store := newFakeStore(note("1", "m1", map[string]string{"Front": "same"}))
	log := &Log{}
	d := NewDiffer(store, log)

	cs, summary, err := d.Changes(context.Background(),
		[]Pair{{NoteID: "1", Row: Record{"front": "same"}}},
		FieldMapping{{FileField: "front", NoteField: "Front"}})
	require.NoError(t, err)
	assert.True(t, cs.Empty())
	assert.Equal(t, 0, summary.NotesChanged)
	assert.Contains(t, log.String(), "No changes need to be made")
}
