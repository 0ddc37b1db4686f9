package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelections(t *testing.T) {
	t.Run("nid column preferred as file join key", func(t *testing.T) {
		s := DefaultSelections([]string{"Front", "nid", "Back"}, []string{"Front", "Back"})
		assert.Equal(t, "nid", s.FileJoinKey)
		assert.Equal(t, NativeIDField, s.NoteJoinKey)
		assert.Equal(t, "Front", s.Targets["Front"])
		assert.Equal(t, "Back", s.Targets["Back"])
	})

	t.Run("first column when no nid", func(t *testing.T) {
		s := DefaultSelections([]string{"sku", "Front"}, []string{"sku", "Front", "Back"})
		assert.Equal(t, "sku", s.FileJoinKey)
		// A note field named like the file join key becomes the note join key.
		assert.Equal(t, "sku", s.NoteJoinKey)
		// The join field must not premap as a target.
		assert.Equal(t, NothingValue, s.Targets["sku"])
		assert.Equal(t, "Front", s.Targets["Front"])
	})

	t.Run("unknown fields premap to nothing", func(t *testing.T) {
		s := DefaultSelections([]string{"nid", "Extra"}, []string{"Front"})
		assert.Equal(t, NothingValue, s.Targets["Extra"])
	})
}

func TestSelections_MutualExclusion(t *testing.T) {
	base := DefaultSelections([]string{"nid", "Front", "Back"}, []string{"Front", "Back", "Tags"})

	t.Run("target steals from another target", func(t *testing.T) {
		s := base.SetTarget("Back", "Front")
		assert.Equal(t, "Front", s.Targets["Back"])
		assert.Equal(t, NothingValue, s.Targets["Front"])
	})

	t.Run("target steals the note join key", func(t *testing.T) {
		s := base.SetNoteJoinKey("Tags")
		s = s.SetTarget("Front", "Tags")
		assert.Equal(t, NativeIDField, s.NoteJoinKey)
		assert.Equal(t, "Tags", s.Targets["Front"])
	})

	t.Run("join key steals from a target", func(t *testing.T) {
		s := base.SetNoteJoinKey("Front")
		assert.Equal(t, NothingValue, s.Targets["Front"])
		assert.Equal(t, "Back", s.Targets["Back"])
	})

	t.Run("nothing never clears anything", func(t *testing.T) {
		s := base.SetTarget("Front", NothingValue)
		assert.Equal(t, "Back", s.Targets["Back"])
		assert.Equal(t, NativeIDField, s.NoteJoinKey)
	})

	t.Run("original is not mutated", func(t *testing.T) {
		_ = base.SetTarget("Back", "Front")
		assert.Equal(t, "Front", base.Targets["Front"])
	})
}

// After any sequence of selection events, all concrete note-side targets
// plus the note join key must be pairwise distinct.
func TestSelections_DistinctAfterAnySequence(t *testing.T) {
	fileFields := []string{"nid", "a", "b", "c"}
	noteFields := []string{"a", "b", "c", "d"}

	events := []func(Selections) Selections{
		func(s Selections) Selections { return s.SetTarget("a", "d") },
		func(s Selections) Selections { return s.SetNoteJoinKey("d") },
		func(s Selections) Selections { return s.SetTarget("b", "d") },
		func(s Selections) Selections { return s.SetTarget("c", "a") },
		func(s Selections) Selections { return s.SetNoteJoinKey("a") },
		func(s Selections) Selections { return s.SetTarget("a", NothingValue) },
		func(s Selections) Selections { return s.SetTarget("b", "b") },
		func(s Selections) Selections { return s.SetTarget("c", "b") },
	}

	s := DefaultSelections(fileFields, noteFields)
	for i, apply := range events {
		s = apply(s)

		seen := make(map[string]bool)
		if s.NoteJoinKey != NativeIDField {
			seen[s.NoteJoinKey] = true
		}
		for file, target := range s.Targets {
			if target == NothingValue {
				continue
			}
			assert.Falsef(t, seen[target], "after event %d, target %q selected twice (file field %q)", i, target, file)
			seen[target] = true
		}
	}
}

func TestSelections_Resolve(t *testing.T) {
	t.Run("ordered mapping in file order", func(t *testing.T) {
		s := DefaultSelections([]string{"nid", "Back", "Front"}, []string{"Front", "Back"})
		mapping, key, err := s.Resolve()
		require.NoError(t, err)
		assert.Equal(t, JoinKeySpec{FileField: "nid", NoteField: NativeIDField}, key)
		require.Len(t, mapping, 2)
		assert.Equal(t, FieldPair{FileField: "Back", NoteField: "Back"}, mapping[0])
		assert.Equal(t, FieldPair{FileField: "Front", NoteField: "Front"}, mapping[1])
	})

	t.Run("empty mapping fails", func(t *testing.T) {
		s := DefaultSelections([]string{"nid", "Unknown"}, []string{"Front"})
		_, _, err := s.Resolve()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("reserved field as target fails", func(t *testing.T) {
		s := DefaultSelections([]string{"nid", "Front"}, []string{"Front"})
		s.Targets["Front"] = NativeIDField
		_, _, err := s.Resolve()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("duplicate targets fail", func(t *testing.T) {
		s := DefaultSelections([]string{"nid", "a", "b"}, []string{"a", "b"})
		// Bypass SetTarget to simulate a hostile caller.
		s.Targets["a"] = "b"
		s.Targets["b"] = "b"
		_, _, err := s.Resolve()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("join key field as target fails", func(t *testing.T) {
		s := DefaultSelections([]string{"sku", "Front"}, []string{"sku", "Front"})
		s.Targets["Front"] = "sku"
		_, _, err := s.Resolve()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
