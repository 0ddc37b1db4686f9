package batch

import (
	"context"
	"fmt"

	"note-updater/core/utils"
)

// Differ computes the field-level change set for joined pairs.
type Differ struct {
	store NoteStore
	log   *Log
}

// NewDiffer returns a differ over the given store.
func NewDiffer(store NoteStore, log *Log) *Differ {
	return &Differ{store: store, log: log}
}

// Changes compares every mapped file value against the current note value
// and collects the differences. Comparison is exact string equality, no
// normalization or trimming; values enter the change set verbatim. Within a
// note the change order follows the field mapping order, and notes appear in
// pair order.
//
// Notes lacking a mapped target field abort the batch with a MissingField
// error naming every absent field across the whole scan.
func (d *Differ) Changes(ctx context.Context, pairs []Pair, mapping FieldMapping) (*ChangeSet, *Summary, error) {
	cs := NewChangeSet()
	summary := &Summary{}
	emptyNotes := make(map[string]bool)
	var missing []string

	for _, pair := range pairs {
		d.log.Printf("Checking note %s", pair.NoteID)

		note, err := d.store.Get(ctx, pair.NoteID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load note %s: %w", pair.NoteID, err)
		}

		noteMissing := false
		for _, field := range mapping.NoteFields() {
			if !note.Has(field) {
				missing = append(missing, fmt.Sprintf("%s (note %s)", field, note.ID))
				noteMissing = true
			}
		}
		if noteMissing || len(missing) > 0 {
			// Keep scanning so the error lists every absent field,
			// but compute no changes for a doomed batch.
			continue
		}

		for _, p := range mapping {
			fileValue := pair.Row[p.FileField]
			noteValue := note.Fields[p.NoteField]
			if fileValue == noteValue {
				continue
			}
			d.log.Printf("Need to update note field '%s':", p.NoteField)
			d.log.Printf("%s\n=>\n%s", utils.OrPlaceholder(noteValue, "<empty>"), fileValue)
			cs.Add(NoteChange{NoteID: note.ID, Field: p.NoteField, Old: noteValue, New: fileValue})
			summary.FieldChanges++
			if noteValue == "" {
				summary.EmptyFieldChanges++
				emptyNotes[note.ID] = true
			}
		}
	}

	if len(missing) > 0 {
		return nil, nil, &JoinError{Kind: MissingField, Field: "", Values: missing}
	}

	summary.NotesChanged = cs.Len()
	summary.NotesWithEmptyFields = len(emptyNotes)

	if cs.Empty() {
		d.log.Printf("No changes need to be made")
	} else {
		d.log.Printf("Need to make changes to %d notes", cs.Len())
		if summary.EmptyFieldChanges > 0 {
			d.log.Printf("%d fields across %d notes are empty",
				summary.EmptyFieldChanges, summary.NotesWithEmptyFields)
		}
	}

	return cs, summary, nil
}
