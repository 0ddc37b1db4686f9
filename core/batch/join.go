package batch

import (
	"context"
	"errors"
	"fmt"
)

// Pair couples a resolved note id with the file row that addresses it.
type Pair struct {
	NoteID string
	Row    Record
}

// Joiner correlates file rows to notes through the join key pair.
type Joiner struct {
	store NoteStore
	log   *Log
}

// NewJoiner returns a joiner over the given store. Progress lines go to log.
func NewJoiner(store NoteStore, log *Log) *Joiner {
	return &Joiner{store: store, log: log}
}

// Join indexes the file rows by the file-side join key, resolves every key
// value to a note id, and returns the pairs in file order. noteIDs scopes
// the candidate notes considered when joining by an ordinary note field.
//
// Every failure mode scans to completion first: duplicate file keys,
// mixed-model candidates, candidate key collisions, and unresolved keys are
// all reported with the complete offending-value list.
func (j *Joiner) Join(ctx context.Context, src *Source, key JoinKeySpec, noteIDs []string) ([]Pair, error) {
	keys, index, err := j.indexRows(src, key)
	if err != nil {
		return nil, err
	}
	j.log.Printf("Found %d records for '%s' in file", len(keys), key.FileField)

	var lookup map[string]string
	if !key.ByNativeID() {
		j.log.Printf("Joining to notes by '%s', so finding all values.", key.NoteField)
		lookup, err = j.indexNotes(ctx, key, noteIDs)
		if err != nil {
			return nil, err
		}
	}

	pairs := make([]Pair, 0, len(keys))
	var missing []string
	for _, k := range keys {
		var noteID string
		if key.ByNativeID() {
			noteID = k
			if _, err := j.store.Get(ctx, k); err != nil {
				if errors.Is(err, ErrNoteNotFound) {
					j.log.Printf("Could not find note %s", k)
					missing = append(missing, k)
					continue
				}
				return nil, fmt.Errorf("failed to look up note %s: %w", k, err)
			}
		} else {
			id, ok := lookup[k]
			if !ok {
				j.log.Printf("Could not find note with value %s for '%s'", k, key.NoteField)
				missing = append(missing, k)
				continue
			}
			j.log.Printf("Found note %s with value %s for '%s'", id, k, key.NoteField)
			noteID = id
		}
		pairs = append(pairs, Pair{NoteID: noteID, Row: index[k]})
	}

	if len(missing) > 0 {
		return nil, &JoinError{Kind: UnresolvedJoinKeys, Field: key.NoteField, Values: missing}
	}

	return pairs, nil
}

// indexRows builds the ordered file index: join-key value -> row. Key values
// seen more than once are collected exhaustively and reported together.
func (j *Joiner) indexRows(src *Source, key JoinKeySpec) ([]string, map[string]Record, error) {
	keys := make([]string, 0, len(src.Rows))
	index := make(map[string]Record, len(src.Rows))
	dupSeen := make(map[string]bool)
	var dups []string

	for _, row := range src.Rows {
		val, ok := row[key.FileField]
		if !ok {
			return nil, nil, &ValidationError{Reason: "file has no column " + key.FileField}
		}
		if _, exists := index[val]; exists {
			if !dupSeen[val] {
				dupSeen[val] = true
				dups = append(dups, val)
			}
			continue
		}
		keys = append(keys, val)
		index[val] = row
	}

	if len(dups) > 0 {
		return nil, nil, &JoinError{Kind: DuplicateJoinKey, Field: key.FileField, Values: dups}
	}
	return keys, index, nil
}

// indexNotes scans every candidate note and builds the secondary index:
// join-field value -> native id. The scan verifies model homogeneity against
// the first candidate and that every candidate carries the join field.
func (j *Joiner) indexNotes(ctx context.Context, key JoinKeySpec, noteIDs []string) (map[string]string, error) {
	lookup := make(map[string]string, len(noteIDs))

	var modelID string
	var mismatched, missingField []string
	dupSeen := make(map[string]bool)
	var dups []string

	for i, id := range noteIDs {
		note, err := j.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate note %s: %w", id, err)
		}
		if i == 0 {
			modelID = note.ModelID
		} else if note.ModelID != modelID {
			j.log.Printf("Note %s has model %s, expected %s based on the first note", id, note.ModelID, modelID)
			mismatched = append(mismatched, id)
			continue
		}
		if !note.Has(key.NoteField) {
			missingField = append(missingField, id)
			continue
		}
		val := note.Fields[key.NoteField]
		if _, exists := lookup[val]; exists {
			if !dupSeen[val] {
				dupSeen[val] = true
				dups = append(dups, val)
			}
			continue
		}
		lookup[val] = id
	}

	switch {
	case len(mismatched) > 0:
		return nil, &JoinError{Kind: ModelMismatch, Field: key.NoteField, Values: mismatched}
	case len(missingField) > 0:
		return nil, &JoinError{Kind: MissingField, Field: key.NoteField, Values: missingField}
	case len(dups) > 0:
		return nil, &JoinError{Kind: DuplicateNoteKey, Field: key.NoteField, Values: dups}
	}

	return lookup, nil
}
