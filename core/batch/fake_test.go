package batch

import (
	"context"
	"fmt"
)

// fakeStore is the in-memory NoteStore used across engine tests.
type fakeStore struct {
	notes map[string]*Note

	// recorded call order, e.g. "set:1:Front" and "flush:1"
	calls []string

	flushErr error
}

func newFakeStore(notes ...*Note) *fakeStore {
	s := &fakeStore{notes: make(map[string]*Note)}
	for _, n := range notes {
		s.notes[n.ID] = n
	}
	return s
}

func (s *fakeStore) Get(ctx context.Context, id string) (*Note, error) {
	note, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, ErrNoteNotFound)
	}
	return note, nil
}

func (s *fakeStore) SetField(ctx context.Context, id, field, value string) error {
	note, ok := s.notes[id]
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNoteNotFound)
	}
	s.calls = append(s.calls, "set:"+id+":"+field)
	note.Fields[field] = value
	return nil
}

func (s *fakeStore) Flush(ctx context.Context, id string) error {
	if s.flushErr != nil {
		return s.flushErr
	}
	s.calls = append(s.calls, "flush:"+id)
	return nil
}

func (s *fakeStore) SchemaOf(ctx context.Context, id string) (string, error) {
	note, ok := s.notes[id]
	if !ok {
		return "", fmt.Errorf("note %s: %w", id, ErrNoteNotFound)
	}
	return note.ModelID, nil
}

func (s *fakeStore) FieldNames(ctx context.Context, modelID string) ([]string, error) {
	for _, note := range s.notes {
		if note.ModelID == modelID {
			fields := make([]string, 0, len(note.Fields))
			for f := range note.Fields {
				fields = append(fields, f)
			}
			return fields, nil
		}
	}
	return nil, fmt.Errorf("model %s not found", modelID)
}

// fakeChangeLog buffers audit entries in memory.
type fakeChangeLog struct {
	entries   []AuditEntry
	committed bool
	closed    bool

	commitErr error
}

func (l *fakeChangeLog) Record(ctx context.Context, kind string, entry AuditEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeChangeLog) Commit(ctx context.Context) error {
	if l.commitErr != nil {
		return l.commitErr
	}
	l.committed = true
	return nil
}

func (l *fakeChangeLog) Close() error {
	l.closed = true
	return nil
}

func note(id, modelID string, fields map[string]string) *Note {
	return &Note{ID: id, ModelID: modelID, Fields: fields}
}
