package batch

import "context"

// Note is a snapshot of one stored note: a stable native identifier, the
// model (schema) it follows, and its named text fields. The engine never
// creates or destroys notes; it only reads and mutates field values on notes
// the store hands out.
type Note struct {
	ID      string
	ModelID string
	Fields  map[string]string
}

// Has reports whether the note carries the named field.
func (n *Note) Has(field string) bool {
	_, ok := n.Fields[field]
	return ok
}

// NoteStore is the capability interface to the host-owned note store. The
// engine depends only on this interface, which keeps it testable against an
// in-memory fake. Field mutations staged with SetField become visible to
// Get immediately but are not durable until Flush.
type NoteStore interface {
	// Get returns the note with the given native id, or an error wrapping
	// ErrNoteNotFound.
	Get(ctx context.Context, id string) (*Note, error)

	// SetField stages a new value for one field of one note.
	SetField(ctx context.Context, id, field, value string) error

	// Flush persists all staged field values of one note as a unit.
	Flush(ctx context.Context, id string) error

	// SchemaOf returns the model id of the note with the given native id.
	SchemaOf(ctx context.Context, id string) (string, error)

	// FieldNames returns the ordered field names of a model.
	FieldNames(ctx context.Context, modelID string) ([]string, error)
}

// AuditEntry records one applied field mutation. Entries are append-only;
// the engine never reads them back, mutates them, or deletes them.
type AuditEntry struct {
	// BatchTS is the shared batch start timestamp in Unix milliseconds.
	// It doubles as the logical transaction id of the batch.
	BatchTS int64
	// TS is the per-change timestamp in Unix milliseconds.
	TS     int64
	NoteID string
	Field  string
	Old    string
	New    string
}

// ChangeLog is the append-only audit sink for one batch. The engine acquires
// a log for the duration of one apply action and guarantees Close on every
// exit path. Record buffers; durability happens at Commit, and a failed
// Commit does not roll back note mutations already flushed.
type ChangeLog interface {
	Record(ctx context.Context, kind string, entry AuditEntry) error
	Commit(ctx context.Context) error
	Close() error
}
