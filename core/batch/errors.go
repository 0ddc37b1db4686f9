package batch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoteNotFound is returned by NoteStore implementations when a note id
// does not resolve to a stored note.
var ErrNoteNotFound = errors.New("note not found")

// ValidationError reports an invalid mapping or key selection. It aborts an
// action before any store lookup happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// JoinErrorKind discriminates the join failure modes.
type JoinErrorKind string

const (
	// DuplicateJoinKey: the same join-key value appears on more than one file row.
	DuplicateJoinKey JoinErrorKind = "duplicate join key"
	// DuplicateNoteKey: two candidate notes share the same join-key value.
	DuplicateNoteKey JoinErrorKind = "duplicate note key"
	// ModelMismatch: a candidate note has a different model than the first one.
	ModelMismatch JoinErrorKind = "model mismatch"
	// MissingField: a note lacks a field the join or mapping needs.
	MissingField JoinErrorKind = "missing field"
	// UnresolvedJoinKeys: file join-key values that matched no note.
	UnresolvedJoinKeys JoinErrorKind = "unresolved join keys"
)

// JoinError aborts the whole batch before any change is computed or applied.
// Values lists every offending value found in a full scan, not just the
// first, so the operator can fix the source file in one pass.
type JoinError struct {
	Kind   JoinErrorKind
	Field  string
	Values []string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("%s on field %q: %d offending value(s): %s",
		string(e.Kind), e.Field, len(e.Values), strings.Join(e.Values, ", "))
}

// InternalError marks an engine invariant violation. It is always fatal and
// never swallowed; seeing one means a bug in the engine, not bad input.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return "internal error: " + e.Msg + ": " + e.Err.Error()
	}
	return "internal error: " + e.Msg
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
