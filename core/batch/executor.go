package batch

import (
	"context"
	"fmt"
	"time"

	"note-updater/core/utils"
)

// Mode selects what one action does with a computed change set.
type Mode string

const (
	// ModeValidate computes the change set and summary with no side effects.
	ModeValidate Mode = "validate"
	// ModeDiff renders the change set as an HTML diff report.
	ModeDiff Mode = "diff"
	// ModeApply mutates notes and writes the audit log.
	ModeApply Mode = "apply"
)

// ChangeKind tags audit entries written by Apply.
const ChangeKind = "batch_update"

// CheckpointFunc registers a host-side restore point before mutation. The
// engine issues it exactly once per apply batch; what the host does with it
// is the host's concern.
type CheckpointFunc func(ctx context.Context, label string) error

// Executor applies a change set to the note store.
type Executor struct {
	store      NoteStore
	changelog  ChangeLog
	checkpoint CheckpointFunc
	log        *Log

	// now is swappable for tests.
	now func() time.Time
}

// NewExecutor returns an executor writing audit entries to changelog.
// checkpoint may be nil when the host offers no restore mechanism.
func NewExecutor(store NoteStore, changelog ChangeLog, checkpoint CheckpointFunc, log *Log) *Executor {
	return &Executor{
		store:      store,
		changelog:  changelog,
		checkpoint: checkpoint,
		log:        log,
		now:        time.Now,
	}
}

// Apply mutates every note in the change set, in set order, and returns the
// number of notes updated. confirmed is the caller-supplied precondition;
// Apply refuses to run without it.
//
// One batch timestamp is generated up front and shared by every audit entry.
// Per note, all field values are staged first and flushed as one unit; one
// audit entry is buffered per field change. The audit buffer commits once,
// after every note is processed. If that commit fails, note mutations
// already flushed stay applied: no transactional guarantee spans the note
// store and the audit log.
func (e *Executor) Apply(ctx context.Context, cs *ChangeSet, confirmed bool) (int, error) {
	if !confirmed {
		return 0, &ValidationError{Reason: "apply requires confirmation"}
	}
	if cs.Empty() {
		return 0, nil
	}

	if e.checkpoint != nil {
		label := fmt.Sprintf("Batch Update (%d %s)", cs.Len(), utils.Pluralize(cs.Len(), "note", "notes"))
		if err := e.checkpoint(ctx, label); err != nil {
			return 0, fmt.Errorf("failed to register checkpoint: %w", err)
		}
	}

	e.log.Printf("Beginning update")
	batchTS := e.now().UnixMilli()
	updated := 0

	for _, noteID := range cs.NoteIDs() {
		for _, change := range cs.Changes(noteID) {
			if err := e.store.SetField(ctx, noteID, change.Field, change.New); err != nil {
				return updated, fmt.Errorf("failed to set field %s on note %s: %w", change.Field, noteID, err)
			}
			entry := AuditEntry{
				BatchTS: batchTS,
				TS:      e.now().UnixMilli(),
				NoteID:  noteID,
				Field:   change.Field,
				Old:     change.Old,
				New:     change.New,
			}
			if err := e.changelog.Record(ctx, ChangeKind, entry); err != nil {
				return updated, fmt.Errorf("failed to record audit entry for note %s: %w", noteID, err)
			}
		}
		if err := e.store.Flush(ctx, noteID); err != nil {
			return updated, fmt.Errorf("failed to flush note %s: %w", noteID, err)
		}
		updated++
	}

	if err := e.changelog.Commit(ctx); err != nil {
		// The notes are already updated; only the audit batch is not durable.
		return updated, fmt.Errorf("audit log commit failed after updating %d notes: %w", updated, err)
	}

	e.log.Printf("Updated %d %s", updated, utils.Pluralize(updated, "note", "notes"))
	return updated, nil
}
