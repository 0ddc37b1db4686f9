package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func changeSet(changes ...NoteChange) *ChangeSet {
	cs := NewChangeSet()
	for _, c := range changes {
		cs.Add(c)
	}
	return cs
}

func TestExecutor_Apply(t *testing.T) {
	store := newFakeStore(
		note("1", "m1", map[string]string{"Front": "Hallo", "Back": "old"}),
		note("2", "m1", map[string]string{"Front": "x"}),
	)
	changelog := &fakeChangeLog{}
	log := &Log{}

	var checkpoints []string
	checkpoint := func(ctx context.Context, label string) error {
		checkpoints = append(checkpoints, label)
		return nil
	}

	e := NewExecutor(store, changelog, checkpoint, log)
	e.now = func() time.Time { return time.UnixMilli(1700000000000) }

	cs := changeSet(
		NoteChange{NoteID: "1", Field: "Front", Old: "Hallo", New: "Hello"},
		NoteChange{NoteID: "1", Field: "Back", Old: "old", New: "new"},
		NoteChange{NoteID: "2", Field: "Front", Old: "x", New: "y"},
	)

	updated, err := e.Apply(context.Background(), cs, true)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	// One checkpoint for the whole batch.
	assert.Equal(t, []string{"Batch Update (2 notes)"}, checkpoints)

	// All of a note's fields are staged before its flush.
	assert.Equal(t, []string{
		"set:1:Front", "set:1:Back", "flush:1",
		"set:2:Front", "flush:2",
	}, store.calls)

	// Values landed on the notes.
	assert.Equal(t, "Hello", store.notes["1"].Fields["Front"])
	assert.Equal(t, "new", store.notes["1"].Fields["Back"])
	assert.Equal(t, "y", store.notes["2"].Fields["Front"])

	// One audit entry per change, all under the same batch timestamp.
	require.Len(t, changelog.entries, 3)
	for _, entry := range changelog.entries {
		assert.Equal(t, int64(1700000000000), entry.BatchTS)
	}
	assert.Equal(t, "Front", changelog.entries[0].Field)
	assert.Equal(t, "Hallo", changelog.entries[0].Old)
	assert.Equal(t, "Hello", changelog.entries[0].New)
	assert.True(t, changelog.committed)
}

func TestExecutor_ApplyRequiresConfirmation(t *testing.T) {
	store := newFakeStore(note("1", "m1", map[string]string{"Front": "a"}))
	e := NewExecutor(store, &fakeChangeLog{}, nil, &Log{})

	cs := changeSet(NoteChange{NoteID: "1", Field: "Front", Old: "a", New: "b"})
	_, err := e.Apply(context.Background(), cs, false)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, store.calls, "no mutation without confirmation")
}

func TestExecutor_ApplyEmptySet(t *testing.T) {
	var checkpoints int
	e := NewExecutor(newFakeStore(), &fakeChangeLog{}, func(ctx context.Context, label string) error {
		checkpoints++
		return nil
	}, &Log{})

	updated, err := e.Apply(context.Background(), NewChangeSet(), true)
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Zero(t, checkpoints, "no checkpoint for an empty batch")
}

// A failed audit commit does not roll back note mutations: there is no
// transactional guarantee spanning the note store and the audit log.
func TestExecutor_AuditCommitFailureLeavesNotesApplied(t *testing.T) {
	store := newFakeStore(note("1", "m1", map[string]string{"Front": "a"}))
	changelog := &fakeChangeLog{commitErr: errors.New("disk full")}
	e := NewExecutor(store, changelog, nil, &Log{})

	cs := changeSet(NoteChange{NoteID: "1", Field: "Front", Old: "a", New: "b"})
	updated, err := e.Apply(context.Background(), cs, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit log commit failed")
	assert.Equal(t, 1, updated)
	assert.Equal(t, "b", store.notes["1"].Fields["Front"], "mutation stays applied")
	assert.False(t, changelog.committed)
}

// Applying a change set then recomputing changes against the same file must
// yield an empty set.
func TestExecutor_ApplyThenRecomputeIsEmpty(t *testing.T) {
	store := newFakeStore(
		note("1", "m1", map[string]string{"Front": "Hallo"}),
		note("2", "m1", map[string]string{"Front": "World"}),
	)
	log := &Log{}
	source := src([]string{"nid", "front"},
		Record{"nid": "1", "front": "Hello"},
		Record{"nid": "2", "front": "World"})
	key := JoinKeySpec{FileField: "nid", NoteField: NativeIDField}
	mapping := FieldMapping{{FileField: "front", NoteField: "Front"}}

	compute := func() *ChangeSet {
		pairs, err := NewJoiner(store, log).Join(context.Background(), source, key, []string{"1", "2"})
		require.NoError(t, err)
		cs, _, err := NewDiffer(store, log).Changes(context.Background(), pairs, mapping)
		require.NoError(t, err)
		return cs
	}

	first := compute()
	require.Equal(t, 1, first.Len())

	e := NewExecutor(store, &fakeChangeLog{}, nil, log)
	_, err := e.Apply(context.Background(), first, true)
	require.NoError(t, err)

	assert.True(t, compute().Empty())
}
